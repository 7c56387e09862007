package flowcraftcfg

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// ValidationError reports a single struct-tag failure with the
// lowercase dotted field path flowcraft.yaml actually uses (the
// validator library's own field path is the Go struct field name).
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("flowcraftcfg: %w", err)
	}
	first := verrs[0]
	field := yamlishFieldName(first)
	return &ValidationError{
		Field:   field,
		Tag:     first.Tag(),
		Message: fmt.Sprintf("flowcraftcfg: %s failed validation for tag %q", field, first.Tag()),
	}
}

func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
