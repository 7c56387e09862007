package manifest

import (
	"context"
	"fmt"
	"reflect"

	"github.com/flowcraft-dev/flowcraft-go/flowruntime"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// BuildStepFuncs adapts every entry of a generated Registry (step name ->
// the step's real exported function, as `any`) into a flowruntime.StepFunc,
// so the host program never hand-writes one adapter per step. Each step
// function is called by reflection: a leading context.Context parameter (if
// any) receives the executor's ctx, remaining parameters are filled
// positionally from h.Args(), and the function's own return values are
// read back as (any, error) — at most one non-error return value is
// supported, matching the step procedures spec §4.1 describes ("a single
// opaque result, or none, plus an error").
func BuildStepFuncs(registry map[string]any) (map[string]flowruntime.StepFunc, error) {
	out := make(map[string]flowruntime.StepFunc, len(registry))
	for name, fn := range registry {
		adapted, err := adaptStep(fn)
		if err != nil {
			return nil, fmt.Errorf("manifest: step %q: %w", name, err)
		}
		out[name] = adapted
	}
	return out, nil
}

func adaptStep(fn any) (flowruntime.StepFunc, error) {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("registry entry is %T, not a function", fn)
	}

	numOut := t.NumOut()
	if numOut > 2 {
		return nil, fmt.Errorf("step function has %d return values, want at most (result, error) or (error)", numOut)
	}
	if numOut >= 1 && !t.Out(numOut-1).Implements(errorType) {
		return nil, fmt.Errorf("step function's last return value must be error")
	}

	takesCtx := t.NumIn() > 0 && t.In(0).Implements(contextType)
	argStart := 0
	if takesCtx {
		argStart = 1
	}
	wantArgs := t.NumIn() - argStart

	return func(ctx context.Context, h *flowruntime.NodeHandle) (any, error) {
		args := h.Args()
		if len(args) < wantArgs {
			return nil, fmt.Errorf("step expects %d argument(s), got %d", wantArgs, len(args))
		}

		in := make([]reflect.Value, 0, t.NumIn())
		if takesCtx {
			in = append(in, reflect.ValueOf(ctx))
		}
		for i := 0; i < wantArgs; i++ {
			in = append(in, coerceArg(args[i], t.In(argStart+i)))
		}

		out := v.Call(in)
		return splitResult(out)
	}, nil
}

// coerceArg adapts a dynamically-typed argument (decoded off blueprint.Context
// or evaluated from source text, so often an untyped int64/float64/string) to
// the step parameter's static type, so e.g. a captured literal "3" evaluated
// as int64 can still be passed to a step parameter declared int.
func coerceArg(arg any, want reflect.Type) reflect.Value {
	if arg == nil {
		return reflect.Zero(want)
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(want) {
		return v
	}
	if v.Type().ConvertibleTo(want) {
		return v.Convert(want)
	}
	return v
}

func splitResult(out []reflect.Value) (any, error) {
	if len(out) == 0 {
		return nil, nil
	}
	last := out[len(out)-1]
	var err error
	if !last.IsNil() {
		err = last.Interface().(error)
	}
	if len(out) == 1 {
		return nil, err
	}
	return out[0].Interface(), err
}
