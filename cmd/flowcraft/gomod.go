package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// readModuleName extracts the module path from the go.mod file/go.mod
// directory in projectDir. Only the first "module <path>" line matters here,
// so this is a deliberately minimal scan rather than a pull of
// golang.org/x/mod/modfile for one field.
func readModuleName(projectDir string) (string, error) {
	path := filepath.Join(projectDir, "go.mod")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if after, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(after), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return "", fmt.Errorf("%s: no module directive found", path)
}
