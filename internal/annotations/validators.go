package annotations

import (
	"fmt"
	"go/token"
	"strings"
)

// ValidateURLPath requires a path starting with '/'.
func ValidateURLPath(v string) error {
	if !strings.HasPrefix(v, "/") {
		return fmt.Errorf("path must start with '/', got '%s'", v)
	}
	return nil
}

// ValidateIdentifier requires a Go identifier.
func ValidateIdentifier(v string) error {
	if !token.IsIdentifier(v) {
		return fmt.Errorf("'%s' is not a valid identifier", v)
	}
	return nil
}

// ValidateName requires a non-empty registry name without whitespace.
func ValidateName(v string) error {
	if v == "" || strings.ContainsFunc(v, func(r rune) bool { return r == ' ' || r == '\t' }) {
		return fmt.Errorf("name must be non-empty and contain no spaces, got '%s'", v)
	}
	return nil
}

// ValidateTypeList requires a comma separated list of Name or pkg.Name.
func ValidateTypeList(v string) error {
	items := strings.Split(v, ",")
	for _, item := range items {
		item = strings.TrimSpace(item)
		pkg, name, qualified := strings.Cut(item, ".")
		if !qualified {
			name, pkg = pkg, ""
		}
		if (qualified && !token.IsIdentifier(pkg)) || !token.IsIdentifier(name) {
			return fmt.Errorf("'%s' is not a type name", item)
		}
	}
	return nil
}

// ValidateParamList requires a comma separated list of goName or
// goName:requestName items.
func ValidateParamList(v string) error {
	seen := make(map[string]bool)
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		goName, reqName, mapped := strings.Cut(item, ":")
		if !token.IsIdentifier(goName) {
			return fmt.Errorf("'%s' is not a parameter name", goName)
		}
		if mapped && reqName == "" {
			return fmt.Errorf("parameter '%s' maps to an empty request name", goName)
		}
		if seen[goName] {
			return fmt.Errorf("parameter '%s' listed twice", goName)
		}
		seen[goName] = true
	}
	return nil
}
