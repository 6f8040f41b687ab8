package errors

import "fmt"

// ConfigurationError reports an unreadable or invalid configuration.
type ConfigurationError struct {
	*BaseError
	Key string
}

// NewConfigurationError creates a configuration error for key.
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{
		BaseError: New(ConfigurationErrorCode, message).WithContext("key", key),
		Key:       key,
	}
}

// WrapConfigurationError wraps a failure to load the configuration at path.
func WrapConfigurationError(path string, cause error) *ConfigurationError {
	return &ConfigurationError{
		BaseError: Wrap(ConfigurationErrorCode, fmt.Sprintf("failed to load configuration '%s'", path), cause).
			WithContext("path", path),
	}
}

// SyntaxError reports a malformed annotation.
type SyntaxError struct {
	*BaseError
	Annotation string
}

// NewSyntaxError creates a syntax error for the annotation text at loc.
func NewSyntaxError(annotation string, loc SourceLocation, cause error) *SyntaxError {
	return &SyntaxError{
		BaseError: Wrap(SyntaxErrorCode, fmt.Sprintf("invalid annotation %q", annotation), cause).
			WithLocation(loc).
			WithSuggestions("annotations look like //relay::route /path -Params=goName:paramName"),
		Annotation: annotation,
	}
}

// ValidationError reports a well-formed annotation used incorrectly.
type ValidationError struct {
	*BaseError
	Field string
}

// NewValidationError creates a validation error for field at loc.
func NewValidationError(field, message string, loc SourceLocation) *ValidationError {
	return &ValidationError{
		BaseError: New(ValidationErrorCode, message).WithLocation(loc),
		Field:     field,
	}
}

// GenerationError reports a failure while rendering or writing generated code.
type GenerationError struct {
	*BaseError
	TargetFile string
}

// WrapGenerateError wraps a failure to generate target.
func WrapGenerateError(target string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:  Wrap(GenerationErrorCode, fmt.Sprintf("failed to generate %s", target), cause),
		TargetFile: target,
	}
}

// WrapTemplateError wraps a template failure.
func WrapTemplateError(templateName string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:  Wrap(TemplateErrorCode, fmt.Sprintf("failed to execute template '%s'", templateName), cause),
		TargetFile: templateName,
	}
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return Wrap(FileSystemErrorCode, fmt.Sprintf("failed to %s '%s'", operation, path), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapScanError wraps a failure to resolve or walk a scan root.
func WrapScanError(root string, cause error) *BaseError {
	return Wrap(ScanErrorCode, fmt.Sprintf("failed to scan '%s'", root), cause).
		WithSuggestions("check that the directory exists and contains a go.mod above it")
}
