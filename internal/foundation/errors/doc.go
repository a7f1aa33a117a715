// Package errors provides the classified error primitives used across docsite.
//
// Every error that reaches the CLI carries a category (config, validation,
// links, filesystem, ...), a severity and a retry strategy, plus structured
// context such as the offending field path. The CLI adapter maps categories to
// process exit codes.
//
// Example usage:
//
//	err := errors.ValidationError("baseUrl must start with '/'").
//		WithContext("field", "baseUrl").
//		WithContext("value", cfg.BaseURL).
//		Build()
package errors
