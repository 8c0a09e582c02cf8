// Package apperrors provides the structured error taxonomy shared across the
// codebase-search engine: scanner, stores, vector index, embedding provider,
// and orchestrator all report failures through the same Code enumeration so
// callers can branch on Category/Retryable instead of string matching.
package apperrors

// Code identifies a kind of failure. Codes are stable and safe to match on.
type Code string

const (
	// CodeIO covers filesystem or database I/O failures.
	CodeIO Code = "IO_ERROR"

	// CodeDimensionMismatch means a vector's length disagrees with the
	// configured embedding dimensions. Fatal to the affected operation.
	CodeDimensionMismatch Code = "DIMENSION_MISMATCH"

	// CodeDuplicateID means a caller tried to add a document id that
	// already exists. Indicates a contract violation in the caller.
	CodeDuplicateID Code = "DUPLICATE_ID"

	// CodeIndexCorruption means a store or vector snapshot failed
	// validation on load. Recovery is to discard and rebuild from source.
	CodeIndexCorruption Code = "INDEX_CORRUPTION"

	// CodeProviderError means an embedding provider call failed.
	CodeProviderError Code = "PROVIDER_ERROR"

	// CodeCancelled means the caller's cancellation token fired. Not an
	// error condition for the caller that requested cancellation.
	CodeCancelled Code = "CANCELLED"

	// CodeConfig means the supplied configuration is invalid. Fatal at
	// construction time.
	CodeConfig Code = "CONFIG_ERROR"
)

// Category groups codes for coarse-grained handling.
type Category string

const (
	CategoryIO         Category = "IO"
	CategoryValidation Category = "VALIDATION"
	CategoryProvider   Category = "PROVIDER"
	CategoryControl    Category = "CONTROL"
	CategoryConfig     Category = "CONFIG"
)

func categoryFor(code Code) Category {
	switch code {
	case CodeIO, CodeIndexCorruption:
		return CategoryIO
	case CodeDimensionMismatch, CodeDuplicateID:
		return CategoryValidation
	case CodeProviderError:
		return CategoryProvider
	case CodeCancelled:
		return CategoryControl
	case CodeConfig:
		return CategoryConfig
	default:
		return CategoryValidation
	}
}

// retryableByDefault reports whether a code's default Retryable value.
// Concrete call sites may override with WithRetryable.
func retryableByDefault(code Code) bool {
	return code == CodeProviderError
}
