// Package errors provides structured error handling for goldenretriever.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors (fatal at construction)
//   - 2XX: Resource errors (fatal at construction)
//   - 4XX: Input errors (reported per call)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates an invalid retriever configuration.
	CategoryConfig Category = "CONFIG"
	// CategoryResource indicates a model, device or file that could not be used.
	CategoryResource Category = "RESOURCE"
	// CategoryInput indicates a bad argument to a single call.
	CategoryInput Category = "INPUT"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the retriever cannot be constructed.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the call failed but the retriever stays usable.
	SeverityError Severity = "ERROR"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound    = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid     = "ERR_102_CONFIG_INVALID"
	ErrCodeUnknownStrategy   = "ERR_103_UNKNOWN_STRATEGY"
	ErrCodeModelRequired     = "ERR_104_MODEL_REQUIRED"
	ErrCodeDimensionMismatch = "ERR_105_DIMENSION_MISMATCH"

	// Resource errors (200-299)
	ErrCodeModelLoadFailed   = "ERR_201_MODEL_LOAD_FAILED"
	ErrCodeDeviceUnavailable = "ERR_202_DEVICE_UNAVAILABLE"
	ErrCodeFileNotFound      = "ERR_203_FILE_NOT_FOUND"
	ErrCodeFileCorrupt       = "ERR_204_FILE_CORRUPT"

	// Input errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidK     = "ERR_402_INVALID_K"
	ErrCodeDuplicateID  = "ERR_403_DUPLICATE_ID"
	ErrCodeMissingField = "ERR_404_MISSING_FIELD"
	ErrCodeMissingKey   = "ERR_406_MISSING_KEY"

	// Internal errors (500-599)
	ErrCodeInternal       = "ERR_501_INTERNAL"
	ErrCodeEncodingFailed = "ERR_502_ENCODING_FAILED"
	ErrCodeSearchFailed   = "ERR_503_SEARCH_FAILED"
	ErrCodeIndexFailed    = "ERR_504_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "1" from "ERR_101_CONFIG_NOT_FOUND"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryResource
	case '4':
		return CategoryInput
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Configuration and resource problems abort construction.
func severityFromCode(code string) Severity {
	switch categoryFromCode(code) {
	case CategoryConfig, CategoryResource:
		return SeverityFatal
	default:
		return SeverityError
	}
}
