package structured

import (
	"errors"
	"fmt"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/model"
)

// TranslationError represents a static resolution failure during the
// translation of one criterion. Translation errors are not retryable; they
// abort the criterion's translation without partial output.
type TranslationError struct {
	// Code identifies the error category.
	Code TranslationErrorCode

	// Message is a human-readable description referencing the offending
	// concept or term code.
	Message string
}

// TranslationErrorCode categorizes translation errors.
type TranslationErrorCode string

const (
	// ErrCodeMappingNotFound indicates an expanded term code has no mapping.
	ErrCodeMappingNotFound TranslationErrorCode = "MAPPING_NOT_FOUND"

	// ErrCodeAttributeMappingNotFound indicates an attribute filter's code
	// has no entry in the resolved mapping's attribute table.
	ErrCodeAttributeMappingNotFound TranslationErrorCode = "ATTRIBUTE_MAPPING_NOT_FOUND"

	// ErrCodeCodeSystemUndefined indicates a term code's system has no
	// registered alias.
	ErrCodeCodeSystemUndefined TranslationErrorCode = "CODE_SYSTEM_UNDEFINED"

	// ErrCodeEmptyExpansion indicates concept expansion yielded no term
	// codes.
	ErrCodeEmptyExpansion TranslationErrorCode = "EMPTY_EXPANSION"

	// ErrCodeEmptyTranslation indicates the full OR-reduction across
	// expansions yielded no usable expression.
	ErrCodeEmptyTranslation TranslationErrorCode = "EMPTY_TRANSLATION"

	// ErrCodeUnsupportedModifier indicates a mapping carries a modifier
	// shape the translator cannot render, e.g. a time restriction on a
	// mapping without a time restriction path.
	ErrCodeUnsupportedModifier TranslationErrorCode = "UNSUPPORTED_MODIFIER"
)

// Error implements the error interface.
func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTranslationError returns the TranslationError wrapped in err, if any.
func IsTranslationError(err error) (*TranslationError, bool) {
	var te *TranslationError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// NewMappingNotFoundError creates a TranslationError for a term code
// without mapping.
func NewMappingNotFoundError(key model.ContextualTermCode) *TranslationError {
	return &TranslationError{
		Code:    ErrCodeMappingNotFound,
		Message: fmt.Sprintf("mapping for term code %s not found", key),
	}
}

// NewAttributeMappingNotFoundError creates a TranslationError for an
// attribute filter code missing from the mapping's attribute table.
func NewAttributeMappingNotFoundError(attributeCode model.TermCode) *TranslationError {
	return &TranslationError{
		Code:    ErrCodeAttributeMappingNotFound,
		Message: fmt.Sprintf("attribute mapping for term code %s not found", attributeCode),
	}
}

// NewCodeSystemUndefinedError creates a TranslationError for a code system
// URI without a declared alias.
func NewCodeSystemUndefinedError(system string) *TranslationError {
	return &TranslationError{
		Code:    ErrCodeCodeSystemUndefined,
		Message: fmt.Sprintf("code system alias for `%s` not found", system),
	}
}

// NewEmptyExpansionError creates a TranslationError for a concept that
// expanded to no term codes.
func NewEmptyExpansionError(concept model.ContextualConcept) *TranslationError {
	return &TranslationError{
		Code:    ErrCodeEmptyExpansion,
		Message: fmt.Sprintf("failed to expand the concept %s", concept),
	}
}

// NewEmptyTranslationError creates a TranslationError for a translation
// that reduced to no expression.
func NewEmptyTranslationError(concept model.ContextualConcept) *TranslationError {
	return &TranslationError{
		Code:    ErrCodeEmptyTranslation,
		Message: fmt.Sprintf("translation of the concept %s yielded no expression", concept),
	}
}

// NewUnsupportedModifierError creates a TranslationError for a modifier
// shape the translator cannot render.
func NewUnsupportedModifierError(message string) *TranslationError {
	return &TranslationError{Code: ErrCodeUnsupportedModifier, Message: message}
}
