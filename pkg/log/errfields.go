package log

import (
	"github.com/YuminosukeSato/dataexplorer/pkg/errors"
)

// ErrorFields returns the error together with its ErrorCodeKey and
// ErrorTypeKey attributes, ready to append to a log call.
//
// Example:
//
//	logger.Warn("fit failed", append(fields, log.ErrorFields(err)...)...)
func ErrorFields(err error) []any {
	return []any{ErrAttrKey, err, ErrorCodeKey, errorCode(err), ErrorTypeKey, errorType(err)}
}

func errorCode(err error) string {
	var (
		notFitted *errors.NotFittedError
		dimension *errors.DimensionError
	)
	switch {
	case errors.As(err, &notFitted):
		return ErrorNotFitted
	case errors.Is(err, errors.ErrSingularMatrix):
		return ErrorSingularMatrix
	case errors.As(err, &dimension), errors.HasReason(err, errors.ReasonLengthMismatch):
		return ErrorDimensionMismatch
	case errors.Is(err, errors.ErrEmptySource), errors.Is(err, errors.ErrEmptyData),
		errors.HasReason(err, errors.ReasonEmptyInput):
		return ErrorEmptyData
	default:
		return ErrorInvalidInput
	}
}

// errorType names the typed error found in the chain.
func errorType(err error) string {
	targets := []struct {
		name   string
		target any
	}{
		{"NotFittedError", new(*errors.NotFittedError)},
		{"AlreadyFittedError", new(*errors.AlreadyFittedError)},
		{"ModelError", new(*errors.ModelError)},
		{"DimensionError", new(*errors.DimensionError)},
		{"ValidationError", new(*errors.ValidationError)},
		{"TypeError", new(*errors.TypeError)},
		{"ConstantValueError", new(*errors.ConstantValueError)},
		{"PredictionInputError", new(*errors.PredictionInputError)},
		{"EmptySelectionError", new(*errors.EmptySelectionError)},
		{"ValueError", new(*errors.ValueError)},
		{"RecordKeysError", new(*errors.RecordKeysError)},
		{"FormatError", new(*errors.FormatError)},
	}
	for _, t := range targets {
		if errors.As(err, t.target) {
			return t.name
		}
	}
	if errors.Is(err, errors.ErrEmptySource) || errors.Is(err, errors.ErrEmptyData) {
		return "EmptySource"
	}
	return "error"
}
