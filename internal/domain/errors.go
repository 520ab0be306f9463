package domain

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier attached to core errors.
type Code string

const (
	CodeProviderUnavailable Code = "provider.unavailable"
	CodeIndexFailure        Code = "index.failure"
	CodeRetrievalFailure    Code = "retrieval.failure"
	CodeGenerationFailure   Code = "generation.failure"
	CodeSessionStoreFailure Code = "session_store.failure"
	CodeRequestInvalid      Code = "request.invalid"
)

// Error kinds. Match with errors.Is; a wrapped chain may carry several kinds
// (a retrieval failure caused by the index carries both).
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrIndex               = errors.New("vector index failure")
	ErrRetrieval           = errors.New("retrieval failure")
	ErrGeneration          = errors.New("generation failure")
	ErrSessionStore        = errors.New("session store failure")
	ErrValidation          = errors.New("invalid request")
)

var kindCodes = map[error]Code{
	ErrProviderUnavailable: CodeProviderUnavailable,
	ErrIndex:               CodeIndexFailure,
	ErrRetrieval:           CodeRetrievalFailure,
	ErrGeneration:          CodeGenerationFailure,
	ErrSessionStore:        CodeSessionStoreFailure,
	ErrValidation:          CodeRequestInvalid,
}

// Wrap marks err with kind and adds a message plus key/value context.
func Wrap(err error, kind error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(string(kindCodes[kind])).With(kv...).Wrapf(fmt.Errorf("%w: %w", kind, err), "%s", msg)
}

// Errorf creates a new error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return oops.Code(string(kindCodes[kind])).Wrapf(kind, format, args...)
}

// CodeOf returns the innermost oops code of err, if any.
func CodeOf(err error) Code {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oopsErr.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", c))
	}
}

// ContextOf returns the key/value context attached along the chain.
func ContextOf(err error) map[string]any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

func IsProviderUnavailable(err error) bool { return errors.Is(err, ErrProviderUnavailable) }
func IsIndexError(err error) bool          { return errors.Is(err, ErrIndex) }
func IsRetrievalError(err error) bool      { return errors.Is(err, ErrRetrieval) }
func IsGenerationError(err error) bool     { return errors.Is(err, ErrGeneration) }
func IsSessionStoreError(err error) bool   { return errors.Is(err, ErrSessionStore) }
func IsValidationError(err error) bool     { return errors.Is(err, ErrValidation) }

// HTTPStatus maps an error to the status the HTTP surface answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidationError(err):
		return http.StatusBadRequest
	case IsRetrievalError(err), IsIndexError(err), IsGenerationError(err):
		return http.StatusBadGateway
	case IsSessionStoreError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
