package httputil

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/jigsaw/pkg/errors"
)

// MaxBodyBytes bounds request bodies read by [DecodeJSON].
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON payload of an error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Row     *int   `json:"row,omitempty"`
	Col     *int   `json:"col,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// WriteError writes err as an error body and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	body := ErrorBody{Code: string(errors.GetCode(err)), Message: errors.UserMessage(err)}
	if body.Code == "" {
		body.Code = string(errors.ErrCodeInternal)
	}
	if row, col, ok := errors.CellOf(err); ok {
		body.Row, body.Col = &row, &col
	}
	WriteJSON(w, status, map[string]ErrorBody{"error": body})
	return status
}

// StatusFor maps err to an HTTP status code.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGeometry, errors.ErrCodeInvalidMode,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeDegenerateEdge:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v. Unknown fields, trailing data
// and bodies over [MaxBodyBytes] are rejected as INVALID_INPUT.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New(errors.ErrCodeInvalidInput, "request body must hold a single JSON object")
	}
	return nil
}

// NotFound is a NOT_FOUND error naming what was missing.
func NotFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}
