package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jigsaw/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidGeometry, "bad"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidFormat, "bad"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeDegenerateEdge, "deep"), http.StatusUnprocessableEntity},
		{fmt.Errorf("build pieces: %w", errors.New(errors.ErrCodeDegenerateEdge, "deep")), http.StatusUnprocessableEntity},
		{NotFound("run %s", "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeCanceled, "stop"), http.StatusServiceUnavailable},
		{errors.New(errors.ErrCodeTimeout, "slow"), http.StatusGatewayTimeout},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWriteErrorWithCell(t *testing.T) {
	rec := httptest.NewRecorder()
	err := errors.AtCell(errors.New(errors.ErrCodeDegenerateEdge, "tab too deep"), 1, 2)

	status := WriteError(rec, err)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, status, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DEGENERATE_EDGE", body.Error.Code)
	assert.Equal(t, "tab too deep", body.Error.Message)
	require.NotNil(t, body.Error.Row)
	assert.Equal(t, 1, *body.Error.Row)
	assert.Equal(t, 2, *body.Error.Col)
}

func TestWriteErrorPlain(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code": "INTERNAL_ERROR"`)
	assert.NotContains(t, rec.Body.String(), `"row"`)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Rows int `json:"rows"`
	}
	decode := func(body string) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(httptest.NewRecorder(), req, &p)
		return p, err
	}

	p, err := decode(`{"rows": 3}`)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Rows)

	for _, body := range []string{`{"rows": "x"}`, `{"colz": 1}`, `{"rows": 1} {}`, ``, strings.Repeat(" ", MaxBodyBytes+1) + "{}"} {
		_, err := decode(body)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "body %.20q: %v", body, err)
	}
}
