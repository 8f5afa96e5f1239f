package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseBuilderJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().Status(http.StatusCreated).Header("X-Test", "1").JSON(map[string]int{"n": 1}).Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestResponseBuilderEncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().JSON(make(chan int)).Write(rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResponseBuilderAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponse().Attachment("application/pdf", "report.pdf", []byte("%PDF")).Write(rec)
	assert.Equal(t, `attachment; filename="report.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		builder *ResponseBuilder
		code    int
	}{
		{BadRequestError("x"), http.StatusBadRequest},
		{UnprocessableEntityError("x"), http.StatusUnprocessableEntity},
		{NotFoundError("x"), http.StatusNotFound},
		{ConflictError("x"), http.StatusConflict},
		{InternalServerError("x"), http.StatusInternalServerError},
		{ServiceUnavailableError("x"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		tt.builder.Write(rec)
		assert.Equal(t, tt.code, rec.Code)
		assert.JSONEq(t, `{"error":"x"}`, rec.Body.String())
	}
}
