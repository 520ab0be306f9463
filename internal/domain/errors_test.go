package domain

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrIndex, "upserting points", "collection", "news_articles")

	assert.True(t, IsIndexError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsRetrievalError(err))
	assert.Equal(t, CodeIndexFailure, CodeOf(err))
	assert.Equal(t, "news_articles", ContextOf(err)["collection"])
	assert.Contains(t, err.Error(), "upserting points")
}

func TestKindCodes(t *testing.T) {
	tests := []struct {
		kind error
		want Code
	}{
		{ErrProviderUnavailable, "provider.unavailable"},
		{ErrIndex, "index.failure"},
		{ErrRetrieval, "retrieval.failure"},
		{ErrGeneration, "generation.failure"},
		{ErrSessionStore, "session_store.failure"},
		{ErrValidation, "request.invalid"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeOf(Errorf(tt.kind, "failed")), tt.kind.Error())
	}
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, ErrIndex, "noop"))
}

func TestNestedKinds(t *testing.T) {
	inner := Errorf(ErrIndex, "search failed: %d", 500)
	outer := Wrap(inner, ErrRetrieval, "retrieving")

	assert.True(t, IsRetrievalError(outer))
	assert.True(t, IsIndexError(outer))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Nil(t, ContextOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Errorf(ErrValidation, "empty query"), http.StatusBadRequest},
		{"retrieval", Errorf(ErrRetrieval, "x"), http.StatusBadGateway},
		{"index", Errorf(ErrIndex, "x"), http.StatusBadGateway},
		{"generation", Errorf(ErrGeneration, "x"), http.StatusBadGateway},
		{"session store", Errorf(ErrSessionStore, "x"), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
