package httperr

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(logs *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zerolog.New(logs)
	router := gin.New()
	router.Use(Recovery(logger), Boundary(logger))
	return router
}

func serve(router *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRespondClientError(t *testing.T) {
	var logs bytes.Buffer
	router := newRouter(&logs)
	router.GET("/dup", func(c *gin.Context) { Respond(c, ErrAlreadyRegistered) })
	router.GET("/wrapped", func(c *gin.Context) {
		Respond(c, fmt.Errorf("register: %w", ErrLoginRequired))
	})

	rec := serve(router, "/dup")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Already registered"}`, rec.Body.String())

	rec = serve(router, "/wrapped")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Login required"}`, rec.Body.String())

	assert.Empty(t, logs.String())
}

func TestBoundaryHidesInternalErrors(t *testing.T) {
	var logs bytes.Buffer
	router := newRouter(&logs)
	router.GET("/boom", func(c *gin.Context) {
		Respond(c, errors.New("mongo: connection refused"))
	})

	rec := serve(router, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong!"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "mongo")
	assert.Contains(t, logs.String(), "mongo: connection refused")
}

func TestRecoveryHandlesPanic(t *testing.T) {
	var logs bytes.Buffer
	router := newRouter(&logs)
	router.GET("/panic", func(c *gin.Context) { panic("nil user") })

	rec := serve(router, "/panic")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Something went wrong!"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestErrorsAreComparable(t *testing.T) {
	err := fmt.Errorf("login: %w", ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrDuplicateEnrollment)
}
