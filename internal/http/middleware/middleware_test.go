package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (int64, error) {
	if token == "good" {
		return 7, nil
	}
	return 0, apperror.ErrUnauthorized
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", handlers...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func echoUser(c *gin.Context) {
	id, ok := UserID(c)
	c.JSON(http.StatusOK, gin.H{"user": id, "ok": ok})
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(stubAuth{}), echoUser)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Token good").Code)

	w := serve(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":7,"ok":true}`, w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newEngine(OptionalAuthMiddleware(stubAuth{}), echoUser)

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":0,"ok":false}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)

	w = serve(r, "Bearer good")
	assert.JSONEq(t, `{"user":7,"ok":true}`, w.Body.String())
}

func TestErrorHandler_MapsAppErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"conflict", apperror.ErrDeleteResolved, http.StatusConflict, `{"error":"resolved reports cannot be deleted"}`},
		{"not found", apperror.ErrReportNotFound, http.StatusNotFound, `{"error":"report not found"}`},
		{"internal masked", apperror.Wrap(errors.New("disk"), apperror.ErrCodeInternal, "failed"), http.StatusInternalServerError, `{"error":"internal server error"}`},
		{"plain error masked", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})
			w := serve(r, "")
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRateLimitMiddleware_Blocks(t *testing.T) {
	r := newEngine(RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, "").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "").Code)
	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestUUIDValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.PUT("/reports/solved/:uuid", UUIDValidator("uuid"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		id     string
		status int
	}{
		{"0c8e6d1a-0000-4000-8000-000000000001", http.StatusNoContent},
		{"abc-123", http.StatusBadRequest},
		{"42", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodPut, "/reports/solved/"+tt.id, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, tt.id)
	}
}
