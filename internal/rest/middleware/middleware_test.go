package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

func newTestEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestContextMiddleware(), ErrorHandler())
	r.GET("/test", handler)
	return r
}

func TestRequestContextMiddleware(t *testing.T) {
	var tenantID, userID, requestID string
	r := newTestEngine(func(c *gin.Context) {
		ctx := c.Request.Context()
		tenantID = types.GetTenantID(ctx)
		userID = types.GetUserID(ctx)
		requestID = types.GetRequestID(ctx)
		c.Status(http.StatusNoContent)
	})

	t.Run("headers are copied onto the context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(types.HeaderTenantID, "tenant_pharma")
		req.Header.Set(types.HeaderUserID, "user_ops")
		req.Header.Set(types.HeaderRequestID, "req_123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "tenant_pharma", tenantID)
		assert.Equal(t, "user_ops", userID)
		assert.Equal(t, "req_123", requestID)
		assert.Equal(t, "req_123", w.Header().Get(types.HeaderRequestID))
	})

	t.Run("missing headers fall back to defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, types.DefaultTenantID, tenantID)
		assert.Equal(t, types.DefaultUserID, userID)
		assert.NotEmpty(t, requestID)
		assert.Equal(t, requestID, w.Header().Get(types.HeaderRequestID))
	})
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", ierr.NewError("bad amount").WithHint("Amount must be positive").Mark(ierr.ErrValidation), http.StatusBadRequest},
		{"not found", ierr.NewError("order missing").Mark(ierr.ErrNotFound), http.StatusNotFound},
		{"credit limit", ierr.NewError("limit").Mark(ierr.ErrCreditLimitExceeded), http.StatusUnprocessableEntity},
		{"gateway", ierr.NewError("declined").Mark(ierr.ErrGateway), http.StatusBadGateway},
		{"unmarked", ierr.NewError("boom").Mark(ierr.ErrInternal), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestEngine(func(c *gin.Context) {
				c.Error(tt.err)
			})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			require.Equal(t, tt.status, w.Code)
			var body ierr.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error.Display)
		})
	}
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	r := newTestEngine(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		c.Error(ierr.NewError("late").Mark(ierr.ErrInternal))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
