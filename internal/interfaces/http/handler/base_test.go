package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwise/backend/internal/domain/shared"
	"github.com/stockwise/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("context wins over header", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Set(requestIDKey, "ctx-id")
		c.Request.Header.Set("X-Request-ID", "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("header fallback", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		c.Request.Header.Set("X-Request-ID", "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet, "/")
		assert.Empty(t, getRequestID(c))
	})
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"sync in progress", shared.ErrSyncInProgress, http.StatusTooManyRequests, dto.ErrCodeSyncInProgress},
		{"wrapped not found", fmt.Errorf("load: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"upstream", shared.ErrUpstream, http.StatusBadGateway, dto.ErrCodeUpstream},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(http.MethodGet, "/")
			c.Set(requestIDKey, "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			assert.NotContains(t, resp.Error.Message, "pq:")
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(http.MethodGet, "/")

	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}
