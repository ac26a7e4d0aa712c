package platformerrors

import (
	"bytes"
	"context"
	"encoding/json"
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

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := map[ErrorType]int{
		ErrorTypeValidation:     http.StatusBadRequest,
		ErrorTypeUnauthorized:   http.StatusUnauthorized,
		ErrorTypeForbidden:      http.StatusForbidden,
		ErrorTypeNotFound:       http.StatusNotFound,
		ErrorTypeConflict:       http.StatusConflict,
		ErrorTypeRateLimited:    http.StatusTooManyRequests,
		ErrorTypeDatabaseError:  http.StatusInternalServerError,
		ErrorTypeInternal:       http.StatusInternalServerError,
		ErrorTypeNotImplemented: http.StatusNotImplemented,
		ErrorTypeExternal:       http.StatusBadGateway,
	}
	for errorType, want := range tests {
		assert.Equal(t, want, ErrorTypeToHTTPStatus(errorType), string(errorType))
	}
}

func TestNewErrorCarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	cause := errors.New("disk full")

	err := NewErrorWithContext(ctx, LayerDomain, ErrorTypeExternal, "object storage unavailable", cause, "code-1", map[string]any{"post_id": "p"})
	assert.Equal(t, "req-1", err.RequestID)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "p", err.Context["post_id"])
	assert.Contains(t, err.Error(), "object storage unavailable")
}

func TestIsErrorTypeThroughWrapping(t *testing.T) {
	base := NewError(context.Background(), LayerRepository, ErrorTypeConflict, "duplicate", nil, "")
	wrapped := fmt.Errorf("create: %w", base)

	assert.True(t, IsErrorType(wrapped, ErrorTypeConflict))
	assert.False(t, IsErrorType(wrapped, ErrorTypeNotFound))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeConflict))
	assert.False(t, IsErrorType(nil, ErrorTypeConflict))
	assert.Same(t, base, GetPlatformError(wrapped))

	as := AsError(context.Background(), LayerHandler, wrapped, "handler")
	assert.Equal(t, ErrorTypeConflict, as.Type)
	assert.Nil(t, AsError(context.Background(), LayerHandler, nil, "handler"))
	assert.Equal(t, ErrorTypeInternal, AsError(context.Background(), LayerHandler, errors.New("x"), "handler").Type)
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "platform error",
			err:        NewError(WithRequestID(context.Background(), "req-9"), LayerDomain, ErrorTypeNotFound, "media not found", nil, "nf-1"),
			wantStatus: http.StatusNotFound,
			wantType:   "not_found_error",
		},
		{
			name:       "storage error",
			err:        NewError(context.Background(), LayerDomain, ErrorTypeExternal, "object storage unavailable", nil, ""),
			wantStatus: http.StatusBadGateway,
			wantType:   "storage_unavailable_error",
		},
		{
			name:       "plain error",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			WriteError(c, tt.err, zerolog.New(&logs))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body HTTPErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error.Type)
			assert.NotEmpty(t, logs.String())
		})
	}
}

func TestWriteErrorUsesRequestIDFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	err := NewError(WithRequestID(context.Background(), "req-9"), LayerDomain, ErrorTypeConflict, "media already exists for post_id: p", nil, "c-1")
	WriteError(c, err, zerolog.Nop())

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "req-9", body.Error.RequestID)
	assert.Equal(t, "c-1", body.Error.Code)
	assert.Equal(t, "media already exists for post_id: p", body.Error.Message)
}
