package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Các error định nghĩa sẵn được khai báo kiểu error: gắn details chỉ đi qua
// hàm WithDetails của package, không có method trên giá trị error.
func TestWithDetails_AttachesToPredefinedError(t *testing.T) {
	wrapped := WithDetails(ErrInvalidTransition, map[string]interface{}{
		"currentStatus": "completed",
	})

	assert.True(t, errors.Is(wrapped, ErrInvalidTransition))

	e, ok := wrapped.(*Error)
	require.True(t, ok)
	assert.Equal(t, StatusConflict, e.StatusCode)
	details, ok := e.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "completed", details["currentStatus"])

	// Error gốc không bị sửa
	orig, ok := ErrInvalidTransition.(*Error)
	require.True(t, ok)
	assert.Nil(t, orig.Details)
}

func TestWithDetails_NonRegistryErrorPassesThrough(t *testing.T) {
	plain := errors.New("lỗi thường")
	assert.Same(t, plain, WithDetails(plain, "chi tiết"))
}
