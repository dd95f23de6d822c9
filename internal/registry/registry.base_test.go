package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("counter", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	// Ghi đè item cũ
	isNew, err = r.Register("counter", 2)
	require.NoError(t, err)
	assert.False(t, isNew)

	value, exists := r.Get("counter")
	assert.True(t, exists)
	assert.Equal(t, 2, value)

	_, exists = r.Get("missing")
	assert.False(t, exists)
}

func TestRegistry_RegisterEmptyName(t *testing.T) {
	r := NewRegistry[string]()

	_, err := r.Register("", "value")
	assert.Error(t, err)
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry[string]()
	calls := 0

	creator := func() (string, error) {
		calls++
		return "created", nil
	}

	value, err := r.GetOrCreate("key", creator)
	require.NoError(t, err)
	assert.Equal(t, "created", value)

	// Lần thứ hai phải trả về item đã có, không gọi lại creator
	value, err = r.GetOrCreate("key", creator)
	require.NoError(t, err)
	assert.Equal(t, "created", value)
	assert.Equal(t, 1, calls)
}

func TestRegistry_Update(t *testing.T) {
	r := NewRegistry[int]()
	_, err := r.Register("counter", 10)
	require.NoError(t, err)

	err = r.Update("counter", func(current int) (int, error) {
		return current + 1, nil
	})
	require.NoError(t, err)

	value, _ := r.Get("counter")
	assert.Equal(t, 11, value)

	err = r.Update("missing", func(current int) (int, error) {
		return current, nil
	})
	assert.Error(t, err)
}

func TestRegistry_ClearWithCleanup(t *testing.T) {
	r := NewRegistry[string]()
	_, err := r.Register("item", "value")
	require.NoError(t, err)

	cleaned := false
	deleted, err := r.Clear("item", func(s string) error {
		cleaned = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, cleaned)

	// Item không tồn tại
	deleted, err = r.Clear("item", nil)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRegistry_ClearAll(t *testing.T) {
	r := NewRegistry[int]()
	for i := 0; i < 5; i++ {
		_, err := r.Register(fmt.Sprintf("item-%d", i), i)
		require.NoError(t, err)
	}

	count, err := r.ClearAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	_, exists := r.Get("item-0")
	assert.False(t, exists)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _ = r.Register(fmt.Sprintf("key-%d", n), n)
			_, _ = r.Get(fmt.Sprintf("key-%d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		value, exists := r.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, exists)
		assert.Equal(t, i, value)
	}
}
