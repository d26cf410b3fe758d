package frontier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDequeFrontAndBack(t *testing.T) {
	var d Deque[int]
	d.PushBack(2)
	d.PushFront(1)
	d.PushBack(3)
	d.PushFront(0)
	require.Equal(t, 4, d.Len())
	for want := 0; want < 4; want++ {
		v, ok := d.PopFront()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	_, ok := d.PopFront()
	assert.False(t, ok)
}

func TestDequeGrowAndWrap(t *testing.T) {
	var d Deque[int]
	for i := 0; i < 10; i++ {
		d.PushBack(i)
	}
	for i := 0; i < 5; i++ {
		v, _ := d.PopFront()
		assert.Equal(t, i, v)
	}
	// wrap around the ring, then force a grow
	for i := 10; i < 50; i++ {
		d.PushBack(i)
	}
	d.PushFront(4)
	assert.Equal(t, 46, d.Len())
	for want := 4; want < 50; want++ {
		v, ok := d.PopFront()
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 0, d.Len())
}

func TestDequeShrinksAfterDrain(t *testing.T) {
	var d Deque[int]
	for i := 0; i < 1000; i++ {
		d.PushFront(i)
	}
	for i := 0; i < 990; i++ {
		d.PopFront()
	}
	assert.Less(t, len(d.buf), 1000)
	assert.Equal(t, 10, d.Len())
	v, _ := d.PopFront()
	assert.Equal(t, 9, v)
}
