package calculation

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeque(capacity int) *Deque {
	var head, tail atomic.Uint32
	return NewDeque(capacity, &head, &tail)
}

func TestNewDequePanicsOnNonPowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { newTestDeque(3) })
	assert.Panics(t, func() { newTestDeque(0) })
	assert.Panics(t, func() { newTestDeque(-4) })
}

func TestDequePushPopLIFO(t *testing.T) {
	d := newTestDeque(8)
	require.True(t, d.Push(1))
	require.True(t, d.Push(2))
	require.True(t, d.Push(3))

	assert.Equal(t, uint32(3), d.Pop())
	assert.Equal(t, uint32(2), d.Pop())
	assert.Equal(t, uint32(1), d.Pop())
	assert.Equal(t, dequeEmpty, d.Pop())
}

func TestDequePushFailsWhenFull(t *testing.T) {
	d := newTestDeque(2)
	require.True(t, d.Push(1))
	require.True(t, d.Push(2))
	assert.False(t, d.Push(3))
}

func TestDequeStealFIFOFromHead(t *testing.T) {
	d := newTestDeque(8)
	d.Push(10)
	d.Push(20)
	d.Push(30)

	stolen := d.Steal()
	assert.Equal(t, uint32(10), stolen)
	assert.Equal(t, 2, d.Len())
}

func TestDequeStealOnEmptyReturnsEmpty(t *testing.T) {
	d := newTestDeque(4)
	assert.Equal(t, dequeEmpty, d.Steal())
}

func TestDequeLen(t *testing.T) {
	d := newTestDeque(8)
	assert.Equal(t, 0, d.Len())
	d.Push(1)
	d.Push(2)
	assert.Equal(t, 2, d.Len())
	d.Pop()
	assert.Equal(t, 1, d.Len())
}

func TestDequeStealContendedWithLastItemPop(t *testing.T) {
	d := newTestDeque(4)
	d.Push(99)

	// Simulate a thief racing the owner for the single remaining item: the
	// thief wins the head CAS first, so the owner's Pop must see it as empty.
	word := d.Steal()
	assert.Equal(t, uint32(99), word)
	assert.Equal(t, dequeEmpty, d.Pop())
}
