package ringbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushWithinCapacity(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	b.Push(2)
	assert.Equal(t, []int{1, 2}, b.Items())
	assert.Equal(t, 2, b.Len())
}

func TestPushEvictsOldestBeyondCapacity(t *testing.T) {
	b := New[int](2)
	b.Push(1)
	b.Push(2)
	b.Push(3)
	assert.Equal(t, []int{2, 3}, b.Items())
}

func TestRecentIsNewestFirst(t *testing.T) {
	b := New[string](3)
	b.Push("a")
	b.Push("b")
	b.Push("c")
	assert.Equal(t, []string{"c", "b", "a"}, b.Recent())
}

func TestNewNonPositiveCapacityClampsToOne(t *testing.T) {
	b := New[int](0)
	assert.Equal(t, 1, b.Cap())
	b.Push(1)
	b.Push(2)
	assert.Equal(t, []int{2}, b.Items())
}

func TestItemsReturnsCopyNotAlias(t *testing.T) {
	b := New[int](3)
	b.Push(1)
	items := b.Items()
	items[0] = 99
	assert.Equal(t, []int{1}, b.Items())
}
