package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_PushPop(t *testing.T) {
	st := New[string](4)
	assert.True(t, st.IsEmpty())

	st.Push("a")
	st.Push("b")
	require.Equal(t, uint(2), st.Len())

	item, ok := st.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", item)

	item, ok = st.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", item)

	_, ok = st.Pop()
	assert.False(t, ok)
}

func TestStack_PushReversed(t *testing.T) {
	var st Stack[int]
	st.Push(99)
	st.PushReversed([]int{1, 2, 3})

	var got []int
	for {
		item, ok := st.Pop()
		if !ok {
			break
		}
		got = append(got, item)
	}
	assert.Equal(t, []int{1, 2, 3, 99}, got)
}
