package authsync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchQueue_FIFO(t *testing.T) {
	var q fetchQueue

	q.Push("u1")
	q.Push("u2")
	q.Push("u3")

	id, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, "u1", id)

	id, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, "u2", id)

	id, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, "u3", id)

	_, ok = q.Pop()
	require.False(t, ok)
}

func TestFetchQueue_DedupesIDs(t *testing.T) {
	var q fetchQueue

	q.Push("u1")
	q.Push("u1")
	q.Push("u2")
	q.Push("u1")

	require.Equal(t, 2, q.Len())
}

func TestFetchQueue_Reset(t *testing.T) {
	var q fetchQueue

	q.Push("u1")
	q.Push("u2")
	q.Reset()

	require.Zero(t, q.Len())
	_, ok := q.Pop()
	require.False(t, ok)
}
