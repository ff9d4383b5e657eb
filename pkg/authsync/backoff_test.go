package authsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_BackoffDoubles(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, RetryDelay: 100 * time.Millisecond}

	require.Equal(t, 100*time.Millisecond, p.Backoff(0))
	require.Equal(t, 200*time.Millisecond, p.Backoff(1))
	require.Equal(t, 400*time.Millisecond, p.Backoff(2))
	require.Equal(t, 100*time.Millisecond, p.Backoff(-1))
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	p := RetryPolicy{MaxRetries: 2, RetryDelay: time.Millisecond}

	require.False(t, p.Exhausted(0))
	require.False(t, p.Exhausted(1))
	require.True(t, p.Exhausted(2))
	require.True(t, p.Exhausted(5))
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	require.Equal(t, 3, p.MaxRetries)
	require.Equal(t, time.Second, p.RetryDelay)
}
