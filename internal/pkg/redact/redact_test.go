package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	require.Equal(t, "al***@dsml.kz", Email("alibek@dsml.kz"))
	require.Equal(t, "***@dsml.kz", Email("ab@dsml.kz"))
	require.Equal(t, "***", Email("not-an-email"))
	require.Equal(t, "***", Email(""))
}

func TestToken(t *testing.T) {
	require.Equal(t, "[REDACTED_TOKEN]", Token())
}
