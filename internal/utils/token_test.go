package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, tok, 32)
	for _, c := range tok {
		assert.True(t, strings.ContainsRune(base62Charset, c), "unexpected character %q", c)
	}

	other, err := GenerateToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}
