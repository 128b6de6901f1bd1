package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreload(t *testing.T) {
	preload, err := parsePreload([]string{
		"ANTHROPIC_API_KEY=sk-ant-x",
		"TELEGRAM_BOT_TOKEN=1:AA=BB", // values may contain '='
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-x", preload["ANTHROPIC_API_KEY"])
	assert.Equal(t, "1:AA=BB", preload["TELEGRAM_BOT_TOKEN"])
}

func TestParsePreloadRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"NOEQUALS", "=value"} {
		_, err := parsePreload([]string{bad})
		assert.Error(t, err, "input %q", bad)
	}
}
