package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"id", "abc"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ba7816bf8f01", strings.TrimSpace(out.String()))
}

func TestIDCommandRequiresPath(t *testing.T) {
	rootCmd.SetArgs([]string{"id"})
	defer rootCmd.SetArgs(nil)

	assert.Error(t, rootCmd.Execute())
}
