package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthCmd_Flags(t *testing.T) {
	cmd := newAuthCmd()

	assert.NotNil(t, cmd.Flags().Lookup("config"))
	assert.NotNil(t, cmd.Flags().ShorthandLookup("v"))
}

func TestNewAuthCmd_RejectsArgs(t *testing.T) {
	cmd := newAuthCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})

	assert.Error(t, cmd.Execute())
}

func TestNewAuthCmd_BadConfigFailsBeforePrompting(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("client_idd = \"x\"\n"), 0o600))

	cmd := newAuthCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "client_id"`)
	assert.Empty(t, out.String())
}
