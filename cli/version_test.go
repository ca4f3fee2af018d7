package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletools/core/version"
)

func TestVersionCommandOutput(t *testing.T) {
	root := NewStandardCommand("table", "test")
	root.AddCommand(NewVersionCommand("table"))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())

	out := buf.String()
	assert.Contains(t, out, "table "+version.GetInfo().Version)
	assert.Contains(t, out, "Commit:")
	assert.Contains(t, out, "Platform:")
}

func TestVersionCommandJSON(t *testing.T) {
	root := NewStandardCommand("table", "test")
	root.AddCommand(NewVersionCommand("table"))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version", "--json"})
	require.NoError(t, root.Execute())

	var info version.Info
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, version.GetInfo().Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}
