package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottbw/dvnt/internal/output"
)

func TestNewRootCmdRegistersGlobalFlags(t *testing.T) {
	cmd := NewRootCmd()

	for _, name := range []string{
		"json", "yaml", "quiet", "styled", "ids-only", "count",
		"verbose", "no-browser", "mature", "page-size", "format",
	} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	assert.Equal(t, "j", cmd.PersistentFlags().Lookup("json").Shorthand)
	assert.Equal(t, "q", cmd.PersistentFlags().Lookup("quiet").Shorthand)
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestTransformCobraError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"flag needs an argument: --tag", "--tag requires a value"},
		{"unknown flag: --bogus", "Unknown option: --bogus"},
		{"unknown shorthand flag: 'x' in -x", "Unknown option: -x"},
		{"accepts 1 arg(s), received 0", "accepts 1 arg(s), received 0"},
	}
	for _, tt := range tests {
		err := transformCobraError(assertError(tt.in))
		apiErr := output.AsError(err)
		assert.Equal(t, output.CodeUsage, apiErr.Code, tt.in)
		assert.Equal(t, tt.want, apiErr.Message, tt.in)
	}
}

func TestTransformCobraErrorPassesThroughOthers(t *testing.T) {
	orig := assertError("connection refused")
	require.Equal(t, orig, transformCobraError(orig))
}

func TestFallbackFormat(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("yaml", "true"))
	assert.Equal(t, output.FormatYAML, fallbackFormat(cmd.PersistentFlags()))

	// More specific modes win.
	require.NoError(t, cmd.PersistentFlags().Set("quiet", "true"))
	assert.Equal(t, output.FormatQuiet, fallbackFormat(cmd.PersistentFlags()))
}

type assertError string

func (e assertError) Error() string { return string(e) }
