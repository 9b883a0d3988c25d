package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	DeviationID string `json:"deviationid"`
	Title       string `json:"title"`
}

func (f fakeItem) Identity() string { return f.DeviationID }

func TestOKWritesJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	err := w.OK([]fakeItem{{DeviationID: "abc", Title: "Sunset"}}, WithSummary("1 deviation"))
	require.NoError(t, err)

	var resp struct {
		OK      bool       `json:"ok"`
		Data    []fakeItem `json:"data"`
		Summary string     `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "abc", resp.Data[0].DeviationID)
	assert.Equal(t, "1 deviation", resp.Summary)
}

func TestErrWritesErrorEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.Err(ErrNotLoggedIn()))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeAuth, resp.Code)
	assert.Equal(t, "Not logged in", resp.Error)
	assert.Contains(t, resp.Hint, "auth login")
}

func TestErrWrapsPlainErrors(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatJSON, Writer: &buf})

	require.NoError(t, w.Err(errors.New("boom")))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, CodeAPI, resp.Code)
	assert.Equal(t, "boom", resp.Error)
}

func TestYAMLFormat(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatYAML, Writer: &buf})

	require.NoError(t, w.OK(fakeItem{DeviationID: "abc", Title: "Sunset"}))
	assert.Contains(t, buf.String(), "ok: true")
	assert.Contains(t, buf.String(), "deviationid: abc")
}

func TestIDsFormat(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatIDs, Writer: &buf})

	require.NoError(t, w.OK([]fakeItem{
		{DeviationID: "one"},
		{DeviationID: "two"},
	}))
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestIDsFormatSingleItem(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatIDs, Writer: &buf})

	require.NoError(t, w.OK(fakeItem{DeviationID: "solo"}))
	assert.Equal(t, "solo\n", buf.String())
}

func TestCountFormat(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatCount, Writer: &buf})

	require.NoError(t, w.OK([]fakeItem{{}, {}, {}}))
	assert.Equal(t, "3\n", buf.String())
}

func TestQuietFormatOmitsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatQuiet, Writer: &buf})

	require.NoError(t, w.OK(fakeItem{DeviationID: "abc"}))

	var item fakeItem
	require.NoError(t, json.Unmarshal(buf.Bytes(), &item))
	assert.Equal(t, "abc", item.DeviationID)
}

func TestStyledFormatShowsSummaryAndHint(t *testing.T) {
	var buf bytes.Buffer
	w := New(Options{Format: FormatStyled, Writer: &buf})

	require.NoError(t, w.OK([]fakeItem{{DeviationID: "abc"}}, WithSummary("1 result")))
	assert.Contains(t, buf.String(), "1 result")
	assert.Contains(t, buf.String(), "abc")

	buf.Reset()
	require.NoError(t, w.Err(ErrStateMismatch()))
	assert.Contains(t, buf.String(), "Authorization state mismatch")
	assert.Contains(t, buf.String(), "Retry")
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitAuth, ErrNotLoggedIn().ExitCode())
	assert.Equal(t, ExitAuth, ErrStateMismatch().ExitCode())
	assert.Equal(t, ExitAuth, ErrAuthDenied("denied").ExitCode())
	assert.Equal(t, ExitAuth, ErrTokenExchange(400, "bad code").ExitCode())
	assert.Equal(t, ExitUsage, ErrUsage("bad flag").ExitCode())
	assert.Equal(t, ExitNotFound, ErrNotFound("deviation", "xyz").ExitCode())
	assert.Equal(t, ExitRateLimit, ErrRateLimit(30).ExitCode())
	assert.Equal(t, ExitNetwork, ErrNetwork(errors.New("dial tcp")).ExitCode())
	assert.Equal(t, ExitAPI, ErrAPI(500, "server error").ExitCode())
}

func TestAsErrorPassthrough(t *testing.T) {
	orig := ErrForbidden("no access")
	wrapped := AsError(orig)
	assert.Same(t, orig, wrapped)

	converted := AsError(errors.New("plain"))
	assert.Equal(t, CodeAPI, converted.Code)
	assert.Equal(t, "plain", converted.Message)
}

func TestRetryableFlags(t *testing.T) {
	assert.True(t, ErrRateLimit(0).Retryable)
	assert.True(t, ErrNetwork(errors.New("timeout")).Retryable)
	assert.False(t, ErrAPI(500, "oops").Retryable)
}
