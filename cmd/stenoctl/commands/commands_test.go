package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stenod/internal/daemon"
	"stenod/internal/stroke"
	"stenod/internal/tape"
)

// run executes a fresh command tree with args and returns what it wrote.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	out, _, err := run(t)
	assert.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "stenoctl")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, _, err := run(t, "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestRender(t *testing.T) {
	out, _, err := run(t, "render", "0x80108", "2")
	require.NoError(t, err)
	assert.Equal(t, "KAT\nS\n", out)
}

func TestRenderBreakdown(t *testing.T) {
	out, _, err := run(t, "render", "--breakdown", "0x80108")
	require.NoError(t, err)
	assert.Contains(t, out, "KAT")
	assert.Contains(t, out, "-T")
}

func TestRenderRejectsUndefinedBits(t *testing.T) {
	_, errOut, err := run(t, "render", "0x800000")
	require.Error(t, err)
	assert.Equal(t, "Invalid stroke bits", err.Error())
	assert.Contains(t, errOut, "low 23 bits")
}

func TestParse(t *testing.T) {
	out, _, err := run(t, "parse", "KAT", "TEFT/-T")
	require.NoError(t, err)
	assert.Equal(t, "KAT\t0x80108\nTEFT/-T\t0x82804 0x80000\n", out)
}

func TestParseLenientNormalizes(t *testing.T) {
	out, _, err := run(t, "parse", "TS")
	require.NoError(t, err)
	assert.Equal(t, "T-S\t0x100004\n", out)
}

func TestParseStrict(t *testing.T) {
	_, _, err := run(t, "parse", "--strict", "SPT")
	require.Error(t, err)
	assert.Equal(t, "Invalid steno notation", err.Error())

	_, _, err = run(t, "parse", "--strict", "KAT//KAT")
	require.Error(t, err)
}

func TestKeyAndDecode(t *testing.T) {
	out, _, err := run(t, "key", "TEFT/TEFT")
	require.NoError(t, err)
	assert.Equal(t, "082804082804\n", out)

	out, _, err = run(t, "decode", "082804082804")
	require.NoError(t, err)
	assert.Equal(t, "TEFT/TEFT\n", out)
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := run(t, "decode", "zz")
	require.Error(t, err)
	assert.Equal(t, "Invalid hex key", err.Error())

	_, _, err = run(t, "decode", "0828")
	require.Error(t, err)
	assert.Equal(t, "Invalid dictionary key", err.Error())

	_, _, err = run(t, "decode", "800000")
	require.Error(t, err)
}

func TestChord(t *testing.T) {
	out, _, err := run(t, "chord", "r v o p", "aip")
	require.NoError(t, err)
	assert.Equal(t, "HOLT\nS-PT\n", out)

	_, _, err = run(t, "chord", "a,")
	require.Error(t, err)
	assert.Equal(t, "Unknown key in chord", err.Error())
}

func recordTape(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tape.db")
	store, err := tape.Open(path)
	require.NoError(t, err)
	defer store.Close()

	session := uuid.New().String()
	for i, s := range []stroke.Stroke{
		stroke.H | stroke.O | stroke.L | stroke.RT,
		stroke.K | stroke.A | stroke.RT,
	} {
		_, err := store.Record(&tape.Entry{SessionID: session, Seq: uint64(i), Stroke: s})
		require.NoError(t, err)
	}
	return path, session
}

func TestTape(t *testing.T) {
	path, session := recordTape(t)

	out, _, err := run(t, "tape", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "HOLT")
	assert.Contains(t, out, "KAT")
	assert.Contains(t, out, session[:8])

	out, _, err = run(t, "tape", "--db", path, "--limit", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "HOLT")
	assert.Contains(t, out, "KAT")
}

func TestTapeJSON(t *testing.T) {
	path, session := recordTape(t)

	out, _, err := run(t, "tape", "--db", path, "--session", session, "--json")
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "HOLT", entries[0]["steno"])
	assert.Equal(t, "KAT", entries[1]["steno"])
}

func TestTapeSessions(t *testing.T) {
	path, session := recordTape(t)

	out, _, err := run(t, "tape", "--db", path, "--sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "STROKES")
	assert.Contains(t, out, session)
}

func TestTapeMissing(t *testing.T) {
	_, _, err := run(t, "tape", "--db", filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	assert.Equal(t, "No stroke tape found", err.Error())
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := run(t, "--config", path, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, _, err = run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")

	_, errOut, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, errOut, "already exists")

	out, _, err = run(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	out, _, err = run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "outline_window = 10")
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STENOD_DATA_DIR", dir)

	_, errOut, err := run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, errOut, "not running")

	// This test process stands in for a live daemon.
	mgr := daemon.NewManager(dir)
	require.NoError(t, mgr.WritePID())
	require.NoError(t, mgr.WriteState(&daemon.State{StartedAt: time.Now(), Version: "test", SessionID: "abc"}))

	out, _, err := run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "stenod is running")
	assert.Contains(t, out, "session: abc")
}
