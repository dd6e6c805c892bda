package tape

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stenod/internal/stroke"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tape.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDirectory(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nested", "dir", "tape.db"))
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestCloseNilDB(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	session := uuid.NewString()

	strokes := []stroke.Stroke{
		stroke.T | stroke.E | stroke.F | stroke.RT,
		stroke.S | stroke.RP | stroke.RT,
		stroke.H | stroke.O | stroke.L | stroke.RT,
	}
	for i, st := range strokes {
		e := &Entry{SessionID: session, Seq: uint64(i), Stroke: st}
		id, err := s.Record(e)
		require.NoError(t, err)
		assert.Equal(t, id, e.ID)
		assert.NotZero(t, e.TimestampNs)
	}

	n, err := s.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	recent, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "S-PT", recent[0].Stroke.String())
	assert.Equal(t, "HOLT", recent[1].Stroke.String())
}

func TestSession(t *testing.T) {
	s := openTestStore(t)
	a, b := uuid.NewString(), uuid.NewString()

	_, err := s.Record(&Entry{SessionID: a, Seq: 1, Stroke: stroke.K | stroke.A | stroke.RT})
	require.NoError(t, err)
	_, err = s.Record(&Entry{SessionID: b, Seq: 0, Stroke: stroke.Star})
	require.NoError(t, err)
	_, err = s.Record(&Entry{SessionID: a, Seq: 0, Stroke: stroke.T | stroke.E | stroke.F | stroke.RT})
	require.NoError(t, err)

	got, err := s.Session(a)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TEFT", got[0].Stroke.String())
	assert.Equal(t, "KAT", got[1].Stroke.String())

	got, err = s.Session("missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordRejectsInvalid(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Record(&Entry{Stroke: stroke.S})
	assert.True(t, errors.Is(err, ErrInvalidEntry))

	_, err = s.Record(&Entry{SessionID: "x"})
	assert.True(t, errors.Is(err, ErrInvalidEntry))

	_, err = s.Record(&Entry{SessionID: "x", Stroke: 1 << 25})
	assert.True(t, errors.Is(err, ErrInvalidEntry))
}

func TestRecordDuplicateSeq(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Record(&Entry{SessionID: "x", Seq: 7, Stroke: stroke.S})
	require.NoError(t, err)
	_, err = s.Record(&Entry{SessionID: "x", Seq: 7, Stroke: stroke.T})
	assert.Error(t, err)
}

func TestEntryJSON(t *testing.T) {
	e := Entry{
		SessionID:   "s1",
		Seq:         3,
		TimestampNs: time.Unix(10, 0).UnixNano(),
		Stroke:      stroke.Num2 | stroke.Z,
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s1","seq":3,"timestamp_ns":10000000000,"bits":4194309,"steno":"#TZ"}`, string(data))

	var got Entry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, e, got)
	assert.True(t, time.Unix(10, 0).Equal(got.Time()))

	err = json.Unmarshal([]byte(`{"session_id":"s1","bits":4194309,"steno":"TZ"}`), &got)
	assert.True(t, errors.Is(err, ErrInvalidEntry))
}

func TestExportMatchesSchema(t *testing.T) {
	s := openTestStore(t)
	session := uuid.NewString()
	for i, text := range []string{"TEFT", "S-PT", "W*R", "#TZ", "HOLT", "*S"} {
		_, err := s.Record(&Entry{SessionID: session, Seq: uint64(i), Stroke: stroke.Parse(text)})
		require.NoError(t, err)
	}
	entries, err := s.Recent(10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, entries))

	var instance any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &instance))

	schemaPath, err := filepath.Abs(filepath.Join("testdata", "tape.schema.json"))
	require.NoError(t, err)
	schemaData, err := os.ReadFile(schemaPath)
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource(schemaPath, bytes.NewReader(schemaData)))
	schema, err := compiler.Compile(schemaPath)
	require.NoError(t, err)
	assert.NoError(t, schema.Validate(instance))
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
