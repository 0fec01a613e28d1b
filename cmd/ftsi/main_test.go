package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domdoc "github.com/kailas-cloud/ftsi/internal/domain/document"
	documentuc "github.com/kailas-cloud/ftsi/internal/usecase/document"
)

const testConfig = `http:
  port: 18080
storage:
  path: %s
logging:
  level: error
entities:
  - name: Article
    catalog: content
    fields:
      - {name: id, kind: text, key: true}
      - {name: title, kind: text}
  - name: Note
    catalog: content
    fields:
      - {name: id, kind: text, key: true}
      - {name: title, kind: text}
`

// setup writes config/local.yaml into a temp working directory with on-disk storage
// and seeds two Articles and one Note.
func setup(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o750))
	body := strings.Replace(testConfig, "%s", filepath.Join(dir, "data"), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "local.yaml"), []byte(body), 0o600))
	t.Chdir(dir)

	rt, err := bootstrap("local")
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.app.Documents.Create(context.Background(),
		documentuc.Record{Entity: "Article", Values: domdoc.Values{"id": "1", "title": "Hello"}},
		documentuc.Record{Entity: "Article", Values: domdoc.Values{"id": "2", "title": "World"}},
		documentuc.Record{Entity: "Note", Values: domdoc.Values{"id": "1", "title": "memo"}},
	)
	require.NoError(t, err)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--env", "local"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Definition(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	assert.Equal(t, "ftsi", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "status", "totals", "clear", "version"} {
		assert.Contains(t, names, want)
	}
	require.NotNil(t, cmd.PersistentFlags().Lookup("env"))
}

func TestTotalsCmd(t *testing.T) {
	setup(t)

	out, err := run(t, "totals", "Article")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = run(t, "totals")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestStatusCmd(t *testing.T) {
	setup(t)

	out, err := run(t, "status", "Note")
	require.NoError(t, err)
	assert.Equal(t, "content\tnum=3\tnum_deleted=0\ttotal=3\n", out)

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Equal(t, "content\tnum=3\tnum_deleted=0\ttotal=3\n", out)
}

func TestClearCmd(t *testing.T) {
	setup(t)

	out, err := run(t, "clear", "Article")
	require.NoError(t, err)
	assert.Equal(t, "deleted 2\n", out)

	out, err = run(t, "totals", "Note")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = run(t, "clear")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1\n", out)

	_, err = run(t, "clear", "--drop")
	assert.Error(t, err)

	out, err = run(t, "clear", "--drop", "Note")
	require.NoError(t, err)
	assert.Contains(t, out, "dropped")

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCmd_UnknownEntity(t *testing.T) {
	setup(t)

	_, err := run(t, "totals", "Nope")
	assert.ErrorContains(t, err, "unknown entity")
}

func TestCmd_MissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "--env", "staging", "totals")
	assert.ErrorContains(t, err, "load config")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ftsi dev"), out)
}
