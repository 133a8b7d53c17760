package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const melody = `[{"time":0,"pitch":60},{"time":0,"pitch":64},{"time":100,"pitch":67},{"time":200,"pitch":60}]`

// testCorpus writes two songs and a manifest listing them plus a missing file.
func testCorpus(t *testing.T) (root, manifest string) {
	t.Helper()
	root = t.TempDir()
	files := map[string]string{
		"songs/one.json": `{"metadata":{"title":"One"},"tracks":[{"notes":` + melody + `}]}`,
		"songs/two.json": `{"metadata":{"title":"Two"},"tracks":[{"notes":[{"time":0,"pitch":50}]}]}`,
		"manifest.csv":   "path\n./songs/one.json\n./songs/two.json\n./songs/gone.json\n",
	}
	for rel, contents := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	}
	return root, filepath.Join(root, "manifest.csv")
}

func runApp(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err = app.Run(append([]string{"motif"}, args...))
	return out.String(), errOut.String(), err
}

func TestSetupLogger(t *testing.T) {
	_, _, err := runApp(t, "--log-level", "verbose", "manifest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestFindCommand(t *testing.T) {
	root, manifest := testCorpus(t)
	patternFile := filepath.Join(t.TempDir(), "pattern.json")
	require.NoError(t, os.WriteFile(patternFile, []byte(`[{"time":0,"pitch":67},{"time":10,"pitch":60}]`), 0644))

	t.Run("text output", func(t *testing.T) {
		stdout, stderr, err := runApp(t, "find", "--data-root", root, "--manifest", manifest, patternFile)
		require.NoError(t, err)
		assert.Equal(t, "./songs/one.json\tOne\n", stdout)
		assert.Contains(t, stderr, "1 of 3 songs matched, 1 skipped")
	})

	t.Run("json output", func(t *testing.T) {
		stdout, _, err := runApp(t, "find", "--data-root", root, "--manifest", manifest, "--json", patternFile)
		require.NoError(t, err)

		var result core.MatchResult
		require.NoError(t, json.Unmarshal([]byte(stdout), &result))
		assert.Equal(t, []core.Match{{Path: "./songs/one.json", Title: "One"}}, result.Matches)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "./songs/gone.json", result.Skipped[0].Path)
	})

	t.Run("tolerance", func(t *testing.T) {
		shifted := filepath.Join(t.TempDir(), "shifted.json")
		require.NoError(t, os.WriteFile(shifted, []byte(`[{"time":0,"pitch":52}]`), 0644))

		stdout, _, err := runApp(t, "find", "--data-root", root, "--manifest", manifest, "--tolerance", "2", shifted)
		require.NoError(t, err)
		assert.Equal(t, "./songs/two.json\tTwo\n", stdout)
	})

	t.Run("pattern required", func(t *testing.T) {
		_, _, err := runApp(t, "find", "--data-root", root, "--manifest", manifest)
		assert.Error(t, err)
	})
}

func TestManifestCommand(t *testing.T) {
	root, _ := testCorpus(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	_, _, err := runApp(t, "manifest", "--data-root", root, "--output", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "path\n./songs/one.json\n./songs/two.json\n", string(data))
}

func TestExportCommand(t *testing.T) {
	root, _ := testCorpus(t)
	out := filepath.Join(t.TempDir(), "one.mid")

	_, _, err := runApp(t, "export", "--data-root", root, "--output", out, "./songs/one.json")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data[:4]))
}

func TestSimilarCommand_EmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "songs.db")
	_, stderr, err := runApp(t, "similar", "--db", db, "Unknown Song")
	require.NoError(t, err)
	assert.Contains(t, stderr, "No similar songs found.")
}

func TestReembedCommand_Validation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "songs.db")
	_, _, err := runApp(t, "reembed", "--db", db, "--batch-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch-size")
}

func TestBuildPolicy(t *testing.T) {
	policy, err := buildPolicy([]string{"pitch", " duration "}, 0)
	require.NoError(t, err)
	require.Len(t, policy, 2)
	assert.Equal(t, pattern.AttrDuration, policy[1].Attribute())

	_, err = buildPolicy([]string{"loudness"}, 0)
	assert.Error(t, err)

	_, err = buildPolicy([]string{"pitch"}, -1)
	assert.ErrorIs(t, err, pattern.ErrNegativeTolerance)
}

func TestCommandsRegistered(t *testing.T) {
	app := newApp()
	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"find", "manifest", "index", "search", "similar", "reembed", "export", "serve"}, names)
}
