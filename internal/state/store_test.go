package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobwatch-automation/internal/monitor"
)

const sourceURL = "https://apply.example.co.uk/UKCareers/SearchJobs/"

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), sourceURL)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_FirstRun(t *testing.T) {
	store := openStore(t)

	rec, err := store.Load("edinburgh-only")
	require.NoError(t, err)

	assert.Equal(t, "edinburgh-only", rec.SearchKey)
	assert.Equal(t, sourceURL, rec.SourceURL)
	assert.Nil(t, rec.LastCheckedUTC)
	assert.Empty(t, rec.Jobs)
	assert.NotNil(t, rec.Jobs)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := openStore(t)

	jobs := []monitor.Job{
		{Title: "Audit Manager", URL: "https://x/1"},
		{Title: "Tax Analyst", URL: "https://x/2"},
	}
	require.NoError(t, store.Save("glasgow-only", jobs))

	rec, err := store.Load("glasgow-only")
	require.NoError(t, err)

	assert.Equal(t, jobs, rec.Jobs)
	assert.Equal(t, "glasgow-only", rec.SearchKey)
	require.NotNil(t, rec.LastCheckedUTC)
}

func TestSave_ReplacesNotMerges(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Save("k", []monitor.Job{{Title: "A", URL: "https://x/1"}}))
	require.NoError(t, store.Save("k", []monitor.Job{{Title: "B", URL: "https://x/2"}}))

	rec, err := store.Load("k")
	require.NoError(t, err)

	//the job that disappeared from the page disappeared from state too
	assert.Equal(t, []monitor.Job{{Title: "B", URL: "https://x/2"}}, rec.Jobs)
}

func TestSave_EmptySnapshotIsValid(t *testing.T) {
	store := openStore(t)

	require.NoError(t, store.Save("k", nil))

	rec, err := store.Load("k")
	require.NoError(t, err)
	assert.Empty(t, rec.Jobs)
	assert.NotNil(t, rec.LastCheckedUTC)
}

func TestSave_FileShape(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, sourceURL)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("edinburgh-only", []monitor.Job{{Title: "A", URL: "https://x/1"}}))

	//the file is part of the external interface: fixed name and keys
	data, err := os.ReadFile(filepath.Join(dir, "jobs_edinburgh-only.json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "search_key")
	assert.Contains(t, raw, "source_url")
	assert.Contains(t, raw, "last_checked_utc")
	assert.Contains(t, raw, "jobs")
}

func TestOpen_LockedDir(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir, sourceURL)
	require.NoError(t, err)
	defer store.Close()

	//a second run over the same state dir must refuse to start
	_, err = Open(dir, sourceURL)
	assert.Error(t, err)
}
