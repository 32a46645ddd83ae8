package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobwatch-automation/internal/config"
	"go-jobwatch-automation/internal/filter"
	"go-jobwatch-automation/internal/monitor"
	"go-jobwatch-automation/internal/state"
)

const sourceURL = "https://apply.example.co.uk/UKCareers/SearchJobs/"

// fakeDriver stands in for the browser half of a run.
type fakeDriver struct {
	jobs  []monitor.Job
	title string
	err   error
	calls int
}

func (f *fakeDriver) fetch(ctx context.Context, search config.Search) ([]monitor.Job, string, error) {
	f.calls++
	if f.err != nil {
		return nil, "", f.err
	}
	return f.jobs, f.title, nil
}

func openStore(t *testing.T) (*state.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := state.Open(dir, sourceURL)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

var testSearch = config.Search{
	Key:       "edinburgh-only",
	Label:     "Jobs: Edinburgh only",
	Locations: []string{"Edinburgh"},
}

func TestRun_FailedFilterLeavesStateUntouched(t *testing.T) {
	store, dir := openStore(t)

	//seed a good snapshot from a previous run
	seeded := []monitor.Job{{Title: "Audit Manager", URL: "https://x/1"}}
	require.NoError(t, store.Save(testSearch.Key, seeded))

	statePath := filepath.Join(dir, "jobs_"+testSearch.Key+".json")
	before, err := os.ReadFile(statePath)
	require.NoError(t, err)

	r := &Runner{
		store:  store,
		driver: &fakeDriver{err: filter.ErrFilterControlNotFound},
	}

	_, runErr := r.Run(context.Background(), testSearch)
	require.ErrorIs(t, runErr, filter.ErrFilterControlNotFound)

	//the failed run must not overwrite the good snapshot
	after, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rec, err := store.Load(testSearch.Key)
	require.NoError(t, err)
	assert.Equal(t, seeded, rec.Jobs)
}

func TestRun_SuccessDiffsAndOverwrites(t *testing.T) {
	store, _ := openStore(t)

	require.NoError(t, store.Save(testSearch.Key, []monitor.Job{
		{Title: "Audit Manager", URL: "https://x/1"},
	}))

	r := &Runner{
		store: store,
		driver: &fakeDriver{
			title: "Search Jobs",
			jobs: []monitor.Job{
				{Title: "Audit Manager", URL: "https://x/1"},
				{Title: "  New   Role ", URL: "https://x/2"},
			},
		},
	}

	res, err := r.Run(context.Background(), testSearch)
	require.NoError(t, err)

	assert.Equal(t, "Search Jobs", res.PageTitle)
	assert.Equal(t, []monitor.Job{{Title: "New Role", URL: "https://x/2"}}, res.NewJobs)

	//state now mirrors the full fresh listing
	rec, err := store.Load(testSearch.Key)
	require.NoError(t, err)
	assert.Equal(t, []monitor.Job{
		{Title: "Audit Manager", URL: "https://x/1"},
		{Title: "New Role", URL: "https://x/2"},
	}, rec.Jobs)
}

func TestRun_FirstRun(t *testing.T) {
	store, _ := openStore(t)

	jobs := []monitor.Job{{Title: "Tax Analyst", URL: "https://x/9"}}
	r := &Runner{store: store, driver: &fakeDriver{jobs: jobs}}

	res, err := r.Run(context.Background(), testSearch)
	require.NoError(t, err)

	//everything is new against the empty baseline
	assert.Equal(t, jobs, res.NewJobs)

	rec, err := store.Load(testSearch.Key)
	require.NoError(t, err)
	assert.Equal(t, jobs, rec.Jobs)
	assert.NotNil(t, rec.LastCheckedUTC)
}

func TestRun_ZeroExtraction(t *testing.T) {
	store, _ := openStore(t)

	r := &Runner{store: store, driver: &fakeDriver{title: "Search Jobs"}}

	res, err := r.Run(context.Background(), testSearch)
	require.NoError(t, err)

	assert.Empty(t, res.Jobs)
	assert.Empty(t, res.NewJobs)

	//an empty listing is a valid result and still gets persisted
	rec, err := store.Load(testSearch.Key)
	require.NoError(t, err)
	assert.Empty(t, rec.Jobs)
	assert.NotNil(t, rec.LastCheckedUTC)
}

func TestRun_CancelledContext(t *testing.T) {
	store, dir := openStore(t)
	require.NoError(t, store.Save(testSearch.Key, []monitor.Job{{Title: "A", URL: "https://x/1"}}))

	statePath := filepath.Join(dir, "jobs_"+testSearch.Key+".json")
	before, err := os.ReadFile(statePath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	driver := &fakeDriver{jobs: []monitor.Job{{Title: "B", URL: "https://x/2"}}}
	r := &Runner{store: store, driver: driver}

	_, runErr := r.Run(ctx, testSearch)
	require.ErrorIs(t, runErr, context.Canceled)

	//a cancelled run never reaches the browser or the store
	assert.Zero(t, driver.calls)
	after, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestBoundedTimeout(t *testing.T) {
	t.Run("no deadline keeps the configured timeout", func(t *testing.T) {
		got, err := boundedTimeout(context.Background(), 90000)
		require.NoError(t, err)
		assert.Equal(t, float64(90000), got)
	})

	t.Run("near deadline caps the timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got, err := boundedTimeout(ctx, 90000)
		require.NoError(t, err)
		assert.Less(t, got, float64(90000))
		assert.Greater(t, got, float64(0))
	})

	t.Run("expired deadline fails", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		time.Sleep(5 * time.Millisecond)

		_, err := boundedTimeout(ctx, 90000)
		assert.Error(t, err)
	})
}
