package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgdir/internal"
	"orgdir/internal/storage"
)

func TestFetchAllRecordsRun(t *testing.T) {
	store := newFakeStore(
		internal.RawRecord{ID: "recA", Fields: internal.Fields{"Name": "A", "Contact Information": []any{"recC"}}},
		internal.RawRecord{ID: "recB", Fields: internal.Fields{"Name": "B"}},
	)
	store.byID["recC"] = internal.Fields{"email": "a@example.org"}
	runs := &fakeRuns{}

	orgs, err := NewDirectoryService(store, "fake", runs, nil).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, "a@example.org", orgs[0].ContactInformation.Email)
	assert.Equal(t, "B", orgs[1].Name)

	require.Len(t, runs.runs, 1)
	assert.NotEmpty(t, runs.runs[0].traceID)
	assert.Equal(t, "fake", runs.runs[0].source)
	assert.Equal(t, 2, runs.runs[0].counts["organizations"])
	assert.Equal(t, 1, runs.runs[0].counts["linkedRecords"])
}

func TestFetchAllListingFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("airtable api error: status=401")

	_, err := NewDirectoryService(store, "fake", nil, nil).FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.listErr)
	assert.Contains(t, err.Error(), "fetch organizations")
}

func TestFetchAllIgnoresRunRecorderFailure(t *testing.T) {
	store := newFakeStore(internal.RawRecord{ID: "recA"})
	runs := &fakeRuns{err: errors.New("disk full")}

	orgs, err := NewDirectoryService(store, "fake", runs, nil).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}

func TestSmokeMirrorToXLSX(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "orgdir.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ReplaceRecords([]internal.RawRecord{
		{ID: "recOrg", Fields: internal.Fields{
			"Name":                  "Mondragon",
			"Tags":                  "coop; federation",
			"Headquarters Location": []any{"recHQ"},
			"Token Information":     []any{"recNope"},
		}},
		{ID: "recHQ", Fields: internal.Fields{"City": "Arrasate", "Country": "Spain"}},
	}))

	orgs, err := NewDirectoryService(db, "mirror", db, nil).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, "Arrasate", orgs[0].HeadquartersLocation.City)
	assert.Equal(t, "Unknown Token", orgs[0].TokenInformation.TokenName)

	runs, err := db.ListRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "mirror", runs[0].Source)

	out := filepath.Join(tmp, "out", "organizations.xlsx")
	require.NoError(t, ExportOrganizationsToXLSX(orgs, out))
	assert.FileExists(t, out)
}
