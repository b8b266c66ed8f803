package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryServer(t *testing.T, pages []divisionsPage) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/clients/authorization/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		_ = json.NewEncoder(w).Encode(map[string]string{"jwt": "test-token"})
	})
	mux.HandleFunc("/divisions", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-token", r.Header.Get("Authorization"))
		require.Equal(t, "UA", r.URL.Query().Get("countryCodes"))
		require.Equal(t, "PostBranch", r.URL.Query().Get("divisionCategories"))
		require.Equal(t, "100", r.URL.Query().Get("limit"))

		page := r.URL.Query().Get("page")
		for i := range pages {
			pages[i].CurrentPage = i + 1
			pages[i].LastPage = len(pages)
		}
		switch page {
		case "", "1":
			_ = json.NewEncoder(w).Encode(pages[0])
		case "2":
			_ = json.NewEncoder(w).Encode(pages[1])
		default:
			http.Error(w, "no such page", http.StatusNotFound)
		}
	})
	return httptest.NewServer(mux)
}

// The provider serves the whole of Europe; only home-country branch offices
// belong in the directory, so both filters must ride on every page request.
func TestDirectoryFetchRequestsOnlyLocalBranches(t *testing.T) {
	var divisionsQuery url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/clients/authorization/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"jwt": "test-token"})
	})
	mux.HandleFunc("/divisions", func(w http.ResponseWriter, r *http.Request) {
		divisionsQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(divisionsPage{CurrentPage: 1, LastPage: 1})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewPostClient(server.URL, "test-key")
	_, err := client.FetchDirectory(context.Background())
	require.NoError(t, err)

	require.NotNil(t, divisionsQuery)
	assert.Equal(t, "UA", divisionsQuery.Get("countryCodes"))
	assert.Equal(t, "PostBranch", divisionsQuery.Get("divisionCategories"))
	assert.Equal(t, "100", divisionsQuery.Get("limit"))
	assert.Equal(t, "1", divisionsQuery.Get("page"))
}

func TestDirectorySyncPersistsAllPages(t *testing.T) {
	pages := []divisionsPage{
		{Data: []wireDivision{
			{ID: 1, Name: "Відділення №1", Status: models.OfficeStatusWorking, Settlement: "Київ",
				Region: wireRegion{ID: 10, Name: "Київська"}},
			{ID: 2, Name: "Відділення №2", Status: models.OfficeStatusWorking, Settlement: "Львів",
				Region: wireRegion{ID: 20, Name: "Львівська"}},
		}},
		{Data: []wireDivision{
			{ID: 3, Name: "Відділення №3", Status: "Closed", Settlement: "Львів",
				Region: wireRegion{ID: 20, Name: "Львівська"}},
		}},
	}
	server := newDirectoryServer(t, pages)
	defer server.Close()

	db := newTestDB(t)
	postRepo := repositories.NewPostRepository(db)
	sync := NewPostSyncService(NewPostClient(server.URL, "test-key"), postRepo, newMemoryCache())

	require.NoError(t, sync.Run(context.Background()))

	regions, err := postRepo.GetRegions(context.Background())
	require.NoError(t, err)
	assert.Len(t, regions, 2)

	var offices int64
	require.NoError(t, db.Model(&models.PostOffice{}).Count(&offices).Error)
	assert.EqualValues(t, 3, offices)
}

// A division nested under a sub-region is filed under the top-most parent.
func TestDirectorySyncCollapsesSubRegions(t *testing.T) {
	pages := []divisionsPage{
		{Data: []wireDivision{
			{ID: 1, Name: "Відділення №1", Status: models.OfficeStatusWorking, Settlement: "Ірпінь",
				Region: wireRegion{
					ID: 11, Name: "Бучанський район",
					Parent: &wireRegion{ID: 10, Name: "Київська"},
				}},
		}},
		{Data: nil},
	}
	server := newDirectoryServer(t, pages)
	defer server.Close()

	db := newTestDB(t)
	postRepo := repositories.NewPostRepository(db)
	sync := NewPostSyncService(NewPostClient(server.URL, "test-key"), postRepo, newMemoryCache())

	require.NoError(t, sync.Run(context.Background()))

	regions, err := postRepo.GetRegions(context.Background())
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "Київська", regions[0].Name)
}

// A second sync run refreshes office status in place instead of duplicating
// rows, so an office that shut down disappears from checkout.
func TestDirectorySyncRefreshesStatus(t *testing.T) {
	pages := []divisionsPage{
		{Data: []wireDivision{
			{ID: 1, Name: "Відділення №1", Status: models.OfficeStatusWorking, Settlement: "Київ",
				Region: wireRegion{ID: 10, Name: "Київська"}},
		}},
		{Data: nil},
	}
	server := newDirectoryServer(t, pages)
	defer server.Close()

	db := newTestDB(t)
	postRepo := repositories.NewPostRepository(db)
	sync := NewPostSyncService(NewPostClient(server.URL, "test-key"), postRepo, newMemoryCache())

	require.NoError(t, sync.Run(context.Background()))

	pages[0].Data[0].Status = "Closed"
	require.NoError(t, sync.Run(context.Background()))

	office, err := postRepo.GetOfficeByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, office)
	assert.Equal(t, "Closed", office.Status)

	var count int64
	require.NoError(t, db.Model(&models.PostOffice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// A provider failure leaves the previously synced directory untouched.
func TestDirectorySyncFailureKeepsOldDirectory(t *testing.T) {
	pages := []divisionsPage{
		{Data: []wireDivision{
			{ID: 1, Name: "Відділення №1", Status: models.OfficeStatusWorking, Settlement: "Київ",
				Region: wireRegion{ID: 10, Name: "Київська"}},
		}},
		{Data: nil},
	}
	server := newDirectoryServer(t, pages)

	db := newTestDB(t)
	postRepo := repositories.NewPostRepository(db)
	sync := NewPostSyncService(NewPostClient(server.URL, "test-key"), postRepo, newMemoryCache())

	require.NoError(t, sync.Run(context.Background()))
	server.Close()

	assert.Error(t, sync.Run(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.PostOffice{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
