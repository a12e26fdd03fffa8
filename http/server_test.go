package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docfed/docfed"
	docfedhttp "github.com/docfed/docfed/http"
	"github.com/docfed/docfed/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(aggregator docfed.Aggregator, scheduler docfed.Scheduler) *httptest.Server {
	s := docfedhttp.NewServer("127.0.0.1:0", aggregator, scheduler)
	return httptest.NewServer(s.Handler())
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv := testServer(&mock.Aggregator{}, &mock.Scheduler{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Search(t *testing.T) {
	t.Parallel()

	t.Run("GET maps query parameters", func(t *testing.T) {
		t.Parallel()

		var got docfed.SearchQuery
		aggregator := &mock.Aggregator{
			SearchFn: func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
				got = query
				return &docfed.ResultSet{Results: []*docfed.Result{}}, nil
			},
		}
		srv := testServer(aggregator, &mock.Scheduler{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/search?q=useEffect+cleanup&tech=react&providers=devdocs,reactdocs&limit=5")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "useEffect cleanup", got.Text)
		assert.Equal(t, "react", got.TechnologyHint)
		assert.Equal(t, []string{"devdocs", "reactdocs"}, got.ProviderIDs)
		assert.Equal(t, 5, got.Limit)
	})

	t.Run("POST decodes the JSON body", func(t *testing.T) {
		t.Parallel()

		var got docfed.SearchQuery
		aggregator := &mock.Aggregator{
			SearchFn: func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
				got = query
				return &docfed.ResultSet{}, nil
			},
		}
		srv := testServer(aggregator, &mock.Scheduler{})
		defer srv.Close()

		body := `{"text":"goroutine leaks","technologyHint":"go","limit":3}`
		resp, err := http.Post(srv.URL+"/search", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "goroutine leaks", got.Text)
		assert.Equal(t, "go", got.TechnologyHint)
		assert.Equal(t, 3, got.Limit)
	})

	t.Run("validation failures return 400 with the error code", func(t *testing.T) {
		t.Parallel()

		aggregator := &mock.Aggregator{
			SearchFn: func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
				return nil, docfed.Errorf(docfed.EINVALID, "query text required")
			},
		}
		srv := testServer(aggregator, &mock.Scheduler{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/search?q=")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, docfed.EINVALID, body.Code)
		assert.Equal(t, "query text required", body.Error)
	})

	t.Run("no eligible providers returns 503", func(t *testing.T) {
		t.Parallel()

		aggregator := &mock.Aggregator{
			SearchFn: func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
				return nil, docfed.Errorf(docfed.ECONFIG, "no eligible providers")
			},
		}
		srv := testServer(aggregator, &mock.Scheduler{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/search?q=anything")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("timeout_ms bounds the search context", func(t *testing.T) {
		t.Parallel()

		var hadDeadline bool
		aggregator := &mock.Aggregator{
			SearchFn: func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
				_, hadDeadline = ctx.Deadline()
				return &docfed.ResultSet{}, nil
			},
		}
		srv := testServer(aggregator, &mock.Scheduler{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/search?q=anything&timeout_ms=500")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, hadDeadline)
	})

	t.Run("malformed timeout_ms returns 400", func(t *testing.T) {
		t.Parallel()

		srv := testServer(&mock.Aggregator{}, &mock.Scheduler{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/search?q=anything&timeout_ms=soon")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed limit returns 400 without calling the aggregator", func(t *testing.T) {
		t.Parallel()

		aggregator := &mock.Aggregator{
			SearchFn: func(ctx context.Context, query docfed.SearchQuery) (*docfed.ResultSet, error) {
				t.Error("aggregator must not be called")
				return nil, nil
			},
		}
		srv := testServer(aggregator, &mock.Scheduler{})
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/search?q=anything&limit=many")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_IngestStatus(t *testing.T) {
	t.Parallel()

	scheduler := &mock.Scheduler{
		StatusFn: func(fingerprint string) (docfed.TaskState, bool) {
			if fingerprint == "fp-known" {
				return docfed.TaskPersisted, true
			}
			return "", false
		},
	}
	srv := testServer(&mock.Aggregator{}, scheduler)
	t.Cleanup(srv.Close)

	t.Run("known fingerprint returns its state", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/ingest/status?fingerprint=fp-known")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "persisted", body["state"])
	})

	t.Run("unknown fingerprint returns 404", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/ingest/status?fingerprint=fp-unknown")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing fingerprint returns 400", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(srv.URL + "/ingest/status")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_IngestStats(t *testing.T) {
	t.Parallel()

	scheduler := &mock.Scheduler{
		StatsFn: func() docfed.SchedulerStats {
			return docfed.SchedulerStats{Submitted: 12, Persisted: 10, Pending: 2}
		},
	}
	srv := testServer(&mock.Aggregator{}, scheduler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ingest/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stats docfed.SchedulerStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, uint64(12), stats.Submitted)
	assert.Equal(t, uint64(10), stats.Persisted)
	assert.Equal(t, 2, stats.Pending)
}
