package mediawiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/pipeline"
)

func page(id int, title, content string) string {
	return fmt.Sprintf(
		`{"pageid":%d,"title":%q,"revisions":[{"slots":{"main":{"content":%q}}}]}`,
		id, title, content)
}

func TestFetchPagesFollowsContinue(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "citesweep-test/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, "101|102", r.URL.Query().Get("pageids"))

		w.Header().Set("Content-Type", "application/json")
		switch calls.Add(1) {
		case 1:
			require.Empty(t, r.URL.Query().Get("rvcontinue"))
			fmt.Fprintf(w, `{"continue":{"rvcontinue":"next-token","continue":"||"},"query":{"pages":[%s]}}`,
				page(101, "Coffee", "Coffee wikitext"))
		default:
			require.Equal(t, "next-token", r.URL.Query().Get("rvcontinue"))
			fmt.Fprintf(w, `{"query":{"pages":[%s]}}`,
				page(102, "Tea", "Tea wikitext"))
		}
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, UserAgent: "citesweep-test/1.0"}, zap.NewNop())

	var got []pipeline.Page
	for p, err := range c.FetchPages(context.Background(), []pipeline.PageID{"101", "102"}) {
		require.NoError(t, err)
		got = append(got, p)
	}

	require.Equal(t, []pipeline.Page{
		{ID: "101", Title: "Coffee", Text: "Coffee wikitext"},
		{ID: "102", Title: "Tea", Text: "Tea wikitext"},
	}, got)
	require.Equal(t, int32(2), calls.Load())
}

func TestFetchPagesSkipsMissingAndEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"query":{"pages":[
			{"pageid":7,"missing":true},
			{"pageid":8,"title":"No revisions"},
			%s,
			%s
		]}}`,
			page(9, "Empty text", ""),
			page(10, "Kept", "actual content"))
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, UserAgent: "t"}, zap.NewNop())

	var got []pipeline.Page
	for p, err := range c.FetchPages(context.Background(), []pipeline.PageID{"7", "8", "9", "10"}) {
		require.NoError(t, err)
		got = append(got, p)
	}

	require.Equal(t, []pipeline.Page{{ID: "10", Title: "Kept", Text: "actual content"}}, got)
}

func TestFetchPagesSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"toomanyvalues","info":"Too many pageids."}}`)
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, UserAgent: "t"}, zap.NewNop())

	var fetchErr error
	for _, err := range c.FetchPages(context.Background(), []pipeline.PageID{"1"}) {
		fetchErr = err
	}
	require.ErrorContains(t, fetchErr, "toomanyvalues")
}

func TestFetchPagesSurfacesHTTPFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{APIURL: srv.URL, UserAgent: "t"}, zap.NewNop())

	var fetchErr error
	for _, err := range c.FetchPages(context.Background(), []pipeline.PageID{"1"}) {
		fetchErr = err
	}
	require.ErrorContains(t, fetchErr, "unexpected status 503")
}

func TestFetchPagesHonorsContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"query":{"pages":[%s]}}`, page(1, "A", "text"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(Config{APIURL: srv.URL, UserAgent: "t"}, zap.NewNop())

	var fetchErr error
	for _, err := range c.FetchPages(ctx, []pipeline.PageID{"1"}) {
		fetchErr = err
	}
	require.Error(t, fetchErr)
}
