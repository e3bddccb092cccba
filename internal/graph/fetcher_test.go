package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFetcherLoadsTurtleIntoStore(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/turtle")
		fmt.Fprint(w, `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
<#me> a foaf:Person ;
    foaf:name "Bob" .
`)
	}))
	t.Cleanup(srv.Close)

	store := NewStore()
	f := NewFetcher(store, srv.Client(), nil)

	doc := srv.URL + "/profile"
	require.NoError(t, f.Load(testContext(t), doc+"#me"))

	me := IRI(doc + "#me")
	require.True(t, store.Holds(me, IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), IRI("http://xmlns.com/foaf/0.1/Person"), doc))
	require.True(t, store.Holds(me, IRI("http://xmlns.com/foaf/0.1/name"), Lit("Bob"), doc))
}

func TestFetcherFetchesEachDocumentOnce(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		fmt.Fprint(w, "<http://a.example/s> <http://a.example/p> <http://a.example/o> .")
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(NewStore(), srv.Client(), nil)
	ctx := testContext(t)
	doc := srv.URL + "/doc"
	require.NoError(t, f.Load(ctx, doc))
	require.NoError(t, f.Load(ctx, doc+"#frag"))
	require.NoError(t, f.Load(ctx, doc))
	require.True(t, f.Loaded(doc))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, hits)
}

func TestFetcherStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(NewStore(), srv.Client(), nil)
	err := f.Load(testContext(t), srv.URL+"/missing")

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, srv.URL+"/missing", fe.URL)
	require.Equal(t, http.StatusNotFound, fe.Status)
	require.False(t, f.Loaded(srv.URL+"/missing"))
}

// memCache is an in-memory DocumentCache for tests.
type memCache struct {
	mu   sync.Mutex
	docs map[string][2]string // url -> (etag, body)
}

func newMemCache() *memCache { return &memCache{docs: map[string][2]string{}} }

func (c *memCache) GetDocument(_ context.Context, url string) (string, string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[url]
	return d[0], d[1], ok, nil
}

func (c *memCache) PutDocument(_ context.Context, url, etag, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[url] = [2]string{etag, body}
	return nil
}

func TestFetcherConditionalGetUsesCache(t *testing.T) {
	t.Parallel()

	body := `<http://a.example/s> <http://a.example/p> "v" .`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	ctx := testContext(t)
	doc := srv.URL + "/doc"
	c := newMemCache()

	f1 := NewFetcher(NewStore(), srv.Client(), c)
	require.NoError(t, f1.Load(ctx, doc))
	etag, cached, ok, err := c.GetDocument(ctx, doc)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `"v1"`, etag)
	require.Equal(t, body, cached)

	// a fresh fetcher revalidates and parses the cached copy on 304
	store := NewStore()
	f2 := NewFetcher(store, srv.Client(), c)
	require.NoError(t, f2.Load(ctx, doc))
	require.True(t, store.Holds(IRI("http://a.example/s"), IRI("http://a.example/p"), Lit("v"), doc))
}

func TestFetcherRefetchReplacesGraph(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	version := 1
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		v := version
		mu.Unlock()
		fmt.Fprintf(w, `<http://a.example/s> <http://a.example/p> "v%d" .`, v)
	}))
	t.Cleanup(srv.Close)

	store := NewStore()
	f := NewFetcher(store, srv.Client(), nil)
	ctx := testContext(t)
	doc := srv.URL + "/doc"

	require.NoError(t, f.Load(ctx, doc))
	mu.Lock()
	version = 2
	mu.Unlock()
	require.NoError(t, f.Refetch(ctx, doc))

	require.Equal(t, 1, store.Len())
	require.True(t, store.Holds(IRI("http://a.example/s"), IRI("http://a.example/p"), Lit("v2"), doc))
}
