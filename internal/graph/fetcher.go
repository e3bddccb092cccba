package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/knakk/rdf"
)

// FetchError wraps a failed resource fetch with the URL it was for. Status is
// zero when the failure happened before an HTTP response arrived.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DocumentCache stores raw fetched documents keyed by URL. Implemented by the
// sqlite cache; nil disables caching.
type DocumentCache interface {
	GetDocument(ctx context.Context, url string) (etag, body string, ok bool, err error)
	PutDocument(ctx context.Context, url, etag, body string) error
}

// Fetcher loads remote Turtle resources into a Store with
// fetch-if-needed semantics: each document URL is fetched at most once per
// Fetcher unless Refetch is used. Writes into the store are serialized per
// document.
type Fetcher struct {
	store  *Store
	client *http.Client
	cache  DocumentCache

	mu      sync.Mutex
	fetched map[string]bool
	locks   map[string]*sync.Mutex
}

func NewFetcher(store *Store, client *http.Client, cache DocumentCache) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		store:   store,
		client:  client,
		cache:   cache,
		fetched: map[string]bool{},
		locks:   map[string]*sync.Mutex{},
	}
}

// DocURL strips the fragment from an identifier URL, yielding the document
// that must be fetched to dereference it.
func DocURL(identifier string) string {
	if i := strings.IndexByte(identifier, '#'); i >= 0 {
		return identifier[:i]
	}
	return identifier
}

// Load fetches the document for the given URL into the store if it has not
// been loaded yet. It is safe for concurrent use; concurrent loads of the
// same document serialize.
func (f *Fetcher) Load(ctx context.Context, url string) error {
	return f.load(ctx, DocURL(url), false)
}

// Refetch drops any previously loaded statements for the document and fetches
// it again.
func (f *Fetcher) Refetch(ctx context.Context, url string) error {
	return f.load(ctx, DocURL(url), true)
}

// Loaded reports whether the document for the URL has been fetched.
func (f *Fetcher) Loaded(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[DocURL(url)]
}

func (f *Fetcher) docLock(doc string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.locks[doc]
	if !ok {
		l = &sync.Mutex{}
		f.locks[doc] = l
	}
	return l
}

func (f *Fetcher) load(ctx context.Context, doc string, force bool) error {
	l := f.docLock(doc)
	l.Lock()
	defer l.Unlock()

	f.mu.Lock()
	done := f.fetched[doc]
	f.mu.Unlock()
	if done && !force {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, doc, nil)
	if err != nil {
		return &FetchError{URL: doc, Err: err}
	}
	req.Header.Set("Accept", "text/turtle")

	var cachedBody string
	var haveCached bool
	if f.cache != nil {
		if etag, body, ok, cerr := f.cache.GetDocument(ctx, doc); cerr == nil && ok {
			cachedBody, haveCached = body, true
			if etag != "" {
				req.Header.Set("If-None-Match", etag)
			}
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Offline fallback: render from the cached copy when we have one.
		if haveCached {
			return f.ingest(doc, cachedBody, force)
		}
		return &FetchError{URL: doc, Err: err}
	}
	defer resp.Body.Close()

	var body string
	switch {
	case resp.StatusCode == http.StatusNotModified && haveCached:
		body = cachedBody
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		raw, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return &FetchError{URL: doc, Err: rerr}
		}
		body = string(raw)
		if f.cache != nil {
			_ = f.cache.PutDocument(ctx, doc, resp.Header.Get("ETag"), body)
		}
	default:
		return &FetchError{URL: doc, Status: resp.StatusCode}
	}

	return f.ingest(doc, body, force)
}

func (f *Fetcher) ingest(doc, body string, force bool) error {
	sts, err := decodeTurtle(doc, body)
	if err != nil {
		return &FetchError{URL: doc, Err: err}
	}
	if force {
		f.store.RemoveGraph(doc)
	}
	f.store.AddAll(sts)
	f.mu.Lock()
	f.fetched[doc] = true
	f.mu.Unlock()
	return nil
}

// decodeTurtle parses a Turtle document into statements tagged with the
// document graph. The document URL is injected as @base so relative IRIs
// resolve the way the server intended.
func decodeTurtle(doc, body string) ([]Statement, error) {
	src := fmt.Sprintf("@base <%s> .\n%s", doc, body)
	dec := rdf.NewTripleDecoder(strings.NewReader(src), rdf.Turtle)
	var out []Statement
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Statement{
			Subject:   fromRDF(tr.Subj),
			Predicate: fromRDF(tr.Pred),
			Object:    fromRDF(tr.Obj),
			Graph:     doc,
		})
	}
	return out, nil
}

func fromRDF(t rdf.Term) Term {
	switch t.Type() {
	case rdf.TermIRI:
		return IRI(t.String())
	case rdf.TermBlank:
		return Blank(strings.TrimPrefix(t.String(), "_:"))
	default:
		return Lit(t.String())
	}
}
