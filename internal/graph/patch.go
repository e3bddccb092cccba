package graph

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// PatchError wraps a failed PATCH with the resource it targeted.
type PatchError struct {
	URL    string
	Status int
	Err    error
}

func (e *PatchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("patch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("patch %s: %v", e.URL, e.Err)
}

func (e *PatchError) Unwrap() error { return e.Err }

// Patcher issues append/remove operations against individual remote
// resources as SPARQL Update bodies. Writes to the same resource serialize;
// there is no cross-resource transaction, which callers must account for.
type Patcher struct {
	client *http.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewPatcher(client *http.Client) *Patcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Patcher{client: client, locks: map[string]*sync.Mutex{}}
}

func (p *Patcher) resourceLock(url string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[url]
	if !ok {
		l = &sync.Mutex{}
		p.locks[url] = l
	}
	return l
}

// Patch removes deletions and appends insertions on the target resource. The
// statements' graph tags are ignored; the target is the resource URL itself.
// Callers mirror the statements into the local store only after success.
func (p *Patcher) Patch(ctx context.Context, resourceURL string, deletions, insertions []Statement) error {
	body := SPARQLUpdate(deletions, insertions)
	if body == "" {
		return nil
	}

	l := p.resourceLock(resourceURL)
	l.Lock()
	defer l.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, resourceURL, strings.NewReader(body))
	if err != nil {
		return &PatchError{URL: resourceURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/sparql-update")

	resp, err := p.client.Do(req)
	if err != nil {
		return &PatchError{URL: resourceURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &PatchError{URL: resourceURL, Status: resp.StatusCode}
	}
	return nil
}

// SPARQLUpdate renders the delete/insert sets as a SPARQL Update document
// with statements in N-Triples form.
func SPARQLUpdate(deletions, insertions []Statement) string {
	var b strings.Builder
	if len(deletions) > 0 {
		b.WriteString("DELETE DATA {\n")
		for _, s := range deletions {
			b.WriteString("  " + s.NT() + "\n")
		}
		b.WriteString("};\n")
	}
	if len(insertions) > 0 {
		b.WriteString("INSERT DATA {\n")
		for _, s := range insertions {
			b.WriteString("  " + s.NT() + "\n")
		}
		b.WriteString("};\n")
	}
	return b.String()
}
