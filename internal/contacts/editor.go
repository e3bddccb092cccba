package contacts

import (
	"context"
	"sync"

	"github.com/mkel/solidgroups/internal/graph"
	"github.com/mkel/solidgroups/internal/vocab"
)

// ChangeKind tags a membership change.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
)

// Editor edits one group's membership and name. Mutations apply to the local
// store only and are queued as pending patches; Sync pushes them to the
// remote resources. Every operation returns an explicit result instead of
// reporting through callbacks, so callers compose the flow themselves.
type Editor struct {
	store *graph.Store
	fetch *graph.Fetcher
	patch *graph.Patcher
	group Group

	mu      sync.Mutex
	pending []pendingPatch
}

type pendingPatch struct {
	url        string
	deletions  []graph.Statement
	insertions []graph.Statement
}

func NewEditor(store *graph.Store, fetch *graph.Fetcher, patch *graph.Patcher, group Group) *Editor {
	return &Editor{store: store, fetch: fetch, patch: patch, group: group}
}

// Group returns the group being edited.
func (e *Editor) Group() Group { return e.group }

// Name returns the group's current name, or the bare identifier fallback
// signal (ok=false) when none is set.
func (e *Editor) Name() (string, bool) {
	return GroupName(e.store, e.group.Node)
}

// Members returns the group's member nodes in store order.
func (e *Editor) Members() []graph.Term {
	sts := e.store.Match(e.group.Node, graph.IRI(vocab.HasMember), graph.Term{}, "")
	members := make([]graph.Term, 0, len(sts))
	for _, s := range sts {
		members = append(members, s.Object)
	}
	return members
}

// AddMember dereferences the identifier URL and adds it to the group. The
// resource must declare type Person (or vcard Individual); anything else is
// rejected with UnsupportedEntityError before any statement is touched.
// Adding a member that is already present is a no-op, so the add is
// idempotent. Fetch failures propagate unchanged.
func (e *Editor) AddMember(ctx context.Context, identifierURL string) (graph.Term, error) {
	if err := e.fetch.Load(ctx, identifierURL); err != nil {
		return graph.Term{}, err
	}

	member := graph.IRI(identifierURL)
	if !e.isPerson(member) {
		return graph.Term{}, &UnsupportedEntityError{URL: identifierURL}
	}

	st := e.membership(member)
	if !e.store.Holds(st.Subject, st.Predicate, st.Object, e.group.Doc) {
		e.store.Add(st)
		e.queue(pendingPatch{url: e.group.Doc, insertions: []graph.Statement{st}})
	}
	return member, nil
}

func (e *Editor) isPerson(member graph.Term) bool {
	return e.store.Holds(member, graph.IRI(vocab.Type), graph.IRI(vocab.Person), "") ||
		e.store.Holds(member, graph.IRI(vocab.Type), graph.IRI(vocab.Individual), "")
}

// RemoveMember drops the membership statement. Removing a member that is not
// in the group fails with RemoveFailedError and leaves the store untouched.
func (e *Editor) RemoveMember(member graph.Term) error {
	st := e.membership(member)
	if err := e.store.Remove(st); err != nil {
		return &RemoveFailedError{Member: member, Err: err}
	}
	e.queue(pendingPatch{url: e.group.Doc, deletions: []graph.Statement{st}})
	return nil
}

func (e *Editor) membership(member graph.Term) graph.Statement {
	return graph.Statement{
		Subject:   e.group.Node,
		Predicate: graph.IRI(vocab.HasMember),
		Object:    member,
		Graph:     e.group.Doc,
	}
}

// Rename replaces every existing name statement on the group node with one
// carrying the new literal, preserving each original statement's graph tag.
// A group with no name yet gets one in its own document.
func (e *Editor) Rename(name string) {
	olds := e.store.Match(e.group.Node, graph.IRI(vocab.FullName), graph.Term{}, "")
	if len(olds) == 0 {
		st := graph.Statement{
			Subject:   e.group.Node,
			Predicate: graph.IRI(vocab.FullName),
			Object:    graph.Lit(name),
			Graph:     e.group.Doc,
		}
		e.store.Add(st)
		e.queue(pendingPatch{url: e.group.Doc, insertions: []graph.Statement{st}})
		return
	}
	for _, old := range olds {
		replacement := old
		replacement.Object = graph.Lit(name)
		_ = e.store.Remove(old)
		e.store.Add(replacement)
		e.queue(pendingPatch{
			url:        old.Graph,
			deletions:  []graph.Statement{old},
			insertions: []graph.Statement{replacement},
		})
	}
}

func (e *Editor) queue(p pendingPatch) {
	e.mu.Lock()
	e.pending = append(e.pending, p)
	e.mu.Unlock()
}

// PendingCount reports how many local changes await synchronization.
func (e *Editor) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Sync replays pending changes against their remote resources in order.
// On failure, already-applied changes stay applied and the rest keep
// pending; a later Sync resumes from the failure point.
func (e *Editor) Sync(ctx context.Context) error {
	e.mu.Lock()
	queued := e.pending
	e.mu.Unlock()

	applied := 0
	for _, p := range queued {
		if err := e.patch.Patch(ctx, p.url, p.deletions, p.insertions); err != nil {
			e.mu.Lock()
			e.pending = e.pending[applied:]
			e.mu.Unlock()
			return err
		}
		applied++
	}
	e.mu.Lock()
	e.pending = e.pending[applied:]
	e.mu.Unlock()
	return nil
}
