// Package contacts implements the group workflow over the linked-data store:
// resolving the address book from a type index, listing and creating groups,
// and editing group membership.
package contacts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mkel/solidgroups/internal/graph"
	"github.com/mkel/solidgroups/internal/vocab"
)

// AddressBook locates a user's contact data. Node is the book's root
// subject as registered in the type index; the three URLs derive from it.
type AddressBook struct {
	Node              graph.Term
	BaseURL           string
	GroupIndexURL     string
	GroupContainerURL string
}

// Group is a membership group. Node is the group subject; Doc is the
// resource owning the group's statements.
type Group struct {
	Node graph.Term
	Doc  string
}

// DefaultGroupName is given to freshly created groups.
const DefaultGroupName = "Untitled Group"

// Locator resolves the address book and creates group resources.
type Locator struct {
	Store *graph.Store
	Fetch *graph.Fetcher
	Patch *graph.Patcher
}

// Resolve fetches the type index and derives the address book locations from
// its AddressBook registration. It returns ErrMissingAddressBook when no
// registration asserts forClass AddressBook, ErrIncompleteRegistration when
// the registration has no instance, and propagates fetch failures unchanged.
func (l *Locator) Resolve(ctx context.Context, typeIndexURL string) (AddressBook, error) {
	if err := l.Fetch.Load(ctx, typeIndexURL); err != nil {
		return AddressBook{}, err
	}

	regs := l.Store.Match(graph.Term{}, graph.IRI(vocab.ForClass), graph.IRI(vocab.AddressBook), "")
	if len(regs) == 0 {
		return AddressBook{}, ErrMissingAddressBook
	}

	instance, ok := l.Store.Any(regs[0].Subject, graph.IRI(vocab.Instance))
	if !ok {
		return AddressBook{}, ErrIncompleteRegistration
	}

	base := bookBase(instance.Value)
	return AddressBook{
		Node:              instance,
		BaseURL:           base,
		GroupIndexURL:     base + "groups.ttl",
		GroupContainerURL: base + "Group/",
	}, nil
}

// bookBase strips a trailing book.ttl segment, with or without a fragment,
// from the instance URL. Anything else (including names merely ending in
// book.ttl) keeps its document URL as the base.
func bookBase(instanceURL string) string {
	doc := graph.DocURL(instanceURL)
	if strings.HasSuffix(doc, "/book.ttl") {
		return strings.TrimSuffix(doc, "book.ttl")
	}
	return doc
}

// CreateGroup mints a new empty group under the book's group container and
// records it in two resources: the group's own document and the group index.
// The own document is patched first; if that fails the index is left
// untouched. If the index patch fails afterwards, the orphaned group
// resource stays behind — creation is not transactional. Each successful
// patch is mirrored into the local store.
func (l *Locator) CreateGroup(ctx context.Context, book AddressBook) (Group, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	doc := book.GroupContainerURL + id + ".ttl"
	node := graph.IRI(doc + "#this")
	group := Group{Node: node, Doc: doc}

	own := []graph.Statement{
		{Subject: node, Predicate: graph.IRI(vocab.Type), Object: graph.IRI(vocab.Group), Graph: doc},
		{Subject: node, Predicate: graph.IRI(vocab.FullName), Object: graph.Lit(DefaultGroupName), Graph: doc},
	}
	index := []graph.Statement{
		{Subject: book.Node, Predicate: graph.IRI(vocab.IncludesGroup), Object: node, Graph: book.GroupIndexURL},
		{Subject: node, Predicate: graph.IRI(vocab.Type), Object: graph.IRI(vocab.Group), Graph: book.GroupIndexURL},
		{Subject: node, Predicate: graph.IRI(vocab.FullName), Object: graph.Lit(DefaultGroupName), Graph: book.GroupIndexURL},
	}

	if err := l.Patch.Patch(ctx, doc, nil, own); err != nil {
		return Group{}, &CreateGroupError{URL: doc, Err: err}
	}
	l.Store.AddAll(own)

	if err := l.Patch.Patch(ctx, book.GroupIndexURL, nil, index); err != nil {
		return Group{}, &CreateGroupError{URL: book.GroupIndexURL, Err: err}
	}
	l.Store.AddAll(index)

	return group, nil
}

// LoadGroups fetches the group index and returns the book's groups in the
// order the index lists them. The order is whatever the store encountered,
// not guaranteed stable across fetches.
func (l *Locator) LoadGroups(ctx context.Context, book AddressBook) ([]Group, error) {
	if err := l.Fetch.Load(ctx, book.GroupIndexURL); err != nil {
		return nil, err
	}
	sts := l.Store.Match(book.Node, graph.IRI(vocab.IncludesGroup), graph.Term{}, "")
	groups := make([]Group, 0, len(sts))
	for _, s := range sts {
		groups = append(groups, Group{Node: s.Object, Doc: graph.DocURL(s.Object.Value)})
	}
	return groups, nil
}

// GroupName returns the group's name from any graph holding one.
func GroupName(s *graph.Store, group graph.Term) (string, bool) {
	if name, ok := s.Any(group, graph.IRI(vocab.FullName)); ok {
		return name.Value, true
	}
	return "", false
}
