package contacts

import (
	"context"

	"github.com/mkel/solidgroups/internal/graph"
	"github.com/mkel/solidgroups/internal/vocab"
)

// Person is a read-only display projection of a member. Name and Photo are
// whatever the member's own document declares; both may be empty.
type Person struct {
	Node  graph.Term
	Name  string
	Photo string
}

// PersonView projects display attributes for a member node from whatever the
// store already holds. Name prefers vcard fn, then foaf name; Photo prefers
// vcard hasPhoto, then foaf img.
func PersonView(s *graph.Store, node graph.Term) Person {
	p := Person{Node: node}
	if v, ok := s.Any(node, graph.IRI(vocab.FullName)); ok {
		p.Name = v.Value
	} else if v, ok := s.Any(node, graph.IRI(vocab.FOAFName)); ok {
		p.Name = v.Value
	}
	if v, ok := s.Any(node, graph.IRI(vocab.HasPhoto)); ok {
		p.Photo = v.Value
	} else if v, ok := s.Any(node, graph.IRI(vocab.Image)); ok {
		p.Photo = v.Value
	}
	return p
}

// FetchPerson lazily dereferences the member's document before projecting.
// Fetch failures are tolerated: the projection then falls back to the bare
// identifier.
func FetchPerson(ctx context.Context, s *graph.Store, f *graph.Fetcher, node graph.Term) Person {
	_ = f.Load(ctx, node.Value)
	return PersonView(s, node)
}

// DisplayName is the row label for a member: the resolved name, else the
// bracketed identifier.
func (p Person) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "[" + p.Node.Value + "]"
}
