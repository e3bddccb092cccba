// Package graph is the linked-data store client: an in-memory quad store with
// pattern matching, an HTTP fetcher that loads remote Turtle resources into
// it, and a PATCH writer for appending/removing statements on a remote
// resource. The store is always injected explicitly; there is no package
// singleton.
package graph

import (
	"errors"
	"fmt"
	"sync"
)

// TermKind discriminates statement term variants. The zero value is the
// wildcard, so a zero Term matches anything in Match patterns.
type TermKind int

const (
	Any TermKind = iota
	KindIRI
	KindLiteral
	KindBlank
)

// Term is one position of a statement.
type Term struct {
	Kind  TermKind
	Value string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Lit returns a plain literal term.
func Lit(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// Blank returns a blank-node term with the given label.
func Blank(label string) Term { return Term{Kind: KindBlank, Value: label} }

// IsAny reports whether the term is a wildcard.
func (t Term) IsAny() bool { return t.Kind == Any }

func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return t.Value
	case KindLiteral:
		return t.Value
	case KindBlank:
		return "_:" + t.Value
	default:
		return "*"
	}
}

// NT renders the term in N-Triples form, used for PATCH bodies.
func (t Term) NT() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindLiteral:
		return fmt.Sprintf("%q", t.Value)
	case KindBlank:
		return "_:" + t.Value
	default:
		return "*"
	}
}

// Statement is a (subject, predicate, object, graph) fact. Graph is the IRI
// of the resource the statement belongs to.
type Statement struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     string
}

// NT renders the statement as an N-Triples line (graph tag omitted).
func (s Statement) NT() string {
	return s.Subject.NT() + " " + s.Predicate.NT() + " " + s.Object.NT() + " ."
}

func (s Statement) key() string {
	return s.Subject.NT() + "\x00" + s.Predicate.NT() + "\x00" + s.Object.NT() + "\x00" + s.Graph
}

// ErrStatementNotFound is returned by Remove when the statement is absent.
var ErrStatementNotFound = errors.New("statement not found")

// Store is a mutex-guarded in-memory quad set. Insertion order is preserved
// for Match results.
type Store struct {
	mu    sync.RWMutex
	stmts []Statement
	index map[string]int // key -> position in stmts
}

func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// Add inserts the statement. It reports false if an identical statement was
// already present.
func (g *Store) Add(s Statement) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLocked(s)
}

func (g *Store) addLocked(s Statement) bool {
	k := s.key()
	if _, ok := g.index[k]; ok {
		return false
	}
	g.index[k] = len(g.stmts)
	g.stmts = append(g.stmts, s)
	return true
}

// AddAll inserts every statement, skipping duplicates.
func (g *Store) AddAll(sts []Statement) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range sts {
		g.addLocked(s)
	}
}

// Remove deletes the statement, or returns ErrStatementNotFound.
func (g *Store) Remove(s Statement) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := s.key()
	pos, ok := g.index[k]
	if !ok {
		return ErrStatementNotFound
	}
	delete(g.index, k)
	g.stmts = append(g.stmts[:pos], g.stmts[pos+1:]...)
	for i := pos; i < len(g.stmts); i++ {
		g.index[g.stmts[i].key()] = i
	}
	return nil
}

// RemoveGraph drops every statement tagged with the given graph IRI.
func (g *Store) RemoveGraph(graphIRI string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.stmts[:0]
	for _, s := range g.stmts {
		if s.Graph != graphIRI {
			kept = append(kept, s)
		} else {
			delete(g.index, s.key())
		}
	}
	g.stmts = kept
	for i, s := range g.stmts {
		g.index[s.key()] = i
	}
}

// Match returns statements matching the pattern in insertion order. A zero
// Term matches any term; an empty graph string matches any graph.
func (g *Store) Match(subject, predicate, object Term, graphIRI string) []Statement {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Statement
	for _, s := range g.stmts {
		if matches(s, subject, predicate, object, graphIRI) {
			out = append(out, s)
		}
	}
	return out
}

// Any returns the object of the first statement matching (subject, predicate)
// in any graph.
func (g *Store) Any(subject, predicate Term) (Term, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, s := range g.stmts {
		if matches(s, subject, predicate, Term{}, "") {
			return s.Object, true
		}
	}
	return Term{}, false
}

// Holds reports whether at least one statement matches the pattern.
func (g *Store) Holds(subject, predicate, object Term, graphIRI string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, s := range g.stmts {
		if matches(s, subject, predicate, object, graphIRI) {
			return true
		}
	}
	return false
}

// Len returns the number of statements held.
func (g *Store) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.stmts)
}

func matches(s Statement, subject, predicate, object Term, graphIRI string) bool {
	if !subject.IsAny() && s.Subject != subject {
		return false
	}
	if !predicate.IsAny() && s.Predicate != predicate {
		return false
	}
	if !object.IsAny() && s.Object != object {
		return false
	}
	if graphIRI != "" && s.Graph != graphIRI {
		return false
	}
	return true
}
