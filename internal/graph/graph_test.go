package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreAddIsIdempotent(t *testing.T) {
	t.Parallel()

	g := NewStore()
	st := Statement{
		Subject:   IRI("https://example.org/g#this"),
		Predicate: IRI("https://example.org/p"),
		Object:    Lit("v"),
		Graph:     "https://example.org/g",
	}
	require.True(t, g.Add(st))
	require.False(t, g.Add(st))
	require.Equal(t, 1, g.Len())
}

func TestStoreRemoveMissing(t *testing.T) {
	t.Parallel()

	g := NewStore()
	err := g.Remove(Statement{Subject: IRI("s"), Predicate: IRI("p"), Object: Lit("o")})
	require.ErrorIs(t, err, ErrStatementNotFound)
}

func TestStoreMatchWildcards(t *testing.T) {
	t.Parallel()

	g := NewStore()
	s1 := Statement{Subject: IRI("s1"), Predicate: IRI("p"), Object: IRI("o1"), Graph: "g1"}
	s2 := Statement{Subject: IRI("s2"), Predicate: IRI("p"), Object: IRI("o2"), Graph: "g2"}
	s3 := Statement{Subject: IRI("s1"), Predicate: IRI("q"), Object: Lit("o1"), Graph: "g1"}
	g.AddAll([]Statement{s1, s2, s3})

	require.Len(t, g.Match(Term{}, Term{}, Term{}, ""), 3)
	require.Equal(t, []Statement{s1, s2}, g.Match(Term{}, IRI("p"), Term{}, ""))
	require.Equal(t, []Statement{s1, s3}, g.Match(IRI("s1"), Term{}, Term{}, ""))
	require.Equal(t, []Statement{s2}, g.Match(Term{}, Term{}, Term{}, "g2"))

	// literal and IRI objects with the same value are distinct terms
	require.Equal(t, []Statement{s1}, g.Match(Term{}, Term{}, IRI("o1"), ""))
	require.Equal(t, []Statement{s3}, g.Match(Term{}, Term{}, Lit("o1"), ""))
}

func TestStoreAnyAndHolds(t *testing.T) {
	t.Parallel()

	g := NewStore()
	s1 := Statement{Subject: IRI("s"), Predicate: IRI("p"), Object: Lit("first"), Graph: "g1"}
	s2 := Statement{Subject: IRI("s"), Predicate: IRI("p"), Object: Lit("second"), Graph: "g2"}
	g.AddAll([]Statement{s1, s2})

	obj, ok := g.Any(IRI("s"), IRI("p"))
	require.True(t, ok)
	require.Equal(t, Lit("first"), obj)

	_, ok = g.Any(IRI("s"), IRI("missing"))
	require.False(t, ok)

	require.True(t, g.Holds(IRI("s"), IRI("p"), Lit("second"), "g2"))
	require.False(t, g.Holds(IRI("s"), IRI("p"), Lit("second"), "g1"))
}

func TestStoreRemoveGraph(t *testing.T) {
	t.Parallel()

	g := NewStore()
	g.AddAll([]Statement{
		{Subject: IRI("s1"), Predicate: IRI("p"), Object: IRI("o"), Graph: "g1"},
		{Subject: IRI("s2"), Predicate: IRI("p"), Object: IRI("o"), Graph: "g2"},
		{Subject: IRI("s3"), Predicate: IRI("p"), Object: IRI("o"), Graph: "g1"},
	})
	g.RemoveGraph("g1")
	require.Equal(t, 1, g.Len())
	require.True(t, g.Holds(IRI("s2"), Term{}, Term{}, "g2"))
}

func TestTermNT(t *testing.T) {
	t.Parallel()

	require.Equal(t, "<https://a.example/x>", IRI("https://a.example/x").NT())
	require.Equal(t, `"Untitled Group"`, Lit("Untitled Group").NT())
	require.Equal(t, "_:b0", Blank("b0").NT())
}

func TestDocURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://a.example/p", DocURL("https://a.example/p#me"))
	require.Equal(t, "https://a.example/p", DocURL("https://a.example/p"))
}
