// Package vocab is the shared namespace registry. Every well-known class and
// predicate IRI used by the rest of the codebase is resolved through here;
// nothing else hardcodes vocabulary strings.
package vocab

// Namespace is a base IRI that terms are minted under.
type Namespace string

// Term returns the full IRI for a local name under the namespace.
func (ns Namespace) Term(local string) string {
	return string(ns) + local
}

// Base namespaces.
const (
	RDF   Namespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	VCard Namespace = "http://www.w3.org/2006/vcard/ns#"
	FOAF  Namespace = "http://xmlns.com/foaf/0.1/"
	Solid Namespace = "http://www.w3.org/ns/solid/terms#"
)

// Class IRIs.
var (
	AddressBook = VCard.Term("AddressBook")
	Group       = VCard.Term("Group")
	Individual  = VCard.Term("Individual")
	Person      = FOAF.Term("Person")
)

// Predicate IRIs.
var (
	Type          = RDF.Term("type")
	ForClass      = Solid.Term("forClass")
	Instance      = Solid.Term("instance")
	IncludesGroup = VCard.Term("includesGroup")
	HasMember     = VCard.Term("hasMember")
	FullName      = VCard.Term("fn")
	HasPhoto      = VCard.Term("hasPhoto")
	FOAFName      = FOAF.Term("name")
	Image         = FOAF.Term("img")
)
