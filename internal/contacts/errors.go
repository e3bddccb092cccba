package contacts

import (
	"errors"
	"fmt"

	"github.com/mkel/solidgroups/internal/graph"
)

// Resolution failures.
var (
	// ErrMissingAddressBook means the type index has no AddressBook
	// registration at all.
	ErrMissingAddressBook = errors.New("no address book registered")

	// ErrIncompleteRegistration means a registration exists but carries no
	// instance pointing at the address book document.
	ErrIncompleteRegistration = errors.New("address book registration has no instance")
)

// CreateGroupError wraps a failed PATCH during group creation with the
// resource that refused it. A partial creation is possible: the group's own
// resource may exist with no index entry. Nothing rolls back.
type CreateGroupError struct {
	URL string
	Err error
}

func (e *CreateGroupError) Error() string {
	return fmt.Sprintf("create group: patch %s: %v", e.URL, e.Err)
}

func (e *CreateGroupError) Unwrap() error { return e.Err }

// UnsupportedEntityError means a dropped identifier resolved to something
// that is not a person.
type UnsupportedEntityError struct {
	URL string
}

func (e *UnsupportedEntityError) Error() string {
	return fmt.Sprintf("%s: only people are supported right now", e.URL)
}

// RemoveFailedError means a membership removal found nothing to remove.
type RemoveFailedError struct {
	Member graph.Term
	Err    error
}

func (e *RemoveFailedError) Error() string {
	return fmt.Sprintf("remove member %s: %v", e.Member.Value, e.Err)
}

func (e *RemoveFailedError) Unwrap() error { return e.Err }
