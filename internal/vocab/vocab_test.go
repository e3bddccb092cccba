package vocab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTermConstruction(t *testing.T) {
	t.Parallel()

	require.Equal(t, "http://www.w3.org/2006/vcard/ns#AddressBook", AddressBook)
	require.Equal(t, "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", Type)
	require.Equal(t, "http://www.w3.org/ns/solid/terms#forClass", ForClass)
	require.Equal(t, "http://xmlns.com/foaf/0.1/Person", Person)
	require.Equal(t, "http://www.w3.org/2006/vcard/ns#custom", VCard.Term("custom"))
}
