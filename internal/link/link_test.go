package link

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var urlSafePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestDeriveIDIsDeterministic(t *testing.T) {
	first := DeriveID("https://example.com/some/long/path", "6f1b87c2-3d3e-4a96-9f3d-111111111111")
	second := DeriveID("https://example.com/some/long/path", "6f1b87c2-3d3e-4a96-9f3d-111111111111")

	assert.Equal(t, first, second)
}

func TestDeriveIDLengthAndAlphabet(t *testing.T) {
	inputs := []struct {
		url    string
		userID string
	}{
		{"https://example.com", "user-1"},
		{"", ""},
		{"https://ru.wikipedia.org/wiki/%D0%9F%D1%83%D1%88%D0%BA%D0%B0", "user-2"},
		{"not even a url", "00000000-0000-0000-0000-000000000000"},
	}

	for _, input := range inputs {
		id := DeriveID(input.url, input.userID)
		assert.Len(t, id, IDLength)
		assert.Regexp(t, urlSafePattern, id)
	}
}

func TestDeriveIDDependsOnOwner(t *testing.T) {
	first := DeriveID("https://example.com", "user-a")
	second := DeriveID("https://example.com", "user-b")

	// Not a guarantee of the scheme, but with distinct digest inputs a
	// collision here would indicate the user ID is not part of the digest.
	assert.NotEqual(t, first, second)
}

func ExampleDeriveID() {
	id := DeriveID("https://example.com", "2a2b7b2e-55aa-4a3f-9a69-3f0a0c9df001")
	fmt.Println(len(id))
	// Output: 9
}
