package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeSpokenEmail checks the transcription heuristics on typical
// speech-to-text renderings of email addresses.
func TestNormalizeSpokenEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"jane dot doe at example dot com", "jane.doe@example.com"},
		{"JANE.DOE@EXAMPLE.COM", "jane.doe@example.com"},
		{"  jane.doe@example.com  ", "jane.doe@example.com"},
		{"jane doe at example dot com", "janedoe@example.com"},
		{"janedoe attherate example dot com", "janedoe@example.com"},
		{"jane at example dot co dot uk", "jane@example.co.uk"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeSpokenEmail(c.in), "input: %q", c.in)
	}
}

// TestNormalizeSpokenEmailLossy characterizes the known false positives: the
// replacement is substring-based, so addresses literally containing "dot"
// get mangled. This documents the current behavior rather than endorsing it.
func TestNormalizeSpokenEmailLossy(t *testing.T) {
	assert.Equal(t, ".son@example.com", NormalizeSpokenEmail("dotson@example.com"))
	assert.Equal(t, "pilot@example.com", NormalizeSpokenEmail("pilot@example.com"))
}

// TestValidEmail checks the post-normalization validation: an "@" with
// something before it and a "." in the domain part.
func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("jane.doe@example.com"))
	assert.True(t, validEmail("a@b.c"))
	assert.False(t, validEmail("janedoe"))
	assert.False(t, validEmail("jane@examplecom"))
	assert.False(t, validEmail("@example.com"))
	assert.False(t, validEmail("jane@"))
}
