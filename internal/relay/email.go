package relay

import "strings"

// NormalizeSpokenEmail converts a speech-to-text transcription of an email
// address into a plain address: lowercased, with spoken separators ("dot",
// "at", "attherate") replaced by their symbols and remaining spaces removed.
//
// The replacement works on substrings, so addresses that literally contain
// "dot" (such as dotson@example.com) get mangled. Callers validate the
// result before using it.
func NormalizeSpokenEmail(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " at ", "@")
	s = strings.ReplaceAll(s, "attherate", "@")
	s = strings.ReplaceAll(s, " dot ", ".")
	s = strings.ReplaceAll(s, "dot", ".")
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// validEmail reports whether the address has an "@" with something before it
// and a "." somewhere in the domain part.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
