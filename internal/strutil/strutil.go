// Package strutil provides the small string primitives the rest of the
// assembler builds on: case-insensitive prefix tests, scanning, and the
// quote-aware textual substitution used by macro expansion.
package strutil

import "strings"

// TrimString trims leading and trailing ASCII whitespace.
func TrimString(s string) string {
	return strings.TrimSpace(s)
}

// JoinString joins parts with sep.
func JoinString(parts []string, sep string) string {
	return strings.Join(parts, sep)
}

// HasCaseInsensitivePrefix reports whether the first len(p) bytes of s match
// p without regard to case.
func HasCaseInsensitivePrefix(s, p string) bool {
	if len(s) < len(p) {
		return false
	}
	return strings.EqualFold(s[:len(p)], p)
}

// ScanAhead returns the first offset in s at which pred(s[offset]) == polarity,
// or len(s) if no such offset exists.
func ScanAhead(s string, pred func(byte) bool, polarity bool) int {
	for i := 0; i < len(s); i++ {
		if pred(s[i]) == polarity {
			return i
		}
	}
	return len(s)
}

// Substitution is one (old, new) pair for StringReplace. Callers must
// pre-sort substitutions by descending len(Old) so that a longer prefix
// (e.g. "!foobar") wins over a shorter one that is also a prefix of it
// (e.g. "!foo"); the "@" placeholder is conventionally pinned first since it
// applies unconditionally regardless of length ordering.
type Substitution struct {
	Old string
	New string
}

// StringReplace performs a left-to-right scan of text, replacing the first
// matching substitution (in the order given) at each position. Inside a
// '...' or "..." literal no substitution is attempted; a backslash inside
// such a literal makes the following character literal, so neither can ever
// start a match.
func StringReplace(text string, subs []Substitution) string {
	var out strings.Builder
	out.Grow(len(text))

	quote := byte(0)
	i := 0
	for i < len(text) {
		c := text[i]

		if quote != 0 {
			out.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				out.WriteByte(text[i+1])
				i += 2
				continue
			}
			if c == quote {
				quote = 0
			}
			i++
			continue
		}

		if c == '\'' || c == '"' {
			quote = c
			out.WriteByte(c)
			i++
			continue
		}

		matched := false
		for _, sub := range subs {
			if sub.Old == "" {
				continue
			}
			if strings.HasPrefix(text[i:], sub.Old) {
				out.WriteString(sub.New)
				i += len(sub.Old)
				matched = true
				break
			}
		}
		if !matched {
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}
