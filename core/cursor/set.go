package cursor

import "strings"

// Set is a set of characters. The zero value is empty.
type Set struct {
	chars string
	fn    func(rune) bool
}

// Chars creates a set holding every character of s.
func Chars(s string) Set {
	return Set{chars: s}
}

// Func creates a set from a membership predicate.
func Func(fn func(rune) bool) Set {
	return Set{fn: fn}
}

// Contains reports whether r is a member of the set. EOF is never a member.
func (s Set) Contains(r rune) bool {
	if r == EOF {
		return false
	}
	if s.chars != "" && strings.ContainsRune(s.chars, r) {
		return true
	}
	return s.fn != nil && s.fn(r)
}

// Union returns a set holding the members of both s and o.
func (s Set) Union(o Set) Set {
	if s.fn == nil && o.fn == nil {
		return Chars(s.chars + o.chars)
	}
	return Func(func(r rune) bool {
		return s.Contains(r) || o.Contains(r)
	})
}

// Complement returns a set holding every character not in s.
func (s Set) Complement() Set {
	return Func(func(r rune) bool {
		return !s.Contains(r)
	})
}
