package types

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalization rules, applied AFTER the validator struct tags pass.
//
// The validator tags check shape (lengths, ranges, required-ness); the
// functions here check character classes and canonicalize the values so
// the database only ever sees one spelling of each:
//
//	symbol   → letters only, stored UPPERCASE  ("h" and "H" are the same)
//	name     → letters and spaces, Title Case  ("hydrogen" → "Hydrogen")
//	username → letters/digits/underscore, lowercase
//
// Canonicalizing on the way in is what makes the case-insensitive symbol
// lookup a plain equality match in SQL.

// titleCase runs x/text's title caser over s. A cases.Caser carries
// internal state, so we build a fresh one per call rather than sharing
// one across request goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// errors surfaced to the client as 422 validation failures
var (
	ErrSymbolNotAlpha   = errors.New("symbol must contain only letters")
	ErrNameNotAlpha     = errors.New("name must contain only letters and spaces")
	ErrUsernameNotAlnum = errors.New("username must contain only letters, numbers, and underscores")
)

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isLettersOrSpaces(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

func isAlnumOrUnderscore(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// Normalize canonicalizes an inbound Element in place.
// Returns a validation error if symbol or name contain forbidden runes.
func (e *Element) Normalize() error {
	if !isLetters(e.Symbol) {
		return ErrSymbolNotAlpha
	}
	if !isLettersOrSpaces(e.Name) {
		return ErrNameNotAlpha
	}
	e.Symbol = strings.ToUpper(e.Symbol)
	e.Name = titleCase(e.Name)
	return nil
}

// Normalize canonicalizes the fields that are present in the patch.
// Nil fields are untouched — they mean "do not change", not "clear".
func (p *ElementPatch) Normalize() error {
	if p.Symbol != nil {
		if !isLetters(*p.Symbol) {
			return ErrSymbolNotAlpha
		}
		upper := strings.ToUpper(*p.Symbol)
		p.Symbol = &upper
	}
	if p.Name != nil {
		if !isLettersOrSpaces(*p.Name) {
			return ErrNameNotAlpha
		}
		titled := titleCase(*p.Name)
		p.Name = &titled
	}
	return nil
}

// Normalize lowercases the username and applies the default role.
// Lowercasing here (and only here) is what makes logins effectively
// case-insensitive end to end: the store itself never normalizes.
func (r *RegisterRequest) Normalize() error {
	if !isAlnumOrUnderscore(r.Username) {
		return ErrUsernameNotAlnum
	}
	r.Username = strings.ToLower(r.Username)
	if r.Role == "" {
		r.Role = RoleStudent
	}
	return nil
}
