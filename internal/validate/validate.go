// Package validate holds the per-keystroke acceptance predicates for the
// product form fields. Each predicate receives the field's committed value
// and the candidate value after the keystroke is applied, and decides the
// single edit; the editing surface calls it on every keystroke, not on
// submit. Deleting characters is always accepted.
package validate

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Field length limits.
const (
	MaxSKULen         = 6
	MaxNumberLen      = 9
	MaxDescriptionLen = 15
	MaxBrandLen       = 15
	MaxModelLen       = 20
)

// SKUKey reports whether a SKU keystroke is acceptable: digits only, at
// most MaxSKULen characters.
func SKUKey(current, candidate string) bool {
	if isDeletion(current, candidate) {
		return true
	}
	return digitsOnly(candidate) && len(candidate) <= MaxSKULen
}

// StockKey reports whether a stock keystroke is acceptable: digits only,
// at most MaxNumberLen characters.
func StockKey(current, candidate string) bool {
	if isDeletion(current, candidate) {
		return true
	}
	return digitsOnly(candidate) && len(candidate) <= MaxNumberLen
}

// QuantityKey reports whether a quantity keystroke is acceptable: digits
// only, at most MaxNumberLen characters, and the resulting value must not
// exceed stock. Stock is the committed stock value at the moment of the
// check; callers pass zero when the stock field is empty.
func QuantityKey(current, candidate string, stock int64) bool {
	if isDeletion(current, candidate) {
		return true
	}
	if !digitsOnly(candidate) || len(candidate) > MaxNumberLen {
		return false
	}
	value, err := strconv.ParseInt(candidate, 10, 64)
	if err != nil {
		return false
	}
	return value <= stock
}

// TextKey reports whether a keystroke on a bounded text field is
// acceptable: letters only, and the resulting value stays under maxLen.
func TextKey(current, candidate string, maxLen int) bool {
	if isDeletion(current, candidate) {
		return true
	}
	return lettersOnly(candidate) && utf8.RuneCountInString(candidate) < maxLen
}

// ValidSKU reports whether a committed SKU value enables a lookup:
// 1 to MaxSKULen digit characters.
func ValidSKU(sku string) bool {
	return len(sku) >= 1 && len(sku) <= MaxSKULen && digitsOnly(sku)
}

func isDeletion(current, candidate string) bool {
	return len(candidate) < len(current)
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func lettersOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
