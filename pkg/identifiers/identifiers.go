package identifiers

import (
	"strings"
	"unicode"
)

// Type represents the kind of ISBN a value is.
type Type string

const (
	TypeISBN10  Type = "isbn_10"
	TypeISBN13  Type = "isbn_13"
	TypeUnknown Type = ""
)

// Label is the human readable form shown next to an ISBN.
func (t Type) Label() string {
	switch t {
	case TypeISBN10:
		return "ISBN-10"
	case TypeISBN13:
		return "ISBN-13"
	default:
		return ""
	}
}

// DetectISBN classifies a submitted ISBN by its checksum. Anything that isn't
// a checksum-valid ISBN-10 or ISBN-13 is TypeUnknown.
func DetectISBN(value string) Type {
	normalized := NormalizeISBN(value)
	if len(normalized) == 13 && ValidateISBN13(normalized) {
		return TypeISBN13
	}
	if len(normalized) == 10 && ValidateISBN10(normalized) {
		return TypeISBN10
	}
	return TypeUnknown
}

// NormalizeISBN removes hyphens, spaces, and an "ISBN" prefix.
func NormalizeISBN(value string) string {
	value = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(value)), "ISBN:")
	value = strings.TrimPrefix(value, "ISBN")

	// Keep only digits and X (for ISBN-10 checksum)
	var result strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) || r == 'X' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ValidateISBN10 validates an ISBN-10 checksum.
// ISBN-10 uses modulo 11 with weights 10,9,8,7,6,5,4,3,2,1.
func ValidateISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}

	var sum int
	for i, r := range isbn {
		var digit int
		switch {
		case r == 'X' && i == 9:
			digit = 10
		case unicode.IsDigit(r):
			digit = int(r - '0')
		default:
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// ValidateISBN13 validates an ISBN-13 checksum.
// ISBN-13 uses alternating weights of 1 and 3.
func ValidateISBN13(isbn string) bool {
	if len(isbn) != 13 {
		return false
	}

	var sum int
	for i, r := range isbn {
		if !unicode.IsDigit(r) {
			return false
		}
		digit := int(r - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return sum%10 == 0
}
