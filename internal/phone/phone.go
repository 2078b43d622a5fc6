// Package phone validates and canonicalizes Benin phone numbers.
package phone

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid Benin phone number")

// beninPhone matches an optional leading "+", the 229 country code, then
// exactly 8 subscriber digits.
var beninPhone = regexp.MustCompile(`^\+?229[0-9]{8}$`)

var stripper = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "")

// Normalize returns the canonical +229XXXXXXXX form of raw, or ErrInvalidPhone.
// Normalizing an already-normalized number returns it unchanged.
func Normalize(raw string) (string, error) {
	cleaned := stripper.Replace(raw)
	if !beninPhone.MatchString(cleaned) {
		return "", ErrInvalidPhone
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned, nil
	}
	return "+" + cleaned, nil
}

// IsValid reports whether raw normalizes to a Benin number.
func IsValid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// Mask hides the middle of a normalized number for display, e.g. +229****5678.
func Mask(phone string) string {
	if len(phone) < 8 {
		return phone
	}
	visible := phone[len(phone)-4:]
	prefix := ""
	if strings.HasPrefix(phone, "+229") {
		prefix = "+229"
	}
	return prefix + "****" + visible
}
