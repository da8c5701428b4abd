package message

import (
	"net/url"
	"strings"
	"unicode"
)

// FallbackPhone is used when the configured number has no digits.
const FallbackPhone = "27723386828"

const whatsAppBase = "https://wa.me/"

// url.QueryEscape escapes these marks but encodeURIComponent, which the
// WhatsApp web client expects, keeps them literal.
var componentMarks = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// Digits strips everything except ASCII digits.
func Digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

// EncodeText percent-encodes s with encodeURIComponent semantics.
func EncodeText(s string) string {
	return componentMarks.Replace(url.QueryEscape(s))
}

// WhatsAppURL builds https://wa.me/<digits>?text=<encoded text>.
func WhatsAppURL(phone, text string) string {
	digits := Digits(phone)
	if digits == "" {
		digits = FallbackPhone
	}
	return whatsAppBase + digits + "?text=" + EncodeText(text)
}
