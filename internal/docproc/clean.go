package docproc

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// postcodeRe matches UK postcodes, e.g. "SW1A 1AA" or "M1 1AE".
var postcodeRe = regexp.MustCompile(`\b[A-Z]{1,2}\d[A-Z\d]? ?\d[A-Z]{2}\b`)

// phoneRe matches common UK phone number patterns: leading 0 or +44, then
// 9-10 further digits, optionally grouped with spaces or hyphens.
var phoneRe = regexp.MustCompile(`\b(?:\+44\s?|0)(?:\d[\s-]?){9,10}\b`)

// emailRe matches e-mail addresses.
var emailRe = regexp.MustCompile(`\b[\w.+-]+@[\w-]+\.[\w.-]+\b`)

// whitespaceRe collapses runs of whitespace to a single space.
var whitespaceRe = regexp.MustCompile(`\s+`)

// ligatureFixes repairs the most common ligature mis-decodings seen in
// scraped tribunal PDFs (PDF text extractors frequently emit these as
// private-use or mis-mapped code points).
var ligatureFixes = strings.NewReplacer(
	"ﬁ", "fi",
	"ﬂ", "fl",
	"ﬀ", "ff",
	"ﬃ", "ffi",
	"ﬄ", "ffl",
)

// Clean normalizes Unicode to NFC, repairs ligature mis-decodings, collapses
// whitespace, and redacts PII by regex. Redaction is mandatory before a
// chunk is ever indexed.
func Clean(text string) string {
	normalized := norm.NFC.String(text)
	normalized = ligatureFixes.Replace(normalized)
	normalized = redactPII(normalized)
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// redactPII replaces UK postcodes, phone numbers, and e-mail addresses with
// typed placeholders. Order matters: postcodes are matched before phone
// numbers so that a postcode is never mistaken for a digit run.
func redactPII(text string) string {
	text = postcodeRe.ReplaceAllString(text, "[POSTCODE]")
	text = phoneRe.ReplaceAllString(text, "[PHONE]")
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	return text
}
