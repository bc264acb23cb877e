// Package phone canonicalizes human-entered phone numbers into dialable
// international digit strings.
package phone

import "strings"

// countryPrefix is the Kenyan dialing code applied to local-format numbers.
const countryPrefix = "254"

// Normalize reduces raw to bare digits and rewrites local Kenyan formats to
// international form:
//
//	"0712345678"       -> "254712345678"
//	"712345678"        -> "254712345678"
//	"+254 712 345 678" -> "254712345678"
//
// An empty result means the input held no digits; callers treat that as "no
// destination". Anything already international or unrecognized passes through
// unchanged rather than being rejected.
func Normalize(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "0") && len(s) >= 10 {
		return countryPrefix + s[1:]
	}
	if len(s) == 9 && strings.HasPrefix(s, "7") {
		return countryPrefix + s
	}
	return s
}
