// Package metadata round-trips structured booking fields through the free-text
// message of a visit record. The record schema has no columns for check-out
// date, night count, guest count, amount paid, payment reference or a
// manually-entered client identity, so producers append "Key: value" lines to
// the message and consumers decode them back out.
package metadata

import (
	"strconv"
	"strings"
)

// ShortStayMarker gates short-stay decoding. A message without this substring
// is an ordinary viewing request even if it happens to contain lines shaped
// like "Check-in: 2024-01-01".
const ShortStayMarker = "Short stay"

const (
	keyCheckIn          = "Check-in"
	keyCheckOut         = "Check-out"
	keyNights           = "Nights"
	keyGuests           = "Guests"
	keyTotal            = "Total"
	keyPaymentReference = "Payment reference"
	keyClientName       = "Client Name"
	keyClientPhone      = "Client Phone"
)

// ShortStay holds the booking fields of a short-stay message. Zero values
// mean unset; Detected reports whether the marker was present at all.
type ShortStay struct {
	Detected         bool
	CheckIn          string
	CheckOut         string
	Nights           int
	Guests           int
	Total            string
	PaymentReference string
}

// Client is a manually-entered client identity attached by an owner. It
// overrides the requester's account identity when the record has none.
type Client struct {
	Name  string
	Phone string
}

// Empty reports whether no client override is present, signaling callers to
// fall back to the requester's account identity.
func (c Client) Empty() bool {
	return c.Name == "" && c.Phone == ""
}

type Metadata struct {
	ShortStay ShortStay
	Client    Client
}

// Decode extracts the metadata sidecar from text. It never fails: empty
// input, arbitrary prose and binary garbage all decode to unset fields, and
// unrecognized lines are ignored. Decode is a pure function of text.
func Decode(text string) Metadata {
	var m Metadata
	if text == "" {
		return m
	}

	shortStay := strings.Contains(text, ShortStayMarker)
	m.ShortStay.Detected = shortStay

	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Client identity lines are not gated on any marker.
		switch key {
		case keyClientName:
			m.Client.Name = value
			continue
		case keyClientPhone:
			m.Client.Phone = value
			continue
		}

		if !shortStay {
			continue
		}
		switch key {
		case keyCheckIn:
			m.ShortStay.CheckIn = value
		case keyCheckOut:
			m.ShortStay.CheckOut = value
		case keyNights:
			m.ShortStay.Nights = parseCount(value)
		case keyGuests:
			m.ShortStay.Guests = parseCount(value)
		case keyTotal:
			m.ShortStay.Total = value
		case keyPaymentReference:
			m.ShortStay.PaymentReference = value
		}
	}

	return m
}

// parseCount strips every non-digit rune and parses the remainder. An empty
// or overflowing remainder is unset, never an error.
func parseCount(s string) int {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// EncodeShortStay builds the message text for a short-stay booking. Unset
// fields are omitted; Decode on the result recovers exactly the fields set.
func EncodeShortStay(s ShortStay) string {
	var b strings.Builder
	b.WriteString(ShortStayMarker + " booking.")
	writeLine(&b, keyCheckIn, s.CheckIn)
	writeLine(&b, keyCheckOut, s.CheckOut)
	if s.Nights > 0 {
		writeLine(&b, keyNights, strconv.Itoa(s.Nights))
	}
	if s.Guests > 0 {
		writeLine(&b, keyGuests, strconv.Itoa(s.Guests))
	}
	writeLine(&b, keyTotal, s.Total)
	writeLine(&b, keyPaymentReference, s.PaymentReference)
	return b.String()
}

// EncodeManualVisit builds the message text for an owner-entered visit. The
// preamble is any human-readable sentence; client identity follows as lines.
func EncodeManualVisit(preamble string, c Client) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(preamble))
	writeLine(&b, keyClientName, c.Name)
	writeLine(&b, keyClientPhone, c.Phone)
	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString("\n")
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
}
