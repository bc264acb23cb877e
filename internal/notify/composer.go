// Package notify builds outbound notification artifacts from a visit record.
// Builders are pure: they resolve destinations and compose text, and the
// caller decides if and when anything is dispatched.
package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nyumbani/visits-api/internal/domain"
	"github.com/nyumbani/visits-api/internal/metadata"
	"github.com/nyumbani/visits-api/internal/phone"
)

// DeepLink opens an external messaging client pre-filled with a destination
// number and confirmation text.
type DeepLink struct {
	Destination string `json:"destination"` // dialable international digits
	Text        string `json:"text"`
}

// URL renders the link in wa.me form.
func (d DeepLink) URL() string {
	return "https://wa.me/" + d.Destination + "?text=" + url.QueryEscape(d.Text)
}

// ReceiptEmail is a plain-text booking receipt ready for a mailer.
type ReceiptEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// BuildDeepLink composes the owner's follow-up chat link for a visit. The
// destination prefers a manually-entered client phone from the message
// sidecar and falls back to the requester's account phone.
func BuildDeepLink(v *domain.Visit, p *domain.Property, requester *domain.User) (*DeepLink, error) {
	md := metadata.Decode(v.Message)

	raw := md.Client.Phone
	if raw == "" && requester != nil {
		raw = requester.Phone
	}
	if raw == "" {
		return nil, fmt.Errorf("no phone on record: %w", domain.ErrNoDestination)
	}

	digits := phone.Normalize(raw)
	if digits == "" {
		return nil, fmt.Errorf("phone %q has no digits: %w", raw, domain.ErrNoDestination)
	}

	name := displayName(md, v, requester)
	when := formatDate(v.ScheduledDate)
	if v.ScheduledTime != "" {
		when += " at " + v.ScheduledTime
	}
	text := fmt.Sprintf("Hello %s, your visit to %s on %s is confirmed. See you then!", name, p.Title, when)

	return &DeepLink{Destination: digits, Text: text}, nil
}

// BuildReceiptEmail composes the plain-text booking receipt. Schema fields are
// authoritative where they exist; the decoded sidecar supplements the concepts
// the schema has no columns for.
func BuildReceiptEmail(v *domain.Visit, p *domain.Property, requester *domain.User) (*ReceiptEmail, error) {
	to := v.VisitorEmail
	if to == "" && requester != nil {
		to = requester.Email
	}
	if to == "" {
		return nil, fmt.Errorf("no email on record: %w", domain.ErrNoDestination)
	}

	md := metadata.Decode(v.Message)
	ss := md.ShortStay

	checkIn := ss.CheckIn
	if checkIn == "" {
		checkIn = v.ScheduledDate
	}
	checkOut := ss.CheckOut
	if checkOut == "" && v.CheckOutDate != nil {
		checkOut = *v.CheckOutDate
	}
	if checkOut == "" {
		checkOut = checkIn
	}
	nights := ss.Nights
	if nights == 0 {
		nights = 1
	}
	guests := ss.Guests
	if guests == 0 {
		guests = 1
	}
	total := ss.Total
	if total == "" && p.Price > 0 {
		total = formatKES(p.Price)
	}
	if total == "" {
		total = "—"
	}
	ref := ss.PaymentReference
	if ref == "" {
		ref = "—"
	}

	subject := fmt.Sprintf("Your booking at %s is confirmed", p.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", displayName(md, v, requester))
	fmt.Fprintf(&b, "Thank you for booking with Nyumbani. Your stay is confirmed.\n\n")
	fmt.Fprintf(&b, "BOOKING DETAILS\n")
	fmt.Fprintf(&b, "Property: %s\n", p.Title)
	fmt.Fprintf(&b, "Location: %s\n", p.Location)
	fmt.Fprintf(&b, "Check-in: %s\n", checkIn)
	fmt.Fprintf(&b, "Check-out: %s\n", checkOut)
	fmt.Fprintf(&b, "Nights: %d\n", nights)
	fmt.Fprintf(&b, "Guests: %d\n\n", guests)
	fmt.Fprintf(&b, "PAYMENT\n")
	fmt.Fprintf(&b, "Amount paid: %s\n", total)
	fmt.Fprintf(&b, "Payment reference: %s\n\n", ref)
	fmt.Fprintf(&b, "CHECK-OUT INSTRUCTIONS\n")
	fmt.Fprintf(&b, "Check-out is at 10:00 AM on %s. Please leave the keys with the caretaker.\n\n", checkOut)
	fmt.Fprintf(&b, "We look forward to hosting you.\nThe Nyumbani Team\n")

	return &ReceiptEmail{To: to, Subject: subject, Body: b.String()}, nil
}

// displayName picks who the notification addresses: the manually-entered
// client if present, else the requester's account name, else the visitor
// contact captured at creation.
func displayName(md metadata.Metadata, v *domain.Visit, requester *domain.User) string {
	if md.Client.Name != "" {
		return md.Client.Name
	}
	if requester != nil && requester.Name != "" {
		return requester.Name
	}
	if v.VisitorName != "" {
		return v.VisitorName
	}
	return "there"
}

func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("2 Jan 2006")
}

// formatKES renders an amount as comma-grouped Kenyan shillings.
func formatKES(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	if amount < 0 {
		return "KES " + s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return "KES " + b.String()
}
