package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/nyumbani/visits-api/internal/domain"
)

func seasideVilla() *domain.Property {
	return &domain.Property{
		ID:       "prop-1",
		OwnerID:  "owner-1",
		Title:    "Seaside Villa",
		Location: "Diani Beach, Kwale",
		Price:    120000,
	}
}

func TestBuildDeepLink_ManualClient(t *testing.T) {
	v := &domain.Visit{
		ID:            "visit-1",
		PropertyID:    "prop-1",
		OwnerID:       "owner-1",
		Status:        domain.VisitConfirmed,
		ScheduledDate: "2024-03-10",
		ScheduledTime: "14:00",
		Message:       "Manual visit scheduled by developer.\nClient Name: Jane Doe\nClient Phone: 0712345678",
	}

	link, err := BuildDeepLink(v, seasideVilla(), nil)
	if err != nil {
		t.Fatalf("BuildDeepLink: %v", err)
	}

	if link.Destination != "254712345678" {
		t.Errorf("destination = %q, want %q", link.Destination, "254712345678")
	}
	for _, want := range []string{"Jane Doe", "Seaside Villa", "10 Mar 2024", "14:00"} {
		if !strings.Contains(link.Text, want) {
			t.Errorf("text %q does not mention %q", link.Text, want)
		}
	}
	if !strings.HasPrefix(link.URL(), "https://wa.me/254712345678?text=") {
		t.Errorf("unexpected url %q", link.URL())
	}
}

func TestBuildDeepLink_FallsBackToRequesterPhone(t *testing.T) {
	v := &domain.Visit{
		ScheduledDate: "2024-03-10",
		Message:       "Hi, I would like to view this apartment.",
	}
	requester := &domain.User{ID: "user-1", Name: "Brian Kip", Phone: "0722000111"}

	link, err := BuildDeepLink(v, seasideVilla(), requester)
	if err != nil {
		t.Fatalf("BuildDeepLink: %v", err)
	}
	if link.Destination != "254722000111" {
		t.Errorf("destination = %q, want %q", link.Destination, "254722000111")
	}
	if !strings.Contains(link.Text, "Brian Kip") {
		t.Errorf("text %q does not mention requester name", link.Text)
	}
}

func TestBuildDeepLink_NoDestination(t *testing.T) {
	tests := []struct {
		name      string
		visit     *domain.Visit
		requester *domain.User
	}{
		{"no phone anywhere", &domain.Visit{ScheduledDate: "2024-03-10"}, nil},
		{"requester without phone", &domain.Visit{ScheduledDate: "2024-03-10"}, &domain.User{Name: "X"}},
		{"digitless client phone", &domain.Visit{ScheduledDate: "2024-03-10", Message: "Client Phone: none"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDeepLink(tt.visit, seasideVilla(), tt.requester)
			if !errors.Is(err, domain.ErrNoDestination) {
				t.Fatalf("err = %v, want ErrNoDestination", err)
			}
		})
	}
}

func TestBuildReceiptEmail_ShortStayMetadata(t *testing.T) {
	checkOutCol := "2024-06-09"
	v := &domain.Visit{
		ScheduledDate: "2024-06-01",
		CheckOutDate:  &checkOutCol,
		VisitorName:   "Amina Otieno",
		VisitorEmail:  "amina@example.com",
		Message: "Short stay booking.\nCheck-in: 2024-06-02\nCheck-out: 2024-06-05\n" +
			"Nights: 3\nGuests: 2\nTotal: KES 36,000\nPayment reference: MPESA-QX12AB34",
	}

	email, err := BuildReceiptEmail(v, seasideVilla(), nil)
	if err != nil {
		t.Fatalf("BuildReceiptEmail: %v", err)
	}

	if email.To != "amina@example.com" {
		t.Errorf("to = %q", email.To)
	}
	if email.Subject != "Your booking at Seaside Villa is confirmed" {
		t.Errorf("subject = %q", email.Subject)
	}

	// Decoded sidecar wins over the schema column for check-out.
	for _, want := range []string{
		"Check-in: 2024-06-02",
		"Check-out: 2024-06-05",
		"Nights: 3",
		"Guests: 2",
		"Amount paid: KES 36,000",
		"Payment reference: MPESA-QX12AB34",
		"Check-out is at 10:00 AM on 2024-06-05.",
	} {
		if !strings.Contains(email.Body, want) {
			t.Errorf("body missing %q:\n%s", want, email.Body)
		}
	}
}

func TestBuildReceiptEmail_FallbacksWithoutMetadata(t *testing.T) {
	v := &domain.Visit{
		ScheduledDate: "2024-06-01",
		VisitorEmail:  "guest@example.com",
		Message:       "Just a plain viewing request, no sidecar.",
	}

	email, err := BuildReceiptEmail(v, seasideVilla(), nil)
	if err != nil {
		t.Fatalf("BuildReceiptEmail: %v", err)
	}

	for _, want := range []string{
		"Check-in: 2024-06-01",
		"Check-out: 2024-06-01", // falls all the way back to check-in
		"Nights: 1",
		"Guests: 1",
		"Amount paid: KES 120,000", // property price fallback
		"Payment reference: —",
	} {
		if !strings.Contains(email.Body, want) {
			t.Errorf("body missing %q:\n%s", want, email.Body)
		}
	}
}

func TestBuildReceiptEmail_CheckOutColumnFallback(t *testing.T) {
	checkOutCol := "2024-06-09"
	v := &domain.Visit{
		ScheduledDate: "2024-06-01",
		CheckOutDate:  &checkOutCol,
		VisitorEmail:  "guest@example.com",
	}

	email, err := BuildReceiptEmail(v, seasideVilla(), nil)
	if err != nil {
		t.Fatalf("BuildReceiptEmail: %v", err)
	}
	if !strings.Contains(email.Body, "Check-out: 2024-06-09") {
		t.Errorf("body missing column check-out:\n%s", email.Body)
	}
}

func TestBuildReceiptEmail_DashesWhenNoPrice(t *testing.T) {
	p := seasideVilla()
	p.Price = 0
	v := &domain.Visit{ScheduledDate: "2024-06-01", VisitorEmail: "guest@example.com"}

	email, err := BuildReceiptEmail(v, p, nil)
	if err != nil {
		t.Fatalf("BuildReceiptEmail: %v", err)
	}
	if !strings.Contains(email.Body, "Amount paid: —") {
		t.Errorf("body missing dash amount:\n%s", email.Body)
	}
}

func TestBuildReceiptEmail_RecipientResolution(t *testing.T) {
	requester := &domain.User{Email: "account@example.com", Name: "Brian Kip"}

	t.Run("visitor email preferred", func(t *testing.T) {
		v := &domain.Visit{ScheduledDate: "2024-06-01", VisitorEmail: "walkin@example.com"}
		email, err := BuildReceiptEmail(v, seasideVilla(), requester)
		if err != nil {
			t.Fatal(err)
		}
		if email.To != "walkin@example.com" {
			t.Errorf("to = %q", email.To)
		}
	})

	t.Run("requester fallback", func(t *testing.T) {
		v := &domain.Visit{ScheduledDate: "2024-06-01"}
		email, err := BuildReceiptEmail(v, seasideVilla(), requester)
		if err != nil {
			t.Fatal(err)
		}
		if email.To != "account@example.com" {
			t.Errorf("to = %q", email.To)
		}
	})

	t.Run("no destination", func(t *testing.T) {
		v := &domain.Visit{ScheduledDate: "2024-06-01"}
		_, err := BuildReceiptEmail(v, seasideVilla(), nil)
		if !errors.Is(err, domain.ErrNoDestination) {
			t.Fatalf("err = %v, want ErrNoDestination", err)
		}
	})
}

func TestBuildReceiptEmail_SectionOrder(t *testing.T) {
	v := &domain.Visit{ScheduledDate: "2024-06-01", VisitorName: "Amina Otieno", VisitorEmail: "amina@example.com"}

	email, err := BuildReceiptEmail(v, seasideVilla(), nil)
	if err != nil {
		t.Fatal(err)
	}

	want := "Hello Amina Otieno,\n\n" +
		"Thank you for booking with Nyumbani. Your stay is confirmed.\n\n" +
		"BOOKING DETAILS\n" +
		"Property: Seaside Villa\n" +
		"Location: Diani Beach, Kwale\n" +
		"Check-in: 2024-06-01\n" +
		"Check-out: 2024-06-01\n" +
		"Nights: 1\n" +
		"Guests: 1\n\n" +
		"PAYMENT\n" +
		"Amount paid: KES 120,000\n" +
		"Payment reference: —\n\n" +
		"CHECK-OUT INSTRUCTIONS\n" +
		"Check-out is at 10:00 AM on 2024-06-01. Please leave the keys with the caretaker.\n\n" +
		"We look forward to hosting you.\nThe Nyumbani Team\n"

	if email.Body != want {
		t.Fatalf("receipt body drifted:\n got:\n%s\nwant:\n%s", email.Body, want)
	}
}

func TestFormatKES(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "KES 0"},
		{950, "KES 950"},
		{1500, "KES 1,500"},
		{120000, "KES 120,000"},
		{1250000, "KES 1,250,000"},
	}
	for _, tt := range tests {
		if got := formatKES(tt.amount); got != tt.want {
			t.Errorf("formatKES(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
