package booking_test

import (
	"errors"
	"testing"

	"bookingrelay/internal/domain/booking"
)

// TestRequest_Validate tests the presence-only validation of booking requests.
func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     booking.Request
		wantErr bool
	}{
		{"name and number", booking.Request{Name: "Jane", Number: "5551234"}, false},
		{"all fields", booking.Request{Name: "Jane", Number: "5551234", Email: "j@x.nz", Dates: "2026-11-01 - 2026-11-05", Message: "hi"}, false},
		{"missing name", booking.Request{Number: "5551234"}, true},
		{"missing number", booking.Request{Name: "Jane"}, true},
		{"empty", booking.Request{}, true},
		{"whitespace is present", booking.Request{Name: " ", Number: " "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, booking.ErrValidation) {
					t.Errorf("error %v does not wrap ErrValidation", err)
				}
				if err.Error() != "name and number are required" {
					t.Errorf("message = %q", err.Error())
				}
			}
		})
	}
}

// TestRequest_Compose tests subject and field ordering of the notification.
func TestRequest_Compose(t *testing.T) {
	tests := []struct {
		name     string
		req      booking.Request
		wantText string
	}{
		{
			name:     "required only",
			req:      booking.Request{Name: "Jane", Number: "5551234"},
			wantText: "Name: Jane\nNumber: 5551234",
		},
		{
			name:     "all fields in fixed order",
			req:      booking.Request{Name: "Jane", Number: "5551234", Email: "jane@example.com", Dates: "2026-11-01 - 2026-11-05", Message: "Two adults"},
			wantText: "Name: Jane\nNumber: 5551234\nEmail: jane@example.com\nDates: 2026-11-01 - 2026-11-05\nMessage: Two adults",
		},
		{
			name:     "skips empty email keeps message",
			req:      booking.Request{Name: "Jane", Number: "1", Message: "late arrival"},
			wantText: "Name: Jane\nNumber: 1\nMessage: late arrival",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.req.Compose("from@example.com", "to@example.com")
			if msg.Subject != "New booking from "+tt.req.Name+"!" {
				t.Errorf("Subject = %q", msg.Subject)
			}
			if msg.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", msg.Text, tt.wantText)
			}
			if msg.From != "from@example.com" || msg.To != "to@example.com" {
				t.Errorf("From/To = %q/%q", msg.From, msg.To)
			}
		})
	}
}

// TestContactRequest verifies the passthrough variant.
func TestContactRequest(t *testing.T) {
	if err := (booking.ContactRequest{Subject: "Hello"}).Validate(); !errors.Is(err, booking.ErrValidation) {
		t.Errorf("missing message: got %v, want validation error", err)
	}
	if err := (booking.ContactRequest{Message: "Body"}).Validate(); err == nil {
		t.Error("missing subject: expected error")
	}

	c := booking.ContactRequest{Subject: "Gift voucher", Message: "Do you sell vouchers?"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	msg := c.Compose("a@x", "b@x")
	if msg.Subject != "Gift voucher" || msg.Text != "Do you sell vouchers?" {
		t.Errorf("Compose() = %+v", msg)
	}
}
