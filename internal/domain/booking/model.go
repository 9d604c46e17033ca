package booking

import (
	"errors"
	"strings"
)

// ErrValidation is wrapped by every missing-field error so the HTTP edge can map it to 400.
var ErrValidation = errors.New("validation failed")

// Domain errors
var (
	ErrNameNumberRequired     = &FieldError{Message: "name and number are required"}
	ErrSubjectMessageRequired = &FieldError{Message: "subject and message are required"}
)

// FieldError reports a missing required field. Message is safe to show to the client.
type FieldError struct {
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *FieldError) Unwrap() error { return ErrValidation }

// NotificationMessage is the email an operator receives for one submission.
// It lives only for the duration of one send attempt.
type NotificationMessage struct {
	From    string
	To      string
	Subject string
	Text    string
}

// Form is a submission the relay can validate and turn into a notification.
// Implementations decide which fields are required and how the body is assembled.
type Form interface {
	Validate() error
	Compose(from, to string) NotificationMessage
	// Kind names the form in logs ("booking", "contact").
	Kind() string
}

// Request is a visitor's booking request as posted by the widget.
// Dates is the picker's serialized range and is never parsed server-side.
type Request struct {
	Name    string `json:"name"`
	Number  string `json:"number"`
	Email   string `json:"email,omitempty"`
	Dates   string `json:"dates,omitempty"`
	Message string `json:"message,omitempty"`
}

// Validate checks that name and number are present.
// Values are not trimmed: a single space counts as present.
// PRE: none
// POST: returns ErrNameNumberRequired if either field is empty
func (r Request) Validate() error {
	if r.Name == "" || r.Number == "" {
		return ErrNameNumberRequired
	}
	return nil
}

// Compose builds the operator notification. Optional fields are included only when non-empty,
// always in the order name, number, email, dates, message.
// PRE: r has been validated
// POST: returns a message with Subject "New booking from <name>!"
func (r Request) Compose(from, to string) NotificationMessage {
	lines := []string{
		"Name: " + r.Name,
		"Number: " + r.Number,
	}
	if r.Email != "" {
		lines = append(lines, "Email: "+r.Email)
	}
	if r.Dates != "" {
		lines = append(lines, "Dates: "+r.Dates)
	}
	if r.Message != "" {
		lines = append(lines, "Message: "+r.Message)
	}
	return NotificationMessage{
		From:    from,
		To:      to,
		Subject: "New booking from " + r.Name + "!",
		Text:    strings.Join(lines, "\n"),
	}
}

// Kind implements Form.
func (r Request) Kind() string { return "booking" }

// ContactRequest is the pre-composed variant: subject and message pass straight through.
type ContactRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks that subject and message are present.
func (c ContactRequest) Validate() error {
	if c.Subject == "" || c.Message == "" {
		return ErrSubjectMessageRequired
	}
	return nil
}

// Compose passes the subject and message through unchanged.
func (c ContactRequest) Compose(from, to string) NotificationMessage {
	return NotificationMessage{
		From:    from,
		To:      to,
		Subject: c.Subject,
		Text:    c.Message,
	}
}

// Kind implements Form.
func (c ContactRequest) Kind() string { return "contact" }

// ReplyAddress returns the visitor's email so the operator can answer directly.
func (r Request) ReplyAddress() string { return r.Email }
