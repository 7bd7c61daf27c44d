// Package email sends outbound mail. The SMTP provider is the production
// path; NoOp stands in when no SMTP credentials are configured so dispatch
// can degrade instead of crash.
package email

import "context"

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
	Configured() bool
}

// NoOp reports itself unconfigured and drops every message. Callers are
// expected to check Configured before sending.
type NoOp struct{}

func (NoOp) Send(ctx context.Context, msg Message) error { return nil }
func (NoOp) Configured() bool                            { return false }
