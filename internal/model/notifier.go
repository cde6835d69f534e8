package model

import "context"

// Notifier delivers templated messages to an address.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a templated notification. AccessCode and ActionURL are optional.
type Message struct {
	To          string
	Subject     string
	Title       string
	Body        string
	AccessCode  string
	ActionURL   string
	ActionLabel string
}
