package core

import "github.com/google/uuid"

// Client is a live connection as seen by the core layer.
type Client struct {
	ID       UserID
	Session  string
	Commands chan Command
	Events   chan *Event

	gone chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id UserID, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		ID:       id,
		Session:  uuid.NewString(),
		Commands: make(chan Command, buffer),
		Events:   make(chan *Event, buffer),
		gone:     make(chan struct{}),
	}
}
