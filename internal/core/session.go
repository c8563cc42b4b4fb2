package core

// Session is one live connection as seen by the hub. The transport reads
// Events until the channel is closed.
type Session struct {
	ID     int64
	Key    string
	Events chan *Broadcast
}

// NewSession constructs a session with a buffered event queue.
func NewSession(id int64, key string, buffer int) *Session {
	if key == "" {
		key = "session"
	}
	if buffer <= 0 {
		buffer = defaultSessionBuffer
	}
	return &Session{
		ID:     id,
		Key:    key,
		Events: make(chan *Broadcast, buffer),
	}
}
