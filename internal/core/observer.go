package core

// Recorder abstracts the audit journal for the Hub. Implementations must not
// block: Record is called from the hub goroutine.
type Recorder interface {
	// Record notes a broadcast produced for the connection identified by connKey.
	Record(connKey string, b *Broadcast)
}

// Observer receives hub activity for metrics.
type Observer interface {
	// BroadcastProduced is called once per model operation.
	BroadcastProduced(b *Broadcast)

	// EventDropped is called when a session queue is full.
	EventDropped()

	// StateChanged reports entity counts after every operation.
	StateChanged(stats Stats, sessions int)
}
