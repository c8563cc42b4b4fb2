// Package audit journals hub activity into a store without blocking the hub.
package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/palchat-server/internal/core"
	"github.com/vovakirdan/palchat-server/internal/store"
)

const (
	queueSize     = 1024
	batchSize     = 64
	flushInterval = time.Second
	finalFlush    = 5 * time.Second
)

var _ core.Recorder = (*Recorder)(nil)

// Recorder buffers audit entries and writes them in batches.
type Recorder struct {
	store   store.AuditStore
	queue   chan *store.AuditEntry
	log     *zerolog.Logger
	now     func() time.Time
	dropped atomic.Int64
}

// NewRecorder creates a recorder writing to st. Call Run to start writing.
func NewRecorder(st store.AuditStore, logger *zerolog.Logger) *Recorder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Recorder{
		store: st,
		queue: make(chan *store.AuditEntry, queueSize),
		log:   logger,
		now:   time.Now,
	}
}

// Record queues an entry for b. When the queue is full the entry is dropped.
func (r *Recorder) Record(connKey string, b *core.Broadcast) {
	select {
	case r.queue <- EntryFromBroadcast(connKey, b, r.now()):
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			r.log.Warn().Int64("dropped", n).Msg("audit queue full, entry dropped")
		}
	}
}

// Dropped returns how many entries were lost to a full queue.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Run writes queued entries until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*store.AuditEntry, 0, batchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := r.store.SaveEntries(ctx, batch); err != nil {
			r.log.Error().Err(err).Int("entries", len(batch)).Msg("failed to write audit entries")
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-r.queue:
			batch = append(batch, e)
			if len(batch) >= batchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), finalFlush)
			defer cancel()
			for {
				select {
				case e := <-r.queue:
					batch = append(batch, e)
				default:
					flush(flushCtx)
					return
				}
			}
		}
	}
}

// EntryFromBroadcast maps a broadcast to an audit entry. Message bodies are
// left out.
func EntryFromBroadcast(connKey string, b *core.Broadcast, at time.Time) *store.AuditEntry {
	e := &store.AuditEntry{
		ID:         uuid.NewString(),
		ConnKey:    connKey,
		Event:      b.Kind.String(),
		Actor:      b.Sender,
		Channel:    b.Channel,
		Code:       string(b.Code()),
		Recipients: len(b.Recipients),
		CreatedAt:  at,
	}
	if b.Command.Kind != 0 {
		e.Command = b.Command.Kind.String()
	}
	switch b.Command.Kind {
	case core.CommandNickname:
		e.Target = b.Command.Nickname
	case core.CommandInvite, core.CommandKick:
		e.Target = b.Command.Target
	}
	return e
}
