package audit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/chanserv/internal/core"
	"github.com/vovakirdan/chanserv/internal/store"
)

const (
	defaultQueueSize = 256
	drainTimeout     = 2 * time.Second
)

// Writer persists hub events into an AuditStore off the hub goroutine.
// Record never blocks; entries are dropped when the queue is full.
type Writer struct {
	store store.AuditStore
	log   *zerolog.Logger
	queue chan *store.Entry
	now   func() time.Time

	dropped atomic.Int64
}

// NewWriter creates a writer with a queue of size entries.
func NewWriter(st store.AuditStore, size int, logger *zerolog.Logger) *Writer {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Writer{
		store: st,
		log:   logger,
		queue: make(chan *store.Entry, size),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record implements core.AuditSink.
func (w *Writer) Record(ev *core.Event) {
	select {
	case w.queue <- EntryFromEvent(ev, w.now()):
	default:
		if n := w.dropped.Add(1); n == 1 || n%100 == 0 {
			w.log.Warn().Int64("dropped", n).Msg("audit queue full, dropping entries")
		}
	}
}

// Dropped returns how many entries were discarded because the queue was full.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Run writes queued entries until ctx is cancelled, then flushes what is left.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case e := <-w.queue:
			w.write(ctx, e)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case e := <-w.queue:
			w.write(ctx, e)
		default:
			return
		}
	}
}

func (w *Writer) write(ctx context.Context, e *store.Entry) {
	if err := w.store.RecordCommand(ctx, e); err != nil {
		w.log.Error().Err(err).Str("command", e.Command).Msg("failed to record audit entry")
	}
}

// EntryFromEvent flattens ev into an audit entry stamped at.
func EntryFromEvent(ev *core.Event, at time.Time) *store.Entry {
	cmd := ev.Command
	e := &store.Entry{
		Command:    cmd.Kind.String(),
		UserID:     int64(cmd.User),
		Actor:      cmd.Sender,
		Channel:    cmd.Channel,
		Target:     cmd.Nickname,
		Outcome:    store.OutcomeOK,
		Recipients: len(ev.Recipients),
		CreatedAt:  at,
	}
	if ev.Failed() {
		e.Outcome = ev.Error.Code
	}
	if ev.Kind == core.EventDisconnected || ev.Kind == core.EventConnected {
		e.Actor = ev.Nickname
	}
	return e
}
