// Package pool provides the worker-pool glue from spec §4.7: N parallel
// workers, each pinned to its own Encoder, round-robin dispatch, and a
// drop-on-backpressure policy grounded on the teacher's
// modules/framebus.Bus ("drop frames, never queue; latency > completeness").
package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
)

// ErrCancelled is returned by Submit after Stop has been called.
var ErrCancelled = errors.New("pool: cancelled")

// Encoder is the interface a worker drives. *mpp.Adapter satisfies it; a
// software fallback encoder can too.
type Encoder interface {
	Compress(src *pixfmt.Frame) (*pixfmt.Frame, error)
	Name() string
	Close() error
}

// Pool dispatches capture frames to N workers, each owning one Encoder. No
// state is shared between workers except whatever the Encoders themselves
// read from shared singletons (overlay/blocking stores, the TTF mutex, the
// raw-frame cache) — the pool itself holds no mutable state but the
// round-robin counter and per-worker mailboxes.
type Pool struct {
	workers []*worker
	next    atomic.Uint64

	out chan *pixfmt.Frame

	closed atomic.Bool
	wg     sync.WaitGroup
}

type worker struct {
	id      int
	encoder Encoder
	in      chan *pixfmt.Frame
	logger  *slog.Logger

	framesOK   atomic.Uint64
	framesDrop atomic.Uint64
	framesErr  atomic.Uint64
}

// New builds a Pool with one worker per encoder. out receives every
// successfully encoded Frame; if out is unbuffered or its consumer is
// slow, completed frames are dropped rather than queued — the HTTP
// consumer is expected to take the latest completed frame, not a backlog.
func New(encoders []Encoder, out chan *pixfmt.Frame, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{out: out}
	for i, enc := range encoders {
		w := &worker{
			id:      i,
			encoder: enc,
			in:      make(chan *pixfmt.Frame, 1),
			logger:  logger.With("worker", i, "encoder", enc.Name()),
		}
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go p.run(w)
	}
	return p
}

func (p *Pool) run(w *worker) {
	defer p.wg.Done()
	for frame := range w.in {
		out, err := w.encoder.Compress(frame)
		if err != nil {
			w.framesErr.Add(1)
			w.logger.Warn("compress failed", "trace_id", frame.TraceID, "error", err)
			continue
		}
		w.framesOK.Add(1)
		select {
		case p.out <- out:
		default:
			w.framesDrop.Add(1)
		}
	}
}

// Submit dispatches frame to the next worker in round-robin order,
// matching spec §4.7's dispatch rule. If that worker's mailbox is full the
// frame is dropped (non-blocking), never queued. Returns ErrCancelled once
// Stop has been called. Frames arriving without a TraceID are stamped with
// a fresh one so every worker's logs can be correlated back to a single
// capture even across drops.
func (p *Pool) Submit(frame *pixfmt.Frame) error {
	if p.closed.Load() {
		return ErrCancelled
	}
	if len(p.workers) == 0 {
		return errors.New("pool: no workers")
	}
	if frame.TraceID == "" {
		frame.TraceID = uuid.NewString()
	}
	idx := p.next.Add(1) % uint64(len(p.workers))
	w := p.workers[idx]
	select {
	case w.in <- frame:
		return nil
	default:
		w.framesDrop.Add(1)
		return nil
	}
}

// WorkerStats is a point-in-time snapshot of one worker's counters.
type WorkerStats struct {
	ID             int
	Name           string
	FramesOK       uint64
	FramesDropped  uint64
	FramesErrored  uint64
}

// Stats returns a snapshot of every worker's counters.
func (p *Pool) Stats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = WorkerStats{
			ID:            w.id,
			Name:          w.encoder.Name(),
			FramesOK:      w.framesOK.Load(),
			FramesDropped: w.framesDrop.Load(),
			FramesErrored: w.framesErr.Load(),
		}
	}
	return stats
}

// Stop closes every worker's mailbox, waits for in-flight compress calls to
// finish (compress is non-cancellable once submitted, per spec §5), closes
// each Encoder, and marks the pool closed so further Submit calls fail
// fast. ctx is honoured only while waiting for workers to drain; it does
// not interrupt an in-flight Compress call.
func (p *Pool) Stop(ctx context.Context) error {
	if p.closed.Swap(true) {
		return nil
	}
	for _, w := range p.workers {
		close(w.in)
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	var firstErr error
	for _, w := range p.workers {
		if err := w.encoder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
