package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garagehq/ustreamer-mpp/internal/pixfmt"
)

type fakeEncoder struct {
	name   string
	calls  atomic.Int64
	closed atomic.Bool
	fail   bool
}

func (f *fakeEncoder) Compress(src *pixfmt.Frame) (*pixfmt.Frame, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("fake: compress failed")
	}
	return &pixfmt.Frame{Bytes: []byte{0xFF, 0xD8, 0xFF, 0xD9}, Width: src.Width, Height: src.Height, Format: pixfmt.JPEG, UsedBytes: 4}, nil
}

func (f *fakeEncoder) Name() string { return f.name }

func (f *fakeEncoder) Close() error {
	f.closed.Store(true)
	return nil
}

func TestPoolRoundRobinsAcrossWorkers(t *testing.T) {
	e1 := &fakeEncoder{name: "w0"}
	e2 := &fakeEncoder{name: "w1"}
	out := make(chan *pixfmt.Frame, 16)
	p := New([]Encoder{e1, e2}, out, nil)

	// Each worker's mailbox holds one frame and Submit drops on a full
	// mailbox, so wait for every frame to come out before submitting the next.
	deadline := time.After(2 * time.Second)
	for i := 0; i < 10; i++ {
		if err := p.Submit(&pixfmt.Frame{Width: 64, Height: 64}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		select {
		case <-out:
		case <-deadline:
			t.Fatal("timed out waiting for encoded frames")
		}
	}

	if e1.calls.Load() == 0 || e2.calls.Load() == 0 {
		t.Fatalf("expected both workers to receive frames, got %d and %d", e1.calls.Load(), e2.calls.Load())
	}

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !e1.closed.Load() || !e2.closed.Load() {
		t.Fatal("expected both encoders closed on Stop")
	}
}

func TestPoolSubmitAfterStopIsCancelled(t *testing.T) {
	e := &fakeEncoder{name: "w0"}
	out := make(chan *pixfmt.Frame, 4)
	p := New([]Encoder{e}, out, nil)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := p.Submit(&pixfmt.Frame{}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled after Stop, got %v", err)
	}
}

func TestPoolCompressFailureDoesNotBlockOtherFrames(t *testing.T) {
	e := &fakeEncoder{name: "w0", fail: true}
	out := make(chan *pixfmt.Frame, 4)
	p := New([]Encoder{e}, out, nil)

	if err := p.Submit(&pixfmt.Frame{Width: 1, Height: 1}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	stats := p.Stats()
	if len(stats) != 1 || stats[0].FramesErrored == 0 {
		t.Fatalf("expected an errored frame to be counted, got %+v", stats)
	}
	_ = p.Stop(context.Background())
}
