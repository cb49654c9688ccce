package complete

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/queryforce/soqlkit/pkg/metadata"
)

// gatedProvider blocks the first Fields call until released so a test can
// interleave a second request deterministically.
type gatedProvider struct {
	metadata.Provider
	started chan struct{}
	release chan struct{}
	gated   atomic.Bool
}

func (p *gatedProvider) Fields(ctx context.Context, sobject string) ([]*metadata.FieldDescriptor, error) {
	if p.gated.CompareAndSwap(false, true) {
		close(p.started)
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.Provider.Fields(ctx, sobject)
}

func TestSessionLastRequestWins(t *testing.T) {
	gate := &gatedProvider{
		Provider: testCatalog(),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	sess := NewSession(gate, nil)

	req := Request{Text: "SELECT Na FROM Account", Offset: 9}

	type outcome struct {
		items []Suggestion
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		items, err := sess.Complete(context.Background(), req)
		done <- outcome{items, err}
	}()

	// Wait for the first request to block on metadata, then land a second
	// keystroke.
	<-gate.started
	items, err := sess.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Second Complete: %v", err)
	}
	if !hasLabel(items, "Name") {
		t.Errorf("Second Complete missing %q: %+v", "Name", items)
	}

	close(gate.release)
	first := <-done
	if !errors.Is(first.err, ErrSuperseded) {
		t.Errorf("First Complete error = %v, want ErrSuperseded", first.err)
	}
	if first.items != nil {
		t.Errorf("Superseded request leaked %d suggestions", len(first.items))
	}

	if got := sess.Generation(); got != 2 {
		t.Errorf("Generation = %d, want 2", got)
	}
}

func TestSessionSequentialRequests(t *testing.T) {
	sess := NewSession(testCatalog(), nil)

	for i := 0; i < 3; i++ {
		items, err := sess.Complete(context.Background(), Request{Text: "SELECT Na FROM Account", Offset: 9})
		if err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
		if !hasLabel(items, "Name") {
			t.Errorf("Complete %d missing %q", i, "Name")
		}
	}
	if got := sess.Generation(); got != 3 {
		t.Errorf("Generation = %d, want 3", got)
	}
}

func TestSessionNilLogger(t *testing.T) {
	sess := NewSession(testCatalog(), nil)
	if _, err := sess.Complete(context.Background(), Request{Text: "SELECT Id FROM Account", Offset: 7}); err != nil {
		t.Fatalf("Complete with nil logger: %v", err)
	}
}
