package complete

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/queryforce/soqlkit/pkg/metadata"
)

// ErrSuperseded reports that a newer completion request arrived while this
// one was still resolving metadata. Callers should drop the result and wait
// for the newer request to finish.
var ErrSuperseded = errors.New("completion request superseded by a newer one")

// Session serializes completion requests from a single editor surface and
// enforces last-request-wins: results that belong to a stale keystroke are
// discarded instead of flickering into the UI out of order.
//
// A Session is safe for concurrent use. Each Complete call takes the next
// generation number; any call that is no longer the newest when its
// suggestions are ready returns ErrSuperseded.
type Session struct {
	provider metadata.Provider
	logger   *slog.Logger
	gen      atomic.Uint64
}

// NewSession wraps a provider for use by a single completion surface.
// A nil logger disables logging.
func NewSession(provider metadata.Provider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{provider: provider, logger: logger}
}

// Complete resolves suggestions for req, unless a newer request arrives
// first, in which case it returns ErrSuperseded. Cancelling ctx aborts the
// underlying metadata lookups.
func (s *Session) Complete(ctx context.Context, req Request) ([]Suggestion, error) {
	gen := s.gen.Add(1)
	s.logger.Debug("completion request", "generation", gen, "offset", req.Offset)

	if cur := s.gen.Load(); cur != gen {
		s.logger.Debug("completion superseded before start", "generation", gen, "newest", cur)
		return nil, ErrSuperseded
	}

	items, err := Suggest(ctx, s.provider, req)
	if err != nil {
		return nil, err
	}

	// Check again after the metadata round trips: a keystroke may have
	// landed while lookups were in flight.
	if cur := s.gen.Load(); cur != gen {
		s.logger.Debug("completion superseded", "generation", gen, "newest", cur)
		return nil, ErrSuperseded
	}

	s.logger.Debug("completion resolved", "generation", gen, "suggestions", len(items))
	return items, nil
}

// Generation reports the number of requests issued so far. Useful in tests
// and for diagnostics.
func (s *Session) Generation() uint64 {
	return s.gen.Load()
}
