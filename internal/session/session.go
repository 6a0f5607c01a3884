// Package session runs one client's view of a bill.
//
// A Session owns a snapshot and processes everything that mutates it on a
// single event loop: inbound change events from the stream and local toggle
// commands are applied one at a time, so the snapshot never sees concurrent
// mutation. External writes happen on their own goroutines and report back
// into the loop; they never suspend event reduction.
//
// Claim toggles are optimistic: the local claim set flips immediately, the
// write goes out asynchronously, and a failed write rolls the flip back. The
// confirmed state arrives through the stream, where the reducer's idempotence
// makes the echo of our own write a no-op.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitparty/internal/calculator"
	"github.com/mmynk/splitparty/internal/models"
	"github.com/mmynk/splitparty/internal/reconcile"
	"github.com/mmynk/splitparty/internal/stream"
)

// ClaimWriter performs the external claim write. Implemented by
// service.BillService; tests substitute fakes.
type ClaimWriter interface {
	SetClaim(ctx context.Context, billID string, participantID, itemID int64, selected bool) error
}

// WriteError reports a failed claim write after its optimistic update was
// rolled back. The user may retry manually; the session never retries.
type WriteError struct {
	ParticipantID int64
	ItemID        int64
	Err           error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("claim write for participant %d item %d failed: %v", e.ParticipantID, e.ItemID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type claimKey struct {
	participantID int64
	itemID        int64
}

// Session is one client's live view of a bill.
type Session struct {
	billID     string
	writer     ClaimWriter
	subscriber stream.Subscriber

	snap    *models.Snapshot
	reducer *reconcile.Reducer

	// inflight tracks claim writes by pair for the single-flight rule.
	// Only the event loop touches it.
	inflight map[claimKey]bool

	cmds chan func()
	errs chan error
	done chan struct{}

	// runCtx is the context Run was started with; writes inherit it.
	// Set once before the loop starts consuming cmds.
	runCtx context.Context
}

// New creates a session over an initial snapshot, typically loaded from
// storage. The session takes ownership of the snapshot; the caller must not
// touch it afterwards. Commands queued before Run starts are processed once
// it does.
func New(billID string, snap *models.Snapshot, writer ClaimWriter, subscriber stream.Subscriber) *Session {
	return &Session{
		billID:     billID,
		writer:     writer,
		subscriber: subscriber,
		snap:       snap,
		reducer:    reconcile.New(snap),
		inflight:   make(map[claimKey]bool),
		cmds:       make(chan func(), 64),
		errs:       make(chan error, 16),
		done:       make(chan struct{}),
	}
}

// Run subscribes to the bill's change stream and processes events and
// commands until the context is cancelled or the stream closes. The
// subscription is released on return.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)

	sub, err := s.subscriber.Subscribe(ctx, s.billID)
	if err != nil {
		return fmt.Errorf("subscribe to bill %s: %w", s.billID, err)
	}
	defer sub.Close()

	s.runCtx = ctx
	slog.Info("session started", "bill_id", s.billID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			s.reducer.Apply(ev)
		case fn := <-s.cmds:
			fn()
		}
	}
}

// do queues fn onto the event loop. Reports false when the session has
// stopped.
func (s *Session) do(fn func()) bool {
	select {
	case s.cmds <- fn:
		return true
	case <-s.done:
		return false
	}
}

// ToggleClaim flips the participant's claim on the item: the local set
// changes immediately and the corresponding external write is issued. While
// that write is in flight, further toggles on the same pair are dropped to
// keep a rapid double-click from oscillating; toggles on other pairs are
// unaffected. The call returns without waiting for the write; failures
// surface on Errors.
func (s *Session) ToggleClaim(participantID, itemID int64) {
	s.do(func() {
		key := claimKey{participantID, itemID}
		if s.inflight[key] {
			slog.Debug("toggle dropped, write already in flight",
				"participant_id", participantID,
				"item_id", itemID,
			)
			return
		}
		s.inflight[key] = true
		selected := s.snap.Claims.Toggle(participantID, itemID)
		go s.writeClaim(key, selected)
	})
}

// writeClaim performs the external write off-loop and reports the outcome
// back into the loop.
func (s *Session) writeClaim(key claimKey, selected bool) {
	err := s.writer.SetClaim(s.runCtx, s.billID, key.participantID, key.itemID, selected)
	s.do(func() {
		delete(s.inflight, key)
		if err == nil {
			// Nothing else to do: the resulting change event arrives via
			// the stream and reduces to a no-op.
			return
		}
		// Roll the optimistic toggle back to its pre-toggle value.
		if selected {
			s.snap.Claims.Unclaim(key.participantID, key.itemID)
		} else {
			s.snap.Claims.Claim(key.participantID, key.itemID)
		}
		werr := &WriteError{ParticipantID: key.participantID, ItemID: key.itemID, Err: err}
		slog.Warn("claim write failed, rolled back", "error", werr)
		select {
		case s.errs <- werr:
		default:
			slog.Warn("dropping write failure, error channel full")
		}
	})
}

// Errors delivers write failures. The channel is buffered; unread failures
// beyond the buffer are logged and dropped.
func (s *Session) Errors() <-chan error {
	return s.errs
}

// Shares computes every participant's current share from the live snapshot.
// Returns nil once the session has stopped.
func (s *Session) Shares() map[int64]*calculator.PersonShare {
	res := make(chan map[int64]*calculator.PersonShare, 1)
	ok := s.do(func() {
		res <- calculator.Split(s.snap.Items, s.snap.Participants, s.snap.Claims, s.snap.Bill.Tax, s.snap.Bill.Tip)
	})
	if !ok {
		return nil
	}
	select {
	case shares := <-res:
		return shares
	case <-s.done:
		return nil
	}
}

// Snapshot returns a copy of the current snapshot. Returns nil once the
// session has stopped.
func (s *Session) Snapshot() *models.Snapshot {
	res := make(chan *models.Snapshot, 1)
	ok := s.do(func() {
		res <- s.snap.Clone()
	})
	if !ok {
		return nil
	}
	select {
	case snap := <-res:
		return snap
	case <-s.done:
		return nil
	}
}
