// Package gate guards destructive or sensitive actions behind re-entry of
// a secondary shared secret, independent of the caller's session token.
// The flow mirrors a confirmation modal: an action is triggered, the
// holder of the secret submits it, and only a positive verification runs
// the action's continuation.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type State string

const (
	Idle          State = "idle"
	AwaitingInput State = "awaiting_input"
	Verifying     State = "verifying"
)

// Verifier checks a submitted secret against the shared secondary
// credential. Implementations are expected to call out over the network,
// so Verify takes a context and may block.
type Verifier interface {
	Verify(ctx context.Context, secret string) (bool, error)
}

// Action is a single protected operation. Run is its continuation, fired
// at most once and only after the secret verifies.
type Action struct {
	Kind        string
	Label       string
	ConfirmText string
	Run         func()
}

var (
	// ErrNoPendingAction is returned by Submit when nothing was triggered.
	ErrNoPendingAction = errors.New("no pending action to confirm")

	// ErrVerifyInFlight is returned by Submit while a previous submission
	// is still being verified. The submission is ignored.
	ErrVerifyInFlight = errors.New("verification already in progress")

	// ErrInvalidSecondaryCredential indicates the backend rejected the
	// secret. The action stays pending so the caller may retry.
	ErrInvalidSecondaryCredential = errors.New("invalid secondary credential")

	// ErrVerification wraps transport failures during verification. The
	// action stays pending so the caller may retry.
	ErrVerification = errors.New("credential verification failed")

	// ErrSuperseded is returned when a verification completed after the
	// pending action was cancelled or replaced. The result is discarded.
	ErrSuperseded = errors.New("pending action cancelled or replaced")
)

// Gate holds at most one pending action. Triggering while another action
// is pending replaces it: there is no queue, last trigger wins.
type Gate struct {
	verifier Verifier

	mu         sync.Mutex
	state      State
	pending    *Action
	generation uint64
}

func New(verifier Verifier) *Gate {
	return &Gate{verifier: verifier, state: Idle}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Trigger stages an action and moves the gate to AwaitingInput. Any
// previously pending action is dropped without running, and any in-flight
// verification for it will be discarded when it lands.
func (g *Gate) Trigger(action Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = &action
	g.state = AwaitingInput
	g.generation++
}

// Cancel clears the pending action and returns the gate to Idle. It does
// not interrupt an in-flight verification call, but its eventual result
// is discarded and the continuation never fires.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	g.state = Idle
	g.generation++
}

// Submit verifies the secret and, on success, runs the pending action's
// continuation exactly once. The secret is forwarded as given, empty
// included, and is not retained after Submit returns. On
// ErrInvalidSecondaryCredential or ErrVerification the gate returns to
// AwaitingInput with the action still pending.
func (g *Gate) Submit(ctx context.Context, secret string) error {
	g.mu.Lock()
	if g.state == Verifying {
		g.mu.Unlock()
		return ErrVerifyInFlight
	}
	if g.pending == nil {
		g.mu.Unlock()
		return ErrNoPendingAction
	}
	generation := g.generation
	g.state = Verifying
	g.mu.Unlock()

	verified, err := g.verifier.Verify(ctx, secret)

	g.mu.Lock()
	if g.generation != generation {
		// Cancelled or re-triggered while the call was in flight. The
		// gate's state belongs to the newer interaction, leave it alone.
		g.mu.Unlock()
		return ErrSuperseded
	}

	if err != nil {
		g.state = AwaitingInput
		g.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	if !verified {
		g.state = AwaitingInput
		g.mu.Unlock()
		return ErrInvalidSecondaryCredential
	}

	action := g.pending
	g.pending = nil
	g.state = Idle
	g.generation++
	g.mu.Unlock()

	action.Run()
	return nil
}

// Pending reports the staged action's descriptive fields for display. The
// bool is false when nothing is pending.
func (g *Gate) Pending() (Action, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return Action{}, false
	}
	return *g.pending, true
}
