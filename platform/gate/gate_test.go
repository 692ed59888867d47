package gate_test

import (
	"context"
	"errors"
	"testing"

	"itam_platform/platform/gate"

	"github.com/stretchr/testify/assert"
)

type stubVerifier struct {
	verified bool
	err      error

	secrets []string

	started chan struct{}
	release chan struct{}
}

func (v *stubVerifier) Verify(ctx context.Context, secret string) (bool, error) {
	v.secrets = append(v.secrets, secret)
	if v.started != nil {
		v.started <- struct{}{}
		<-v.release
	}
	return v.verified, v.err
}

func TestSubmitRunsContinuationOnce(t *testing.T) {
	verifier := &stubVerifier{verified: true}
	g := gate.New(verifier)

	runs := 0
	g.Trigger(gate.Action{Kind: "delete", Run: func() { runs++ }})
	assert.Equal(t, gate.AwaitingInput, g.State())

	err := g.Submit(context.Background(), "secret")
	assert.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Equal(t, gate.Idle, g.State())

	_, pending := g.Pending()
	assert.False(t, pending)

	err = g.Submit(context.Background(), "secret")
	assert.ErrorIs(t, err, gate.ErrNoPendingAction)
	assert.Equal(t, 1, runs)
}

func TestSubmitWithoutTrigger(t *testing.T) {
	g := gate.New(&stubVerifier{verified: true})

	err := g.Submit(context.Background(), "secret")
	assert.ErrorIs(t, err, gate.ErrNoPendingAction)
	assert.Equal(t, gate.Idle, g.State())
}

func TestInvalidCredentialKeepsActionPending(t *testing.T) {
	verifier := &stubVerifier{verified: false}
	g := gate.New(verifier)

	runs := 0
	g.Trigger(gate.Action{Kind: "delete", Run: func() { runs++ }})

	err := g.Submit(context.Background(), "wrong")
	assert.ErrorIs(t, err, gate.ErrInvalidSecondaryCredential)
	assert.Equal(t, 0, runs)
	assert.Equal(t, gate.AwaitingInput, g.State())

	verifier.verified = true
	err = g.Submit(context.Background(), "right")
	assert.NoError(t, err)
	assert.Equal(t, 1, runs)
	assert.Equal(t, []string{"wrong", "right"}, verifier.secrets)
}

func TestTransportErrorKeepsActionPending(t *testing.T) {
	verifier := &stubVerifier{err: errors.New("connection refused")}
	g := gate.New(verifier)

	runs := 0
	g.Trigger(gate.Action{Kind: "delete", Run: func() { runs++ }})

	err := g.Submit(context.Background(), "secret")
	assert.ErrorIs(t, err, gate.ErrVerification)
	assert.NotErrorIs(t, err, gate.ErrInvalidSecondaryCredential)
	assert.Equal(t, 0, runs)
	assert.Equal(t, gate.AwaitingInput, g.State())

	verifier.err = nil
	verifier.verified = true
	assert.NoError(t, g.Submit(context.Background(), "secret"))
	assert.Equal(t, 1, runs)
}

func TestEmptySecretIsForwarded(t *testing.T) {
	verifier := &stubVerifier{verified: false}
	g := gate.New(verifier)

	g.Trigger(gate.Action{Kind: "delete", Run: func() {}})

	err := g.Submit(context.Background(), "")
	assert.ErrorIs(t, err, gate.ErrInvalidSecondaryCredential)
	assert.Equal(t, []string{""}, verifier.secrets)
}

func TestTriggerReplacesPendingAction(t *testing.T) {
	verifier := &stubVerifier{verified: true}
	g := gate.New(verifier)

	firstRuns, secondRuns := 0, 0
	g.Trigger(gate.Action{Kind: "delete", Label: "first", Run: func() { firstRuns++ }})
	g.Trigger(gate.Action{Kind: "purge", Label: "second", Run: func() { secondRuns++ }})

	action, pending := g.Pending()
	assert.True(t, pending)
	assert.Equal(t, "second", action.Label)

	assert.NoError(t, g.Submit(context.Background(), "secret"))
	assert.Equal(t, 0, firstRuns)
	assert.Equal(t, 1, secondRuns)
}

func TestCancelClearsPendingAction(t *testing.T) {
	g := gate.New(&stubVerifier{verified: true})

	runs := 0
	g.Trigger(gate.Action{Kind: "delete", Run: func() { runs++ }})
	g.Cancel()

	assert.Equal(t, gate.Idle, g.State())
	_, pending := g.Pending()
	assert.False(t, pending)

	err := g.Submit(context.Background(), "secret")
	assert.ErrorIs(t, err, gate.ErrNoPendingAction)
	assert.Equal(t, 0, runs)
}

func TestCancelDuringVerificationDiscardsResult(t *testing.T) {
	verifier := &stubVerifier{
		verified: true,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	g := gate.New(verifier)

	runs := 0
	g.Trigger(gate.Action{Kind: "delete", Run: func() { runs++ }})

	done := make(chan error, 1)
	go func() {
		done <- g.Submit(context.Background(), "secret")
	}()

	<-verifier.started
	assert.Equal(t, gate.Verifying, g.State())

	g.Cancel()
	verifier.release <- struct{}{}

	err := <-done
	assert.ErrorIs(t, err, gate.ErrSuperseded)
	assert.Equal(t, 0, runs)
	assert.Equal(t, gate.Idle, g.State())
}

func TestRetriggerDuringVerificationDiscardsResult(t *testing.T) {
	verifier := &stubVerifier{
		verified: true,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	g := gate.New(verifier)

	firstRuns, secondRuns := 0, 0
	g.Trigger(gate.Action{Kind: "delete", Label: "first", Run: func() { firstRuns++ }})

	done := make(chan error, 1)
	go func() {
		done <- g.Submit(context.Background(), "secret")
	}()

	<-verifier.started
	g.Trigger(gate.Action{Kind: "delete", Label: "second", Run: func() { secondRuns++ }})
	verifier.release <- struct{}{}

	err := <-done
	assert.ErrorIs(t, err, gate.ErrSuperseded)
	assert.Equal(t, 0, firstRuns)
	assert.Equal(t, 0, secondRuns)

	// The replacement action is still pending and confirmable.
	verifier.started = nil
	assert.Equal(t, gate.AwaitingInput, g.State())
	assert.NoError(t, g.Submit(context.Background(), "secret"))
	assert.Equal(t, 1, secondRuns)
}

func TestSubmitWhileVerifyingIsIgnored(t *testing.T) {
	verifier := &stubVerifier{
		verified: true,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	g := gate.New(verifier)

	runs := 0
	g.Trigger(gate.Action{Kind: "delete", Run: func() { runs++ }})

	done := make(chan error, 1)
	go func() {
		done <- g.Submit(context.Background(), "secret")
	}()

	<-verifier.started
	err := g.Submit(context.Background(), "another")
	assert.ErrorIs(t, err, gate.ErrVerifyInFlight)
	assert.Len(t, verifier.secrets, 1)

	verifier.release <- struct{}{}
	assert.NoError(t, <-done)
	assert.Equal(t, 1, runs)
}
