package application

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

func TestVerifyFallsThroughOnUnavailability(t *testing.T) {
	t.Parallel()

	down := &fakeProvider{name: "main-1", err: errors.New("dial tcp: connection refused")}
	up := &fakeProvider{name: "main-2", tx: settledLedgerTx("rPayer")}
	v := NewLedgerVerifier(slog.Default(), []ports.LedgerProvider{down, up}, nil, time.Second)

	outcome := v.Verify(context.Background(), "ABC123", domain.ExpectedPayment{Destination: "rDest"})
	if !outcome.Confirmed || outcome.Testnet {
		t.Fatalf("expected mainnet confirmation via secondary provider, got %+v", outcome)
	}
	if down.calls != 1 || up.calls != 1 {
		t.Fatalf("expected both mainnet providers consulted once, got %d/%d", down.calls, up.calls)
	}
}

func TestVerifyNotFoundStopsTheChain(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "main-1", err: domain.ErrNotFound}
	secondary := &fakeProvider{name: "main-2", tx: settledLedgerTx("rPayer")}
	testnet := &fakeProvider{name: "test-1", err: domain.ErrNotFound}
	v := NewLedgerVerifier(slog.Default(),
		[]ports.LedgerProvider{primary, secondary},
		[]ports.LedgerProvider{testnet},
		time.Second)

	outcome := v.Verify(context.Background(), "ABC123", domain.ExpectedPayment{Destination: "rDest"})
	if outcome.Confirmed {
		t.Fatalf("confirmed absence must not be confirmed, got %+v", outcome)
	}
	if secondary.calls != 0 {
		t.Fatalf("a definitive absence must stop the chain, secondary consulted %d times", secondary.calls)
	}
	if testnet.calls != 1 {
		t.Fatalf("testnet chain must still run after mainnet absence, consulted %d times", testnet.calls)
	}
}

func TestVerifyMainnetBeforeTestnet(t *testing.T) {
	t.Parallel()

	mainnet := &fakeProvider{name: "main-1", tx: settledLedgerTx("rPayer")}
	testnet := &fakeProvider{name: "test-1", tx: settledLedgerTx("rPayer")}
	v := NewLedgerVerifier(slog.Default(),
		[]ports.LedgerProvider{mainnet}, []ports.LedgerProvider{testnet}, time.Second)

	outcome := v.Verify(context.Background(), "ABC123", domain.ExpectedPayment{Destination: "rDest"})
	if !outcome.Confirmed || outcome.Testnet {
		t.Fatalf("mainnet hit must win, got %+v", outcome)
	}
	if testnet.calls != 0 {
		t.Fatalf("testnet must not be consulted after a mainnet hit")
	}
}

func TestVerifyRejectsUnexpectedTransaction(t *testing.T) {
	t.Parallel()

	tx := settledLedgerTx("rPayer")
	tx.Destination = "rWrongDest"
	mainnet := &fakeProvider{name: "main-1", tx: tx}
	v := NewLedgerVerifier(slog.Default(), []ports.LedgerProvider{mainnet}, nil, time.Second)

	outcome := v.Verify(context.Background(), "ABC123", domain.ExpectedPayment{Destination: "rDest"})
	if outcome.Confirmed {
		t.Fatalf("destination mismatch must not confirm, got %+v", outcome)
	}
}

func TestVerifyEmptyHash(t *testing.T) {
	t.Parallel()

	mainnet := &fakeProvider{name: "main-1", tx: settledLedgerTx("rPayer")}
	v := NewLedgerVerifier(slog.Default(), []ports.LedgerProvider{mainnet}, nil, time.Second)

	if outcome := v.Verify(context.Background(), "", domain.ExpectedPayment{}); outcome.Confirmed {
		t.Fatalf("empty hash must short-circuit to unconfirmed")
	}
	if mainnet.calls != 0 {
		t.Fatalf("no provider may be consulted for an empty hash")
	}
}
