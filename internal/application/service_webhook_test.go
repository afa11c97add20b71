package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

func (f *fixture) putPending(t *testing.T, payloadID, frontendID string) {
	t.Helper()
	err := f.pending.Put(context.Background(), domain.PendingRequest{
		ID:            uuid.New(),
		ApplicationID: testAppID,
		Origin:        testOrigin,
		Referrer:      testOrigin + "/checkout",
		FrontendID:    frontendID,
		PayloadID:     payloadID,
		CreatedAt:     f.now.Add(-time.Minute),
		ExpiresAt:     f.now.Add(14 * time.Minute),
	})
	if err != nil {
		t.Fatalf("put pending: %v", err)
	}
}

func TestHandleNotificationWritesAllIdentitySpaces(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	ctx := context.Background()

	f.putPending(t, "payload-pay", "fe-1")
	f.platform.details["payload-pay"] = settledPayment("ABC123", "rPayer")
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-pay"}

	err := f.service.HandleNotification(ctx, Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-pay",
		SignedToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	for _, tc := range []struct {
		space    domain.IdentitySpace
		identity string
	}{
		{domain.SpaceFrontend, "fe-1"},
		{domain.SpaceWalletUser, "wallet-user-1"},
		{domain.SpaceAccount, "rPayer"},
	} {
		ids := f.service.QueryOwnership(ctx, ports.OwnershipQuery{
			Space:         tc.space,
			Origin:        testOrigin,
			ApplicationID: testAppID,
			IdentityValue: tc.identity,
			PayloadType:   domain.PayloadTypePayment,
		})
		if len(ids) != 1 || ids[0] != "payload-pay" {
			t.Fatalf("space %s missing ownership record, got %v", tc.space, ids)
		}
	}

	if user, err := f.accounts.Lookup(ctx, testAppID, "rPayer"); err != nil || user != "wallet-user-1" {
		t.Fatalf("expected account mapping upsert, got %q err=%v", user, err)
	}

	if pending, _ := f.pending.Get(ctx, testAppID, "payload-pay"); pending != nil {
		t.Fatalf("resolved pending record must be deleted")
	}
}

func TestHandleNotificationNormalizesPlatformTypeCasing(t *testing.T) {
	t.Parallel()

	mainnet := &fakeProvider{name: "main-1", tx: settledLedgerTx("rPayer")}
	f := newFixture([]ports.LedgerProvider{mainnet}, nil)
	ctx := context.Background()

	f.putPending(t, "payload-pay", "fe-1")
	details := settledPayment("ABC123", "rPayer")
	details.Payload.TxType = "Payment"
	f.platform.details["payload-pay"] = details
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-pay"}

	err := f.service.HandleNotification(ctx, Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-pay",
		SignedToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	res := f.service.CheckPayment(ctx, CheckRequest{
		Origin: testOrigin, ApplicationID: testAppID, FrontendID: "fe-1", PayloadID: "payload-pay",
	})
	if !res.Success {
		t.Fatalf("ownership recorded from a capitalized platform type must satisfy the check, got %+v", res)
	}
}

func TestHandleNotificationRejectsBadToken(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	f.putPending(t, "payload-pay", "fe-1")

	err := f.service.HandleNotification(context.Background(), Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-pay",
		SignedToken:   "forged",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("forged token must be rejected, got %v", err)
	}
	if pending, _ := f.pending.Get(context.Background(), testAppID, "payload-pay"); pending == nil {
		t.Fatalf("pending record must survive a rejected notification")
	}
}

func TestHandleNotificationTokenPayloadMismatch(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	f.putPending(t, "payload-pay", "fe-1")
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-other"}

	err := f.service.HandleNotification(context.Background(), Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-pay",
		SignedToken:   "tok-1",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("token bound to another payload must be rejected, got %v", err)
	}
}

func TestHandleNotificationUnknownPendingIsNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-unknown"}

	err := f.service.HandleNotification(context.Background(), Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-unknown",
		SignedToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("duplicate or foreign notification must be a no-op, got %v", err)
	}
	if len(f.ownership.entries) != 0 {
		t.Fatalf("no ownership may be written without a pending record")
	}
}

func TestSignInToValidateRoutesIntoPaymentBucket(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	ctx := context.Background()

	err := f.pending.Put(ctx, domain.PendingRequest{
		ID:               uuid.New(),
		ApplicationID:    testAppID,
		Origin:           testOrigin,
		FrontendID:       "fe-1",
		PayloadID:        "payload-siv",
		SignInToValidate: true,
		CreatedAt:        f.now.Add(-time.Minute),
		ExpiresAt:        f.now.Add(14 * time.Minute),
	})
	if err != nil {
		t.Fatalf("put pending: %v", err)
	}

	details := settledPayment("", "rSigner")
	details.Payload.TxType = domain.PayloadTypeSignIn
	details.Payload.RequestedAmount = nil
	details.Payload.RequestedDestination = ""
	f.platform.details["payload-siv"] = details
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-siv"}

	err = f.service.HandleNotification(ctx, Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-siv",
		SignedToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	// No ledger providers configured: the signed sign-in alone must carry
	// the timed payment check.
	res := f.service.CheckTimedPayment(ctx, CheckRequest{
		Origin: testOrigin, ApplicationID: testAppID, FrontendID: "fe-1", PayloadID: "payload-siv",
	})
	if !res.Success || res.Account != "rSigner" {
		t.Fatalf("validating sign-in must satisfy the payment check, got %+v", res)
	}
}

func TestPlainSignInStaysOutOfPaymentBucket(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	ctx := context.Background()

	f.putPending(t, "payload-si", "fe-1")
	details := settledPayment("", "rSigner")
	details.Payload.TxType = domain.PayloadTypeSignIn
	f.platform.details["payload-si"] = details
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-si"}

	err := f.service.HandleNotification(ctx, Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-si",
		SignedToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	res := f.service.CheckPayment(ctx, CheckRequest{
		Origin: testOrigin, ApplicationID: testAppID, FrontendID: "fe-1", PayloadID: "payload-si",
	})
	if res.Success {
		t.Fatalf("an ordinary sign-in must not satisfy a payment check, got %+v", res)
	}
}

func TestHandleNotificationFallsBackToNotificationUserToken(t *testing.T) {
	t.Parallel()

	f := newFixture(nil, nil)
	ctx := context.Background()

	f.putPending(t, "payload-si", "fe-1")
	details := settledPayment("", "rSigner")
	details.Payload.TxType = domain.PayloadTypeSignIn
	details.Application.IssuedUserToken = ""
	f.platform.details["payload-si"] = details
	f.tokens.webhookClaims["tok-1"] = ports.WebhookClaims{ApplicationID: testAppID, PayloadID: "payload-si"}

	err := f.service.HandleNotification(ctx, Notification{
		ApplicationID: testAppID,
		PayloadID:     "payload-si",
		UserToken:     "wallet-from-webhook",
		SignedToken:   "tok-1",
	})
	if err != nil {
		t.Fatalf("handle notification: %v", err)
	}

	if got := f.service.ResolveWalletUser(ctx, testAppID, "fe-1"); got != "wallet-from-webhook" {
		t.Fatalf("expected webhook user token recorded, got %q", got)
	}
}
