package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

type ownershipEntry struct {
	ports.OwnershipWriteParams
	createdAt time.Time
	updatedAt time.Time
}

type fakeOwnership struct {
	mu      sync.Mutex
	entries []*ownershipEntry
	err     error
}

func (f *fakeOwnership) Record(_ context.Context, params ports.OwnershipWriteParams) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.Space == params.Space && e.Origin == params.Origin && e.Referrer == params.Referrer &&
			e.ApplicationID == params.ApplicationID && e.IdentityValue == params.IdentityValue &&
			e.PayloadType == params.PayloadType && e.PayloadID == params.PayloadID {
			e.updatedAt = params.WrittenAt
			if params.WalletUserID != "" {
				e.WalletUserID = params.WalletUserID
			}
			return nil
		}
	}
	f.entries = append(f.entries, &ownershipEntry{
		OwnershipWriteParams: params,
		createdAt:            params.WrittenAt,
		updatedAt:            params.WrittenAt,
	})
	return nil
}

func (f *fakeOwnership) ListPayloadIDs(_ context.Context, q ports.OwnershipQuery) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, e := range f.entries {
		if e.Space != q.Space || e.ApplicationID != q.ApplicationID ||
			e.IdentityValue != q.IdentityValue || e.PayloadType != q.PayloadType {
			continue
		}
		if q.Origin != "" && e.Origin != q.Origin {
			continue
		}
		if q.Referrer != "" && e.Referrer != q.Referrer {
			continue
		}
		if !seen[e.PayloadID] {
			seen[e.PayloadID] = true
			ids = append(ids, e.PayloadID)
		}
	}
	return ids, nil
}

func (f *fakeOwnership) ListRecent(_ context.Context, space domain.IdentitySpace, applicationID, identityValue, payloadType string, limit int) ([]domain.OwnershipRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []*ownershipEntry
	for _, e := range f.entries {
		if e.Space != space || e.ApplicationID != applicationID || e.IdentityValue != identityValue {
			continue
		}
		if payloadType != "" && e.PayloadType != payloadType {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].updatedAt.After(matched[j].updatedAt) })
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	records := make([]domain.OwnershipRecord, 0, len(matched))
	for _, e := range matched {
		records = append(records, domain.OwnershipRecord{
			Space:         e.Space,
			Origin:        e.Origin,
			Referrer:      e.Referrer,
			ApplicationID: e.ApplicationID,
			IdentityValue: e.IdentityValue,
			PayloadType:   e.PayloadType,
			PayloadID:     e.PayloadID,
			WalletUserID:  e.WalletUserID,
			CreatedAt:     e.createdAt,
			UpdatedAt:     e.updatedAt,
		})
	}
	return records, nil
}

type fakeAccounts struct {
	mu       sync.Mutex
	mappings map[string]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{mappings: map[string]string{}}
}

func (f *fakeAccounts) Upsert(_ context.Context, applicationID, account, walletUserID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings[applicationID+"|"+account] = walletUserID
	return nil
}

func (f *fakeAccounts) Lookup(_ context.Context, applicationID, account string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	walletUserID, ok := f.mappings[applicationID+"|"+account]
	if !ok {
		return "", domain.ErrNotFound
	}
	return walletUserID, nil
}

type fakePolicies struct {
	mu          sync.Mutex
	policies    []*domain.OriginPolicy
	invalidated int
}

func (f *fakePolicies) GetByOriginAndApplication(_ context.Context, origin, applicationID string) (*domain.OriginPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.policies {
		if p.Origin == origin && p.ApplicationID == applicationID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePolicies) GetByApplication(_ context.Context, applicationID string) (*domain.OriginPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.policies {
		if p.ApplicationID == applicationID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePolicies) GetByAPIKey(_ context.Context, apiKey string) (*domain.OriginPolicy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.policies {
		if p.APIKey == apiKey {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePolicies) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

type fakePending struct {
	mu      sync.Mutex
	entries map[string]domain.PendingRequest
}

func newFakePending() *fakePending {
	return &fakePending{entries: map[string]domain.PendingRequest{}}
}

func pendingFakeKey(applicationID, payloadID string) string {
	return applicationID + "|" + payloadID
}

func (f *fakePending) Put(_ context.Context, pending domain.PendingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[pendingFakeKey(pending.ApplicationID, pending.PayloadID)] = pending
	return nil
}

func (f *fakePending) Get(_ context.Context, applicationID, payloadID string) (*domain.PendingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending, ok := f.entries[pendingFakeKey(applicationID, payloadID)]
	if !ok {
		return nil, nil
	}
	return &pending, nil
}

func (f *fakePending) Delete(_ context.Context, applicationID, payloadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, pendingFakeKey(applicationID, payloadID))
	return nil
}

func (f *fakePending) List(_ context.Context) ([]domain.PendingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.PendingRequest, 0, len(f.entries))
	for _, pending := range f.entries {
		out = append(out, pending)
	}
	return out, nil
}

type fakePlatform struct {
	mu          sync.Mutex
	details     map[string]domain.PayloadDetails
	byCI        map[string]string
	getErr      error
	submitted   []ports.PayloadSubmission
	nextPayload string
	deleted     []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		details:     map[string]domain.PayloadDetails{},
		byCI:        map[string]string{},
		nextPayload: "payload-new",
	}
}

func (f *fakePlatform) Submit(_ context.Context, _ ports.PlatformCredentials, sub ports.PayloadSubmission) (ports.PayloadCreated, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, sub)
	return ports.PayloadCreated{
		PayloadID:  f.nextPayload,
		NextAlways: "https://sign.example.com/" + f.nextPayload,
		QRPNG:      "https://sign.example.com/" + f.nextPayload + ".png",
	}, nil
}

func (f *fakePlatform) Get(_ context.Context, _ ports.PlatformCredentials, payloadID string) (domain.PayloadDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.PayloadDetails{}, f.getErr
	}
	details, ok := f.details[payloadID]
	if !ok {
		return domain.PayloadDetails{}, domain.ErrNotFound
	}
	return details, nil
}

func (f *fakePlatform) GetByCustomIdentifier(ctx context.Context, creds ports.PlatformCredentials, customIdentifier string) (domain.PayloadDetails, error) {
	f.mu.Lock()
	payloadID, ok := f.byCI[customIdentifier]
	f.mu.Unlock()
	if !ok {
		return domain.PayloadDetails{}, domain.ErrNotFound
	}
	return f.Get(ctx, creds, payloadID)
}

func (f *fakePlatform) Delete(_ context.Context, _ ports.PlatformCredentials, payloadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, payloadID)
	delete(f.details, payloadID)
	return nil
}

type fakeEscrow struct {
	mu    sync.Mutex
	added []ports.EscrowKey
	err   error
}

func (f *fakeEscrow) Exists(_ context.Context, key ports.EscrowKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.added {
		if k == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEscrow) Add(_ context.Context, key ports.EscrowKey) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, key)
	return nil
}

func (f *fakeEscrow) Delete(_ context.Context, key ports.EscrowKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, k := range f.added {
		if k == key {
			f.added = append(f.added[:i], f.added[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeTokens struct {
	webhookClaims map[string]ports.WebhookClaims
}

func (f *fakeTokens) VerifyWebhookToken(token, _ string) (ports.WebhookClaims, error) {
	claims, ok := f.webhookClaims[token]
	if !ok {
		return ports.WebhookClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}

func (f *fakeTokens) VerifyAdminToken(token string) error {
	if token != "admin-ok" {
		return domain.ErrUnauthorized
	}
	return nil
}

type publishedEvent struct {
	eventType string
	payload   json.RawMessage
}

type fakeEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeEvents) Publish(_ context.Context, eventType string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{eventType: eventType, payload: payload})
	return nil
}

type fakeProvider struct {
	name  string
	tx    domain.LedgerTransaction
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) LookupTransaction(_ context.Context, _ string) (domain.LedgerTransaction, error) {
	p.calls++
	if p.err != nil {
		return domain.LedgerTransaction{}, p.err
	}
	return p.tx, nil
}

type fixture struct {
	service   *Service
	ownership *fakeOwnership
	accounts  *fakeAccounts
	policies  *fakePolicies
	pending   *fakePending
	platform  *fakePlatform
	escrow    *fakeEscrow
	tokens    *fakeTokens
	events    *fakeEvents
	now       time.Time
}

const (
	testOrigin = "https://shop.example.com"
	testAppID  = "app-1"
)

func testFixturePolicy() *domain.OriginPolicy {
	return &domain.OriginPolicy{
		ApplicationID:  testAppID,
		Origin:         testOrigin,
		AllowedOrigins: []string{testOrigin},
		ValidationWindows: map[string]int64{
			"*": 24 * 60 * 60 * 1000,
		},
		APIKey:        "key-1",
		APISecret:     "secret-1",
		WebhookSecret: "whsec-1",
	}
}

func newFixture(mainnet, testnet []ports.LedgerProvider) *fixture {
	logger := slog.Default()
	f := &fixture{
		ownership: &fakeOwnership{},
		accounts:  newFakeAccounts(),
		policies:  &fakePolicies{policies: []*domain.OriginPolicy{testFixturePolicy()}},
		pending:   newFakePending(),
		platform:  newFakePlatform(),
		escrow:    &fakeEscrow{},
		tokens:    &fakeTokens{webhookClaims: map[string]ports.WebhookClaims{}},
		events:    &fakeEvents{},
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(Dependencies{
		Logger:    logger,
		Ownership: f.ownership,
		Accounts:  f.accounts,
		Policies:  f.policies,
		Pending:   f.pending,
		Platform:  f.platform,
		Escrow:    f.escrow,
		Verifier:  NewLedgerVerifier(logger, mainnet, testnet, time.Second),
		Tokens:    f.tokens,
		Events:    f.events,
	})
	f.service.nowFn = func() time.Time { return f.now }
	return f
}

func (f *fixture) recordFrontendOwnership(t interface{ Fatalf(string, ...any) }, frontendID, payloadType, payloadID string) {
	err := f.service.RecordOwnership(context.Background(), ports.OwnershipWriteParams{
		Space:         domain.SpaceFrontend,
		Origin:        testOrigin,
		Referrer:      testOrigin + "/checkout",
		ApplicationID: testAppID,
		IdentityValue: frontendID,
		PayloadType:   payloadType,
		PayloadID:     payloadID,
	})
	if err != nil {
		t.Fatalf("record ownership: %v", err)
	}
}

func settledPayment(txID, account string) domain.PayloadDetails {
	return domain.PayloadDetails{
		Meta: domain.PayloadMeta{Exists: true, Resolved: true, Signed: true},
		Payload: domain.PayloadRequest{
			TxType:               domain.PayloadTypePayment,
			RequestedDestination: "rDest",
			RequestedAmount:      json.RawMessage(`"1000000"`),
		},
		Response: domain.PayloadResponse{
			Account:    account,
			TxID:       txID,
			ResolvedAt: time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC).Format(time.RFC3339),
		},
		Application: domain.PayloadApplication{ID: testAppID, IssuedUserToken: "wallet-user-1"},
	}
}

func settledLedgerTx(account string) domain.LedgerTransaction {
	return domain.LedgerTransaction{
		Hash:            "ABC123",
		TransactionType: "Payment",
		ResultCode:      "tesSUCCESS",
		Account:         account,
		Destination:     "rDest",
		Delivered:       domain.Amount{Currency: "XRP", Value: "1"},
		Validated:       true,
	}
}
