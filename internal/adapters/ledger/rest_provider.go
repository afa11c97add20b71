package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// RESTProvider is the HTTP fallback behind the websocket nodes. It queries a
// transaction API that serves `GET {base}/{hash}` and maps 404 to definitive
// absence the same way the node clients map txnNotFound.
type RESTProvider struct {
	name    string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewRESTProvider(logger *slog.Logger, name, baseURL string, client *http.Client) *RESTProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &RESTProvider{
		name:    name,
		baseURL: baseURL,
		client:  client,
		logger:  logger.With("module", "ledger", "provider", name),
	}
}

func (p *RESTProvider) Name() string { return p.name }

type restTxResponse struct {
	Hash            string          `json:"hash"`
	TransactionType string          `json:"TransactionType"`
	Account         string          `json:"Account"`
	Destination     string          `json:"Destination"`
	DestinationTag  *uint32         `json:"DestinationTag"`
	Sequence        uint32          `json:"Sequence"`
	Validated       bool            `json:"validated"`
	Meta            json.RawMessage `json:"meta"`
}

func (p *RESTProvider) LookupTransaction(ctx context.Context, hash string) (domain.LedgerTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+hash, nil)
	if err != nil {
		return domain.LedgerTransaction{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.LedgerTransaction{}, fmt.Errorf("lookup transaction: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.LedgerTransaction{}, domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.LedgerTransaction{}, fmt.Errorf("lookup transaction: unexpected status %d", resp.StatusCode)
	}

	var body restTxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.LedgerTransaction{}, fmt.Errorf("decode transaction: %w", err)
	}

	tx := domain.LedgerTransaction{
		Hash:            body.Hash,
		TransactionType: body.TransactionType,
		Account:         body.Account,
		Destination:     body.Destination,
		DestinationTag:  body.DestinationTag,
		Sequence:        body.Sequence,
		Validated:       body.Validated,
	}

	if len(body.Meta) > 0 {
		var meta txMeta
		if err := json.Unmarshal(body.Meta, &meta); err != nil {
			return domain.LedgerTransaction{}, fmt.Errorf("decode tx meta: %w", err)
		}
		tx.ResultCode = meta.TransactionResult
		delivered, err := decodeDeliveredAmount(meta.DeliveredAmount)
		if err != nil {
			return domain.LedgerTransaction{}, fmt.Errorf("decode delivered amount: %w", err)
		}
		tx.Delivered = delivered
	}

	return tx, nil
}
