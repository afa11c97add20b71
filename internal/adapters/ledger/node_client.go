package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// NodeClient looks transactions up over an XRPL node's websocket RPC.
// A fresh connection is dialed per lookup and bounded by the caller's
// context; verification traffic is far too sparse to justify keeping a
// subscription socket alive against nodes that drop idle peers.
type NodeClient struct {
	name   string
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger
}

func NewNodeClient(logger *slog.Logger, name, url string) *NodeClient {
	return &NodeClient{
		name:   name,
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger.With("module", "ledger", "provider", name),
	}
}

func (c *NodeClient) Name() string { return c.name }

type txCommand struct {
	ID          int    `json:"id"`
	Command     string `json:"command"`
	Transaction string `json:"transaction"`
	Binary      bool   `json:"binary"`
}

type txResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Result struct {
		Hash            string          `json:"hash"`
		TransactionType string          `json:"TransactionType"`
		Account         string          `json:"Account"`
		Destination     string          `json:"Destination"`
		DestinationTag  *uint32         `json:"DestinationTag"`
		Sequence        uint32          `json:"Sequence"`
		Validated       bool            `json:"validated"`
		Meta            json.RawMessage `json:"meta"`
	} `json:"result"`
}

type txMeta struct {
	TransactionResult string          `json:"TransactionResult"`
	DeliveredAmount   json.RawMessage `json:"delivered_amount"`
}

func (c *NodeClient) LookupTransaction(ctx context.Context, hash string) (domain.LedgerTransaction, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return domain.LedgerTransaction{}, fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	cmd := txCommand{ID: 1, Command: "tx", Transaction: hash, Binary: false}
	if err := conn.WriteJSON(cmd); err != nil {
		return domain.LedgerTransaction{}, fmt.Errorf("send tx command: %w", err)
	}

	var resp txResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return domain.LedgerTransaction{}, fmt.Errorf("read tx response: %w", err)
	}

	if resp.Status != "success" {
		if resp.Error == "txnNotFound" {
			return domain.LedgerTransaction{}, domain.ErrNotFound
		}
		return domain.LedgerTransaction{}, fmt.Errorf("node error: %s", resp.Error)
	}

	tx := domain.LedgerTransaction{
		Hash:            resp.Result.Hash,
		TransactionType: resp.Result.TransactionType,
		Account:         resp.Result.Account,
		Destination:     resp.Result.Destination,
		DestinationTag:  resp.Result.DestinationTag,
		Sequence:        resp.Result.Sequence,
		Validated:       resp.Result.Validated,
	}

	if len(resp.Result.Meta) > 0 {
		var meta txMeta
		if err := json.Unmarshal(resp.Result.Meta, &meta); err != nil {
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
