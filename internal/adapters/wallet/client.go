package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// Client talks to the wallet signing platform's payload API. Tenant
// credentials travel per request in headers; the client itself holds no
// tenant state and is shared across all policies.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(logger *slog.Logger, baseURL string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		client:  client,
		logger:  logger.With("module", "wallet", "layer", "adapter"),
	}
}

type submitBody struct {
	TxJSON     json.RawMessage `json:"txjson"`
	UserToken  string          `json:"user_token,omitempty"`
	Options    submitOptions   `json:"options"`
	CustomMeta *customMeta     `json:"custom_meta,omitempty"`
}

type submitOptions struct {
	Submit    bool       `json:"submit"`
	Pushed    bool       `json:"pushed"`
	ReturnURL *returnURL `json:"return_url,omitempty"`
}

type returnURL struct {
	App string `json:"app,omitempty"`
	Web string `json:"web,omitempty"`
}

type customMeta struct {
	Identifier string `json:"identifier"`
}

type submitResponse struct {
	UUID string `json:"uuid"`
	Next struct {
		Always string `json:"always"`
		NoPush string `json:"no_push_msg"`
	} `json:"next"`
	Refs struct {
		QRPNG string `json:"qr_png"`
	} `json:"refs"`
}

type detailsResponse struct {
	Meta struct {
		Exists   bool `json:"exists"`
		Resolved bool `json:"resolved"`
		Signed   bool `json:"signed"`
		Submit   bool `json:"submit"`
		Expired  bool `json:"expired"`
	} `json:"meta"`
	Application struct {
		UUID            string `json:"uuidv4"`
		IssuedUserToken string `json:"issued_user_token"`
	} `json:"application"`
	Payload struct {
		TxType      string          `json:"tx_type"`
		RequestJSON json.RawMessage `json:"request_json"`
		ExpiresAt   time.Time       `json:"expires_at"`
	} `json:"payload"`
	CustomMeta struct {
		Identifier string `json:"identifier"`
	} `json:"custom_meta"`
	Response struct {
		Account          string `json:"account"`
		TxID             string `json:"txid"`
		Hex              string `json:"hex"`
		DispatchedResult string `json:"dispatched_result"`
		ResolvedAt       string `json:"resolved_at"`
	} `json:"response"`
}

func (c *Client) Submit(ctx context.Context, creds ports.PlatformCredentials, sub ports.PayloadSubmission) (ports.PayloadCreated, error) {
	body := submitBody{
		TxJSON:    sub.TxJSON,
		UserToken: sub.UserToken,
		Options: submitOptions{
			Submit: true,
			Pushed: !sub.PushDisabled,
		},
	}
	if sub.ReturnURLApp != "" || sub.ReturnURLWeb != "" {
		body.Options.ReturnURL = &returnURL{App: sub.ReturnURLApp, Web: sub.ReturnURLWeb}
	}
	if sub.CustomIdentifier != "" {
		body.CustomMeta = &customMeta{Identifier: sub.CustomIdentifier}
	}

	var resp submitResponse
	if err := c.do(ctx, creds, http.MethodPost, "/payload", body, &resp); err != nil {
		return ports.PayloadCreated{}, err
	}
	return ports.PayloadCreated{
		PayloadID:  resp.UUID,
		NextAlways: resp.Next.Always,
		NextNoPush: resp.Next.NoPush,
		QRPNG:      resp.Refs.QRPNG,
	}, nil
}

func (c *Client) Get(ctx context.Context, creds ports.PlatformCredentials, payloadID string) (domain.PayloadDetails, error) {
	var resp detailsResponse
	if err := c.do(ctx, creds, http.MethodGet, "/payload/"+url.PathEscape(payloadID), nil, &resp); err != nil {
		return domain.PayloadDetails{}, err
	}
	return toDomainDetails(resp)
}

func (c *Client) GetByCustomIdentifier(ctx context.Context, creds ports.PlatformCredentials, customIdentifier string) (domain.PayloadDetails, error) {
	var resp detailsResponse
	if err := c.do(ctx, creds, http.MethodGet, "/payload/ci/"+url.PathEscape(customIdentifier), nil, &resp); err != nil {
		return domain.PayloadDetails{}, err
	}
	return toDomainDetails(resp)
}

func (c *Client) Delete(ctx context.Context, creds ports.PlatformCredentials, payloadID string) error {
	return c.do(ctx, creds, http.MethodDelete, "/payload/"+url.PathEscape(payloadID), nil, nil)
}

func (c *Client) do(ctx context.Context, creds ports.PlatformCredentials, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", creds.APIKey)
	req.Header.Set("X-API-Secret", creds.APISecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: platform returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}

// requestedTx pulls the fields this service inspects out of the original
// transaction JSON the application submitted.
type requestedTx struct {
	Destination    string          `json:"Destination"`
	DestinationTag *uint32         `json:"DestinationTag"`
	Amount         json.RawMessage `json:"Amount"`
}

func toDomainDetails(resp detailsResponse) (domain.PayloadDetails, error) {
	var reqTx requestedTx
	if len(resp.Payload.RequestJSON) > 0 {
		if err := json.Unmarshal(resp.Payload.RequestJSON, &reqTx); err != nil {
			return domain.PayloadDetails{}, fmt.Errorf("%w: decode request json: %v", domain.ErrUpstream, err)
		}
	}

	return domain.PayloadDetails{
		Meta: domain.PayloadMeta{
			Exists:   resp.Meta.Exists,
			Resolved: resp.Meta.Resolved,
			Signed:   resp.Meta.Signed,
			Submit:   resp.Meta.Submit,
			Expired:  resp.Meta.Expired,
		},
		Payload: domain.PayloadRequest{
			TxType:                  resp.Payload.TxType,
			RequestedDestination:    reqTx.Destination,
			RequestedDestinationTag: reqTx.DestinationTag,
			RequestedAmount:         reqTx.Amount,
			CustomIdentifier:        resp.CustomMeta.Identifier,
			ExpiresAt:               resp.Payload.ExpiresAt,
		},
		Response: domain.PayloadResponse{
			Account:          resp.Response.Account,
			TxID:             resp.Response.TxID,
			SignedBlobHex:    resp.Response.Hex,
			DispatchedResult: resp.Response.DispatchedResult,
			ResolvedAt:       resp.Response.ResolvedAt,
		},
		Application: domain.PayloadApplication{
			ID:              resp.Application.UUID,
			IssuedUserToken: resp.Application.IssuedUserToken,
		},
	}, nil
}
