package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const nativeCurrency = "XRP"

// dropsPerNative converts native currency units to drops.
var dropsPerNative = decimal.NewFromInt(1_000_000)

// Amount is a delivered amount normalized by the ledger adapters: native
// deliveries carry Currency "XRP" with Value in whole units, issued
// deliveries carry the currency/issuer/value triple as reported.
type Amount struct {
	Currency string
	Issuer   string
	Value    string
}

// Native reports whether the amount is in the ledger's native currency.
func (a Amount) Native() bool {
	return strings.EqualFold(a.Currency, nativeCurrency)
}

// LedgerTransaction is the normalized transaction shape shared by node and
// REST providers.
type LedgerTransaction struct {
	Hash            string
	TransactionType string
	ResultCode      string
	Account         string
	Destination     string
	DestinationTag  *uint32
	Delivered       Amount
	Sequence        uint32
	Validated       bool
}

// Succeeded reports whether the ledger applied the transaction.
func (t LedgerTransaction) Succeeded() bool {
	return t.ResultCode == "tesSUCCESS"
}

// ExpectedAmount is the parsed form of a payload's requested amount: either
// an integer number of native drops or an issued currency triple. A nil
// ExpectedAmount accepts any delivered amount.
type ExpectedAmount struct {
	Drops  *int64
	Issued *Amount
}

// ParseExpectedAmount decodes the wire form of a requested amount. Numbers
// (and numeric strings) mean native drops; objects mean issued currency.
func ParseExpectedAmount(raw json.RawMessage) (*ExpectedAmount, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var issued struct {
			Currency string `json:"currency"`
			Issuer   string `json:"issuer"`
			Value    string `json:"value"`
		}
		if err := json.Unmarshal(raw, &issued); err != nil {
			return nil, fmt.Errorf("%w: malformed issued amount: %v", ErrInvalidInput, err)
		}
		if issued.Currency == "" || issued.Value == "" {
			return nil, fmt.Errorf("%w: issued amount missing currency or value", ErrInvalidInput)
		}
		return &ExpectedAmount{Issued: &Amount{
			Currency: issued.Currency,
			Issuer:   issued.Issuer,
			Value:    issued.Value,
		}}, nil
	}

	unquoted := strings.Trim(trimmed, `"`)
	drops, err := decimal.NewFromString(unquoted)
	if err != nil || !drops.IsInteger() {
		return nil, fmt.Errorf("%w: malformed drops amount %q", ErrInvalidInput, unquoted)
	}
	v := drops.IntPart()
	return &ExpectedAmount{Drops: &v}, nil
}

// Matches applies the delivered-amount rule: nil expectation accepts any;
// drops expectations require a native delivery whose value times one million
// equals the expected drops; issued expectations require currency, issuer and
// value to all match.
func (e *ExpectedAmount) Matches(delivered Amount) bool {
	if e == nil {
		return true
	}
	if e.Drops != nil {
		if !delivered.Native() {
			return false
		}
		value, err := decimal.NewFromString(delivered.Value)
		if err != nil {
			return false
		}
		return value.Mul(dropsPerNative).Equal(decimal.NewFromInt(*e.Drops))
	}
	if e.Issued != nil {
		if !strings.EqualFold(delivered.Currency, e.Issued.Currency) {
			return false
		}
		if delivered.Issuer != e.Issued.Issuer {
			return false
		}
		expected, err := decimal.NewFromString(e.Issued.Value)
		if err != nil {
			return false
		}
		got, err := decimal.NewFromString(delivered.Value)
		if err != nil {
			return false
		}
		return got.Equal(expected)
	}
	return true
}

// ExpectedPayment is what the verifier checks a settled transaction against.
type ExpectedPayment struct {
	Destination    string
	DestinationTag *uint32
	Amount         *ExpectedAmount
}

// Accepts applies the full acceptance rule from the verification pipeline.
func (e ExpectedPayment) Accepts(tx LedgerTransaction) bool {
	if !tx.Succeeded() {
		return false
	}
	if !strings.EqualFold(tx.TransactionType, "payment") {
		// Non-payment types are accepted on result code alone.
		return true
	}
	if e.Destination != "" && tx.Destination != e.Destination {
		return false
	}
	if e.DestinationTag != nil {
		if tx.DestinationTag == nil || *tx.DestinationTag != *e.DestinationTag {
			return false
		}
	}
	return e.Amount.Matches(tx.Delivered)
}

// TransactionCheckResult is the immutable verdict of one validation pass.
// It is produced fresh per check; the ledger itself stays authoritative.
type TransactionCheckResult struct {
	Success            bool
	Testnet            bool
	TxID               string
	Account            string
	PayloadExpired     bool
	NoValidationWindow bool
	Error              bool
}
