package ledger

import (
	"encoding/json"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/shopspring/decimal"
)

var dropsPerXRP = decimal.NewFromInt(1_000_000)

// decodeDeliveredAmount normalizes the two ledger amount encodings into one
// domain shape. Native amounts arrive as a bare drops string and are converted
// to XRP units; issued amounts arrive as an object and pass through unchanged.
func decodeDeliveredAmount(raw json.RawMessage) (domain.Amount, error) {
	if len(raw) == 0 {
		return domain.Amount{}, nil
	}

	var drops string
	if err := json.Unmarshal(raw, &drops); err == nil {
		value, convErr := decimal.NewFromString(drops)
		if convErr != nil {
			return domain.Amount{}, convErr
		}
		return domain.Amount{
			Currency: "XRP",
			Value:    value.Div(dropsPerXRP).String(),
		}, nil
	}

	var issued struct {
		Currency string `json:"currency"`
		Issuer   string `json:"issuer"`
		Value    string `json:"value"`
	}
	if err := json.Unmarshal(raw, &issued); err != nil {
		return domain.Amount{}, err
	}
	return domain.Amount{
		Currency: issued.Currency,
		Issuer:   issued.Issuer,
		Value:    issued.Value,
	}, nil
}
