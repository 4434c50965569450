package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseTokenAmount converts a human amount ("1.5") into the token's smallest
// unit. Digits beyond the token's precision are dropped.
func ParseTokenAmount(amount string, decimals int32) (string, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", &InvalidAmountError{Value: amount, Reason: "amount is required"}
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", &InvalidAmountError{Value: amount, Reason: "not a number"}
	}
	if d.Sign() <= 0 {
		return "", &InvalidAmountError{Value: amount, Reason: "must be greater than 0"}
	}
	raw := d.Shift(decimals).Truncate(0)
	if raw.Sign() <= 0 {
		return "", &InvalidAmountError{Value: amount, Reason: "smaller than the token's smallest unit"}
	}
	return raw.String(), nil
}

// ParseRawAmount validates an amount already in the smallest unit.
func ParseRawAmount(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, &InvalidAmountError{Value: raw, Reason: "not an integer"}
	}
	if v.Sign() <= 0 {
		return nil, &InvalidAmountError{Value: raw, Reason: "must be greater than 0"}
	}
	return v, nil
}

// CheckBalance fails with InsufficientStakeError when raw exceeds available.
func CheckBalance(raw, available string) error {
	want, err := ParseRawAmount(raw)
	if err != nil {
		return err
	}
	have, ok := new(big.Int).SetString(strings.TrimSpace(available), 10)
	if !ok {
		have = new(big.Int)
	}
	if want.Cmp(have) > 0 {
		return &InsufficientStakeError{Requested: raw, Available: have.String()}
	}
	return nil
}

// FormatTokenAmount renders a smallest-unit amount with at most maxDecimals
// fraction digits, trailing zeros removed.
func FormatTokenAmount(raw string, decimals, maxDecimals int32) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return d.Shift(-decimals).Truncate(maxDecimals).String()
}
