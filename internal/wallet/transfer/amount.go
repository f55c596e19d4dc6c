package transfer

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not a non-negative whole number of wei.
var ErrInvalidAmount = errors.New("invalid amount")

const (
	etherDecimals = 18

	// decimal digits of 2^256-1, the largest value a transaction can carry
	maxWeiDigits = 78
	maxWeiBits   = 256
)

// ParseEther converts a decimal ether string such as "0.001" to wei.
func ParseEther(amount string) (*big.Int, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is not a decimal number", amount)
	}

	if value.IsNegative() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q is negative", amount)
	}

	if value.IsZero() {
		return new(big.Int), nil
	}

	// bound the exponent before anything expands the coefficient
	digits := value.NumDigits()
	exponent := int(value.Exponent()) + etherDecimals
	if digits+exponent > maxWeiDigits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q exceeds %d bits of wei", amount, maxWeiBits)
	}
	if -exponent > digits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimal places", amount, etherDecimals)
	}

	wei := value.Shift(etherDecimals)
	if !wei.IsInteger() {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q has more than %d decimal places", amount, etherDecimals)
	}

	result := wei.BigInt()
	if result.BitLen() > maxWeiBits {
		return nil, errors.Wrapf(ErrInvalidAmount, "%q exceeds %d bits of wei", amount, maxWeiBits)
	}

	return result, nil
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}
