package value

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const priceScale = 2

var (
	ErrPriceNotPositive = errors.New("price must be positive")
	ErrPriceScale       = errors.New("price must have at most 2 decimal places")
)

// ParsePrice разбирает денежную сумму из строки вида "25.00".
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decimal.NewFromString: %w", err)
	}

	if err := ValidatePrice(price); err != nil {
		return decimal.Decimal{}, err
	}

	return price, nil
}

func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrPriceNotPositive
	}

	if !price.Equal(price.Truncate(priceScale)) {
		return ErrPriceScale
	}

	return nil
}

// MinorUnits переводит сумму в копейки/центы для платёжного шлюза.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(priceScale).Round(0).IntPart()
}

// FromMinorUnits: обратное преобразование суммы шлюза.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -priceScale)
}
