package tests

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

const maxPriceCents = 100_000

type Randomizer struct {
	// Price возвращает положительную цену с двумя знаками после точки.
	Price func() decimal.Decimal
	Bool  func() bool
}

func NewRandomizer() Randomizer {
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // for tests

	return Randomizer{
		Price: func() decimal.Decimal {
			return decimal.New(random.Int63n(maxPriceCents)+1, -2) //nolint:mnd // cents
		},
		Bool: func() bool { return random.Intn(2) == 0 }, //nolint:mnd // skip
	}
}
