package pricing

import (
	"fmt"
	"strings"

	"github.com/anyulbade/trade-cost-backoffice/internal/model"
)

type Currency string

const (
	KRW Currency = "KRW"
	USD Currency = "USD"
	CNY Currency = "CNY"
)

// RateTable maps a foreign currency to local-currency units per one unit
// of it. The local currency is implicitly 1.
type RateTable map[Currency]float64

func RatesFrom(r model.ExchangeRate) RateTable {
	return RateTable{USD: r.USDRate, CNY: r.CNYRate}
}

func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

func (t RateTable) ToLocal(c Currency) (float64, error) {
	if c == KRW || c == "" {
		return 1, nil
	}
	rate, ok := t[c]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: exchange rate for %s", ErrMissingInput, c)
	}
	return rate, nil
}

func Convert(amount float64, from, to Currency, rates RateTable) (float64, error) {
	fromRate, err := rates.ToLocal(from)
	if err != nil {
		return 0, err
	}
	toRate, err := rates.ToLocal(to)
	if err != nil {
		return 0, err
	}
	return amount * fromRate / toRate, nil
}
