package risk

import "fmt"

type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {Name: "EUR_USD", BaseCurrency: "EUR", QuoteCurrency: "USD", PipLocation: -4},
	"GBP_USD": {Name: "GBP_USD", BaseCurrency: "GBP", QuoteCurrency: "USD", PipLocation: -4},
	"AUD_USD": {Name: "AUD_USD", BaseCurrency: "AUD", QuoteCurrency: "USD", PipLocation: -4},
	"USD_JPY": {Name: "USD_JPY", BaseCurrency: "USD", QuoteCurrency: "JPY", PipLocation: -2},
	"USD_CHF": {Name: "USD_CHF", BaseCurrency: "USD", QuoteCurrency: "CHF", PipLocation: -4},
}

// QuoteToAccountRate converts one unit of the instrument's quote currency
// into the account currency, given the instrument's mid price.
func QuoteToAccountRate(instrument, accountCurrency string, mid float64) (float64, error) {
	meta, ok := Instruments[normalizeSymbol(instrument)]
	if !ok {
		return 0, fmt.Errorf("unknown instrument %s", instrument)
	}

	// EUR_USD with a USD account
	if meta.QuoteCurrency == accountCurrency {
		return 1.0, nil
	}

	// USD_JPY with a USD account: mid is JPY per USD
	if meta.BaseCurrency == accountCurrency {
		if mid <= 0 {
			return 0, fmt.Errorf("%s: need a positive price to convert %s", instrument, meta.QuoteCurrency)
		}
		return 1.0 / mid, nil
	}

	return 0, fmt.Errorf("cross conversion not implemented for %s → %s", meta.QuoteCurrency, accountCurrency)
}

// InputsFor fills pip location and quote conversion for instrument, using
// entry as the conversion price.
func InputsFor(instrument, accountCurrency string, in Inputs) (Inputs, error) {
	meta, ok := Instruments[normalizeSymbol(instrument)]
	if !ok {
		return in, fmt.Errorf("unknown instrument %s", instrument)
	}
	rate, err := QuoteToAccountRate(instrument, accountCurrency, in.EntryPrice)
	if err != nil {
		return in, err
	}
	in.PipLocation = meta.PipLocation
	in.QuoteToAccount = rate
	return in, nil
}
