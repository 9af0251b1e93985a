// Package rates maps a parcel weight to a flat delivery fee per carrier.
//
// Each carrier prices four stepped weight brackets with inclusive upper
// bounds; anything above the top bound pays the top-tier fee. The table is
// the fallback used when no live carrier quote is available.
package rates

import (
	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
)

type bracket struct {
	upTo decimal.Decimal // inclusive, kg
	fee  decimal.Decimal // EUR
}

func kg(s string) decimal.Decimal  { return decimal.RequireFromString(s) }
func eur(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var carrierTables = map[domain.DeliveryMode][]bracket{
	domain.ModeColissimo: {
		{upTo: kg("5"), fee: eur("6.50")},
		{upTo: kg("10"), fee: eur("8.50")},
		{upTo: kg("20"), fee: eur("12.00")},
		{fee: eur("18.00")},
	},
	domain.ModeMondialRelay: {
		{upTo: kg("5"), fee: eur("4.90")},
		{upTo: kg("10"), fee: eur("6.90")},
		{upTo: kg("20"), fee: eur("9.50")},
		{fee: eur("14.00")},
	},
	domain.ModeChronopost: {
		{upTo: kg("5"), fee: eur("9.90")},
		{upTo: kg("10"), fee: eur("12.90")},
		{upTo: kg("20"), fee: eur("18.90")},
		{fee: eur("25.00")},
	},
}

// carrierOrder fixes the order options are presented in.
var carrierOrder = []domain.DeliveryMode{
	domain.ModeColissimo,
	domain.ModeMondialRelay,
	domain.ModeChronopost,
}

// Fee returns the fee the given carrier charges for totalWeight kilograms.
// The last bracket has no bound and always matches.
func Fee(mode domain.DeliveryMode, totalWeight decimal.Decimal) (decimal.Decimal, bool) {
	table, ok := carrierTables[mode]
	if !ok {
		return decimal.Zero, false
	}
	for _, b := range table {
		if b.upTo.IsZero() || totalWeight.LessThanOrEqual(b.upTo) {
			return b.fee, true
		}
	}
	return table[len(table)-1].fee, true
}

// Option is one quoted carrier choice as rendered in estimate responses.
type Option struct {
	Mode  domain.DeliveryMode `json:"mode"`
	Label string              `json:"label"`
	Fee   decimal.Decimal     `json:"fee"`
}

// Options quotes every carrier for totalWeight in presentation order.
func Options(totalWeight decimal.Decimal) []Option {
	opts := make([]Option, 0, len(carrierOrder))
	for _, mode := range carrierOrder {
		fee, _ := Fee(mode, totalWeight)
		opts = append(opts, Option{Mode: mode, Label: mode.Label(), Fee: fee})
	}
	return opts
}
