package game

import (
	"strconv"

	"github.com/Rhymond/go-money"
)

// Currency is the ISO code used when rendering amounts.
var Currency = money.EUR

// FormatAmount renders whole currency units, e.g. 1900 as "€1,900.00"
// depending on the currency's formatter. Amounts beyond MaxAmount cannot be
// expressed in minor units and fall back to plain digits and the code.
func FormatAmount(units int64) string {
	if units > MaxAmount || units < -MaxAmount {
		return strconv.FormatInt(units, 10) + " " + Currency
	}
	return money.New(units*100, Currency).Display()
}
