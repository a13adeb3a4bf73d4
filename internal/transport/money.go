package transport

import "github.com/shopspring/decimal"

// Money renders as a JSON number, e.g. "total_amount": 250.5.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
