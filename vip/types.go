// Package vip implements the VIP store-credit domain on top of the generic
// ledger engine: reading balances out of a snapshot, reconciling them against
// the transaction log, and correcting which order lines were paid from credit.
package vip

import (
	"strings"

	"github.com/warp/vip-ledger/generic"
)

// PaymentMethodVIP is the paymentMethod tag for a line paid from store credit.
const PaymentMethodVIP = "vip"

// DefaultCurrency is the glyph the web client appends to vipList amounts.
const DefaultCurrency = "đ"

// CustomerKey maps a display name, exactly as written in the snapshot, to the
// ledger key. Names are not normalized: "a Dave" and "Dave" are different
// customers, and so are names differing only in case or spacing.
func CustomerKey(name string) generic.EntityID {
	return generic.EntityID(name)
}

// StripCurrency removes every occurrence of the currency glyph and the
// surrounding whitespace from an amount string.
func StripCurrency(s, glyph string) string {
	if glyph != "" {
		s = strings.ReplaceAll(s, glyph, "")
	}
	return strings.TrimSpace(s)
}

// FormatCurrency renders an amount followed by the currency glyph.
func FormatCurrency(a generic.Amount, glyph string) string {
	return a.String() + glyph
}
