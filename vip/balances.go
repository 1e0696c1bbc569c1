package vip

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/warp/vip-ledger/generic"
)

// ParseBalances reads the stored balances from vipList text.
//
// Each line is "name=amount<glyph>". Lines without "=" are ignored. A line with
// more than one "=" or an amount that is not a base-10 integer after removing
// the glyph is a ParseError. Names are trimmed; a repeated name keeps the last
// value.
func ParseBalances(text, glyph string) (map[generic.EntityID]generic.Amount, error) {
	balances := make(map[generic.EntityID]generic.Amount)
	if text == "" {
		return balances, nil
	}

	for i, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "=") {
			continue
		}
		field := fmt.Sprintf("vipList line %d", i+1)

		parts := strings.Split(line, "=")
		if len(parts) != 2 {
			return nil, &generic.ParseError{Field: field, Value: line, Err: fmt.Errorf("want exactly one '='")}
		}

		raw := StripCurrency(parts[1], glyph)
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &generic.ParseError{Field: field, Value: line, Err: fmt.Errorf("balance %q is not an integer", raw)}
		}
		balances[CustomerKey(strings.TrimSpace(parts[0]))] = generic.NewAmount(value)
	}
	return balances, nil
}

// FormatBalances renders balances in vipList form, one "name=amount<glyph>"
// line per customer sorted by name.
func FormatBalances(balances map[generic.EntityID]generic.Amount, glyph string) string {
	names := make([]generic.EntityID, 0, len(balances))
	for name := range balances {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, string(name)+"="+FormatCurrency(balances[name], glyph))
	}
	return strings.Join(lines, "\n")
}
