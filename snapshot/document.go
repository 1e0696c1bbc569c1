/*
Package snapshot reads and writes the merchant's backup document.

PURPOSE:
  The backup is a single JSON object written by the ordering web client:

    {
      "version": ...,
      "data": {
        "orderHistory":    [ {date, itemName, details: [ {name, paid, due, paymentMethod, ...} ]} ],
        "vipTransactions": [ {id, ts, type, name, amount, ...} ],
        "vipList":         "Alice=250000đ\nBob=0đ",
        ...
      }
    }

  Only a handful of fields matter to this module, but the document carries
  many more, and a rewritten backup must keep every one of them.

ROUND-TRIP FIDELITY:
  The document is decoded into generic maps with UseNumber, so every value
  the module does not touch (including the exact text of numbers) is encoded
  back as it was read. Key order and whitespace may change.

VIEWS:
  Order, Line and Entry are thin views over the underlying maps. Reads are
  best-effort (a missing field reads as its zero value); the only write is
  Line.SetPaymentMethod and Document.SetVIPList.

SEE ALSO:
  - file.go: Load from disk, atomic Save
  - vip/: The reconciler and reclassifier built on these views
*/
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/warp/vip-ledger/generic"
)

const (
	keyData            = "data"
	keyOrderHistory    = "orderHistory"
	keyVIPTransactions = "vipTransactions"
	keyVIPList         = "vipList"
)

// =============================================================================
// DOCUMENT
// =============================================================================

type Document struct {
	root map[string]any
	data map[string]any
}

// Decode reads one JSON document. It fails with a LoadError when the input is
// not JSON, is not an object, or has no "data" object.
func Decode(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &generic.LoadError{Reason: "malformed JSON", Err: err}
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &generic.LoadError{Reason: "unexpected content after document"}
	}

	obj, ok := root.(map[string]any)
	if !ok {
		return nil, &generic.LoadError{Reason: "document is not a JSON object"}
	}
	data, ok := obj[keyData].(map[string]any)
	if !ok {
		return nil, &generic.LoadError{Reason: `missing "data" object`}
	}
	return &Document{root: obj, data: data}, nil
}

// Encode writes the document as indented JSON with non-ASCII text kept as is.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(d.root)
}

// Orders returns a view of every entry of data.orderHistory, in file order.
func (d *Document) Orders() ([]Order, error) {
	items, err := d.array(keyOrderHistory)
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &generic.LoadError{Reason: fmt.Sprintf("%s[%d] is not an object", keyOrderHistory, i)}
		}
		orders = append(orders, Order{Index: i, fields: fields})
	}
	return orders, nil
}

// Entries returns a view of every entry of data.vipTransactions, in file order.
func (d *Document) Entries() ([]Entry, error) {
	items, err := d.array(keyVIPTransactions)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &generic.LoadError{Reason: fmt.Sprintf("%s[%d] is not an object", keyVIPTransactions, i)}
		}
		entries = append(entries, Entry{Index: i, fields: fields})
	}
	return entries, nil
}

// VIPList returns the raw data.vipList text ("" when absent).
func (d *Document) VIPList() (string, error) {
	v, ok := d.data[keyVIPList]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &generic.LoadError{Reason: fmt.Sprintf("%s.%s is not a string", keyData, keyVIPList)}
	}
	return s, nil
}

func (d *Document) SetVIPList(text string) {
	d.data[keyVIPList] = text
}

func (d *Document) array(key string) ([]any, error) {
	v, ok := d.data[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &generic.LoadError{Reason: fmt.Sprintf("%s.%s is not an array", keyData, key)}
	}
	return items, nil
}

// =============================================================================
// ORDER
// =============================================================================

type Order struct {
	Index  int
	fields map[string]any
}

func (o Order) ItemName() string { return stringField(o.fields, "itemName") }

// Date returns the raw timestamp string ("" when absent).
func (o Order) Date() string { return stringField(o.fields, "date") }

// Time parses Date. A missing or malformed timestamp is a ParseError.
func (o Order) Time() (time.Time, error) {
	t, err := generic.ParseTimestamp(o.Date())
	if err != nil {
		return time.Time{}, &generic.ParseError{Field: o.path("date"), Value: o.Date(), Err: err}
	}
	return t, nil
}

// Lines returns a view of each entry of the order's details.
func (o Order) Lines() ([]Line, error) {
	v, ok := o.fields["details"]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &generic.LoadError{Reason: o.path("details") + " is not an array"}
	}
	lines := make([]Line, 0, len(items))
	for j, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &generic.LoadError{Reason: fmt.Sprintf("%s[%d] is not an object", o.path("details"), j)}
		}
		lines = append(lines, Line{OrderIndex: o.Index, Index: j, fields: fields})
	}
	return lines, nil
}

func (o Order) path(field string) string {
	return fmt.Sprintf("%s[%d].%s", keyOrderHistory, o.Index, field)
}

// =============================================================================
// LINE - One customer's share of an order
// =============================================================================

type Line struct {
	OrderIndex int
	Index      int
	fields     map[string]any
}

// Name returns the customer name and whether it is present as a string.
func (l Line) Name() (string, bool) {
	s, ok := l.fields["name"].(string)
	return s, ok
}

// Paid is true only for a JSON true.
func (l Line) Paid() bool {
	paid, ok := l.fields["paid"].(bool)
	return ok && paid
}

// Due returns the amount owed; absent or null reads as zero.
func (l Line) Due() (generic.Amount, error) {
	return amountField(l.fields, "due", l.path("due"))
}

func (l Line) PaymentMethod() string { return stringField(l.fields, "paymentMethod") }

func (l Line) SetPaymentMethod(method string) {
	l.fields["paymentMethod"] = method
}

func (l Line) path(field string) string {
	return fmt.Sprintf("%s[%d].details[%d].%s", keyOrderHistory, l.OrderIndex, l.Index, field)
}

// =============================================================================
// ENTRY - One VIP ledger transaction
// =============================================================================

type Entry struct {
	Index  int
	fields map[string]any
}

// ID returns the entry's identity as its JSON text, so the number 1 and the
// string "1" stay distinct. A missing id is a ParseError.
func (e Entry) ID() (generic.TransactionID, error) {
	v, ok := e.fields["id"]
	if !ok || v == nil {
		return "", &generic.ParseError{Field: e.path("id"), Err: generic.ErrMissingField}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", &generic.ParseError{Field: e.path("id"), Err: err}
	}
	return generic.TransactionID(raw), nil
}

func (e Entry) Type() string { return stringField(e.fields, "type") }

// Name returns the customer name and whether it is present as a string.
func (e Entry) Name() (string, bool) {
	s, ok := e.fields["name"].(string)
	return s, ok
}

// Amount returns the entry amount; absent or null reads as zero.
func (e Entry) Amount() (generic.Amount, error) {
	return amountField(e.fields, "amount", e.path("amount"))
}

func (e Entry) path(field string) string {
	return fmt.Sprintf("%s[%d].%s", keyVIPTransactions, e.Index, field)
}

// =============================================================================
// FIELD HELPERS
// =============================================================================

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func amountField(fields map[string]any, key, path string) (generic.Amount, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return generic.ZeroAmount(), nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return generic.Amount{}, &generic.ParseError{Field: path, Value: fmt.Sprint(v), Err: errors.New("not a number")}
	}
	amount, err := generic.ParseAmount(n.String())
	if err != nil {
		return generic.Amount{}, &generic.ParseError{Field: path, Value: n.String(), Err: err}
	}
	return amount, nil
}
