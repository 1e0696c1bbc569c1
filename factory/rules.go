/*
Package factory converts declarative rules files into vip.RuleSet values.

PURPOSE:
  The reclassification table and the ignored-transaction list change more
  often than the code does. Keeping them in a file lets the merchant add a
  customer or an exception without a rebuild.

FILE FORMATS:
  .yaml / .yml  parsed with gopkg.in/yaml.v3
  .json         parsed with encoding/json
  Unknown fields are rejected in both, so a typo ("exeptions") fails loudly
  instead of silently producing an "all" policy.

SCHEMA (YAML):
  currency: "đ"
  ignored_transactions:
    - 9310deae-d8f0-48c4-8dd0-b8031e44886d
  policies:
    - customer: Kudo
      mode: all-except
      exceptions:
        - item: Phở bò
          date: "12-03"        # MM-DD, optional
        - item: Bánh ướt gà xé
    - customer: Tùng
      mode: all

DEFAULTS:
  - currency: vip.DefaultCurrency
  - policies: none (an empty table reclassifies nothing)

SEE ALSO:
  - vip/policies.go: RuleSet, PolicyTable and the built-in table
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/warp/vip-ledger/generic"
	"github.com/warp/vip-ledger/vip"
)

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

type RulesFile struct {
	Currency            string       `json:"currency,omitempty" yaml:"currency,omitempty"`
	IgnoredTransactions []string     `json:"ignored_transactions,omitempty" yaml:"ignored_transactions,omitempty"`
	Policies            []PolicyFile `json:"policies" yaml:"policies"`
}

type PolicyFile struct {
	Customer   string          `json:"customer" yaml:"customer"`
	Mode       string          `json:"mode" yaml:"mode"`
	Exceptions []ExceptionFile `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
}

type ExceptionFile struct {
	Item string `json:"item" yaml:"item"`
	Date string `json:"date,omitempty" yaml:"date,omitempty"`
}

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension; anything but .json is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// =============================================================================
// LOADING
// =============================================================================

// LoadRules reads and converts a rules file.
func LoadRules(path string) (vip.RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return vip.RuleSet{}, fmt.Errorf("reading rules %s: %w", path, err)
	}
	rules, err := ParseRules(raw, FormatFor(path))
	if err != nil {
		return vip.RuleSet{}, fmt.Errorf("rules %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes raw rules in the given format and validates them.
func ParseRules(raw []byte, format Format) (vip.RuleSet, error) {
	var rf RulesFile
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rf); err != nil {
			return vip.RuleSet{}, fmt.Errorf("parsing rules JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
			return vip.RuleSet{}, fmt.Errorf("parsing rules YAML: %w", err)
		}
	default:
		return vip.RuleSet{}, fmt.Errorf("unknown rules format %q", format)
	}
	return FromFile(rf)
}

// FromFile converts the file schema to a RuleSet.
func FromFile(rf RulesFile) (vip.RuleSet, error) {
	rules := vip.RuleSet{
		Currency:            rf.Currency,
		IgnoredTransactions: rf.IgnoredTransactions,
		Policies:            make(vip.PolicyTable, 0, len(rf.Policies)),
	}
	if rules.Currency == "" {
		rules.Currency = vip.DefaultCurrency
	}

	for _, pf := range rf.Policies {
		policy := vip.Policy{
			Customer: pf.Customer,
			Mode:     vip.Mode(strings.TrimSpace(pf.Mode)),
		}
		for _, ef := range pf.Exceptions {
			exception, err := parseException(ef)
			if err != nil {
				return vip.RuleSet{}, fmt.Errorf("policy %q: %w", pf.Customer, err)
			}
			policy.Exceptions = append(policy.Exceptions, exception)
		}
		rules.Policies = append(rules.Policies, policy)
	}

	if err := rules.Policies.Validate(); err != nil {
		return vip.RuleSet{}, err
	}
	return rules, nil
}

func parseException(ef ExceptionFile) (vip.Exception, error) {
	exception := vip.Exception{Item: ef.Item}
	if ef.Date == "" {
		return exception, nil
	}
	md, err := generic.ParseMonthDay(ef.Date)
	if err != nil {
		return vip.Exception{}, fmt.Errorf("exception %q: %w", ef.Item, err)
	}
	exception.Date = &md
	return exception, nil
}
