package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/phone-manager/internal/model"
	"github.com/shopspring/decimal"
)

// keyRule is a priority list of synonymous keys plus the sub-keys to try when
// the matched value is a nested object.
type keyRule struct {
	keys    []string
	subKeys []string
}

var (
	amountRule = keyRule{
		keys:    []string{"amount", "transaction_amount", "txn_amount", "debited_amount", "credited_amount", "debit_amount", "credit_amount", "amt"},
		subKeys: []string{"value", "amount", "total"},
	}
	balanceRule = keyRule{
		keys:    []string{"balance", "available_balance", "current_balance", "closing_balance", "account_balance", "avl_bal", "bal"},
		subKeys: []string{"available", "value", "amount", "current"},
	}
	totalDueRule = keyRule{
		keys:    []string{"total_due", "total_amount_due", "statement_balance", "bill_amount"},
		subKeys: []string{"value", "amount"},
	}
	minimumDueRule = keyRule{
		keys:    []string{"minimum_due", "min_due", "minimum_amount_due", "minimum_payment"},
		subKeys: []string{"value", "amount"},
	}
	// Masked forms are preferred over raw numbers when a card is nested.
	cardRule = keyRule{
		keys:    []string{"card_number", "card", "card_no", "account_number", "account_no", "account"},
		subKeys: []string{"masked", "masked_number", "last4", "last_four", "number", "raw"},
	}
	referenceRule = keyRule{
		keys:    []string{"reference_number", "reference", "ref_no", "ref", "transaction_id", "txn_id"},
		subKeys: []string{"masked", "number", "value", "id"},
	}
	debitAccountRule = keyRule{
		keys:    []string{"debit_account", "debited_account", "from_account", "source_account"},
		subKeys: []string{"masked", "number"},
	}
	dueDateRule = keyRule{
		keys:    []string{"due_date", "payment_due_date", "last_date_of_payment"},
		subKeys: []string{"value", "date"},
	}
	merchantRule = keyRule{
		keys:    []string{"merchant", "merchant_name", "payee", "vendor", "store", "beneficiary"},
		subKeys: []string{"name", "value"},
	}
	dateRule = keyRule{
		keys:    []string{"date", "transaction_date", "datetime", "date_time", "timestamp", "time"},
		subKeys: []string{"value", "date"},
	}
	typeRule = keyRule{
		keys:    []string{"type", "transaction_type", "txn_type", "category"},
		subKeys: []string{"value", "name"},
	}
)

// numberPattern finds the first number once whitespace has been removed.
var numberPattern = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)

// resolveFields applies every key rule to a decoded response object.
func resolveFields(obj map[string]any) model.ExtractedFields {
	lower := lowerKeys(obj)

	fields := model.ExtractedFields{
		Amount:          resolveDecimal(lower, amountRule),
		Balance:         resolveDecimal(lower, balanceRule),
		TotalDue:        resolveDecimal(lower, totalDueRule),
		MinimumDue:      resolveDecimal(lower, minimumDueRule),
		CardNumber:      resolveString(lower, cardRule),
		ReferenceNumber: resolveString(lower, referenceRule),
		DebitAccount:    resolveString(lower, debitAccountRule),
		DueDate:         resolveString(lower, dueDateRule),
		Date:            resolveString(lower, dateRule),
	}

	if merchant := resolveString(lower, merchantRule); merchant != nil {
		fields.Merchant = *merchant
	}
	if typ := resolveString(lower, typeRule); typ != nil {
		t := strings.ToLower(*typ)
		fields.Type = &t
	}

	return fields
}

// resolve returns the scalar found under the first present key, descending
// into one level of nesting through the rule's sub-keys.
func resolve(obj map[string]any, rule keyRule) (any, bool) {
	for _, key := range rule.keys {
		v, ok := obj[key]
		if !ok || v == nil {
			continue
		}

		nested, isMap := v.(map[string]any)
		if !isMap {
			return v, true
		}

		sub := lowerKeys(nested)
		for _, sk := range rule.subKeys {
			if sv, ok := sub[sk]; ok && sv != nil {
				if _, deeper := sv.(map[string]any); deeper {
					continue
				}
				return sv, true
			}
		}
	}
	return nil, false
}

func resolveDecimal(obj map[string]any, rule keyRule) decimal.NullDecimal {
	v, ok := resolve(obj, rule)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := ParseDecimal(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func resolveString(obj map[string]any, rule keyRule) *string {
	v, ok := resolve(obj, rule)
	if !ok {
		return nil
	}

	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	case float64, bool:
		s = fmt.Sprint(val)
	default:
		return nil
	}

	if s == "" {
		return nil
	}
	return &s
}

// ParseDecimal coerces a JSON scalar into a decimal, stripping currency
// markers, thousands separators and whitespace from strings.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case json.Number:
		return decimal.NewFromString(val.String())
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		compact := strings.Join(strings.Fields(val), "")
		match := numberPattern.FindString(compact)
		if match == "" {
			return decimal.Decimal{}, fmt.Errorf("no number in %q", val)
		}
		return decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// lowerKeys indexes an object by lower-cased key. An exact lower-case key
// wins over a mixed-case spelling of the same name.
func lowerKeys(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		lk := strings.ToLower(strings.TrimSpace(k))
		if _, exists := out[lk]; !exists || k == lk {
			out[lk] = v
		}
	}
	return out
}
