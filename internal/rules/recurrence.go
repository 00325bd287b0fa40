// Package rules holds the pure decision logic behind the reconciliation
// passes and the debt actions. Nothing here performs I/O or touches state.
package rules

import (
	"finance-sync-go/internal/calendar"
	"finance-sync-go/internal/models"
)

// SeriesKey identifies which recurring series a transaction belongs to
type SeriesKey func(models.Transaction) string

// DescriptionKey groups recurring transactions by their description.
// Two unrelated series sharing a description collide; callers that need
// stable series identity should supply their own SeriesKey.
func DescriptionKey(t models.Transaction) string {
	return t.Description
}

// Templates returns, per series, the recurring transaction with the latest
// date. Output order follows the first appearance of each series.
func Templates(transactions []models.Transaction, key SeriesKey) []models.Transaction {
	if key == nil {
		key = DescriptionKey
	}

	index := make(map[string]int)
	var templates []models.Transaction
	for _, t := range transactions {
		if !t.IsRecurring {
			continue
		}
		k := key(t)
		i, seen := index[k]
		if !seen {
			index[k] = len(templates)
			templates = append(templates, t)
			continue
		}
		// YYYY-MM-DD strings order chronologically
		if t.Date > templates[i].Date {
			templates[i] = t
		}
	}
	return templates
}

// Materialize returns the transactions that must be created so every
// recurring series has an instance in month. Returned transactions carry no
// id. A series is skipped when month precedes its template's start month or
// when month already holds a transaction of the same series and amount,
// which makes repeated calls for the same month produce nothing new.
func Materialize(transactions []models.Transaction, month calendar.Month, key SeriesKey) []models.Transaction {
	if key == nil {
		key = DescriptionKey
	}

	var out []models.Transaction
	for _, tmpl := range Templates(transactions, key) {
		year, mon, day, err := calendar.Parse(tmpl.Date)
		if err != nil {
			continue
		}
		if month.Before(calendar.Month{Year: year, Month: mon}) {
			continue
		}
		if hasInstance(transactions, tmpl, month, key) {
			continue
		}

		instance := tmpl
		instance.Id = ""
		instance.Status = models.StatusPending
		instance.IsRecurring = true
		instance.GoogleEventId = ""
		instance.Date = month.Date(day)
		out = append(out, instance)
	}
	return out
}

func hasInstance(transactions []models.Transaction, tmpl models.Transaction, month calendar.Month, key SeriesKey) bool {
	k := key(tmpl)
	for _, t := range transactions {
		if month.Contains(t.Date) && key(t) == k && t.Amount.Equal(tmpl.Amount) {
			return true
		}
	}
	return false
}

// InstanceKey identifies one materialized instance for in-flight tracking
func InstanceKey(t models.Transaction, month calendar.Month, key SeriesKey) string {
	if key == nil {
		key = DescriptionKey
	}
	return key(t) + "|" + month.Key() + "|" + t.Amount.String()
}
