package core

import (
	"sort"
)

// Everything in this file is a pure function of its arguments. Callers may
// memoize results keyed on (transactions, selected month, range); nothing
// here depends on hidden state or "today".

// Totals are the income/expense sums for a set of transactions.
type Totals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

// CategoryAmount is an expense sum for one category.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// TrendRange selects the bucketing window for the income/expense series.
type TrendRange string

const (
	TrendMonth     TrendRange = "month"
	TrendSixMonths TrendRange = "6m"
	TrendYear      TrendRange = "1y"
	TrendAll       TrendRange = "all"
)

// IsValid reports whether r is a known range.
func (r TrendRange) IsValid() bool {
	switch r {
	case TrendMonth, TrendSixMonths, TrendYear, TrendAll:
		return true
	}
	return false
}

// TrendPoint is one chart bucket, keyed by calendar month or year.
type TrendPoint struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
}

// yearRollupThreshold bounds chart density for the "all" range: above this
// many distinct month buckets the series collapses to year buckets.
const yearRollupThreshold = 36

// MonthTransactions selects the transactions dated inside the calendar
// month of ref, newest date first. Order among same-date entries follows
// insertion order (newest prepended first) and is not part of the contract.
func MonthTransactions(ts []Transaction, ref Date) []Transaction {
	key := ref.MonthKey()
	out := make([]Transaction, 0)
	for _, t := range ts {
		if t.Date.MonthKey() == key {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// Summarize sums amounts by type. Balance is income minus expense, exact
// in cents.
func Summarize(ts []Transaction) Totals {
	var tot Totals
	for _, t := range ts {
		switch t.Type {
		case TypeIncome:
			tot.Income.Cents += t.Amount.Cents
		case TypeExpense:
			tot.Expense.Cents += t.Amount.Cents
		}
	}
	tot.Balance = tot.Income.Sub(tot.Expense)
	return tot
}

// CategoryBreakdown sums expense amounts by category, largest first.
// Income transactions are excluded regardless of amount.
func CategoryBreakdown(ts []Transaction) []CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range ts {
		if t.Type != TypeExpense {
			continue
		}
		sums[t.Category] += t.Amount.Cents
	}

	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// LifetimeBalance is the running income-minus-expense total over the whole
// history, independent of goals and of the selected month.
func LifetimeBalance(ts []Transaction) Money {
	return Summarize(ts).Balance
}

// TrendSeries buckets the entire history by month key and emits the chart
// series for the requested range, anchored on the calendar month of
// selected:
//
//   - month: exactly one bucket, the selected month
//   - 6m:  six consecutive buckets ending at the selected month
//   - 1y:  twelve consecutive buckets ending at the selected month
//   - all: every non-empty month bucket in chronological order, collapsed
//     to year buckets when more than 36 distinct months exist
//
// Windowed ranges zero-fill months with no transactions. An unknown range
// yields nil.
func TrendSeries(ts []Transaction, selected Date, r TrendRange) []TrendPoint {
	byMonth := make(map[string]*TrendPoint)
	for _, t := range ts {
		key := t.Date.MonthKey()
		p, ok := byMonth[key]
		if !ok {
			p = &TrendPoint{Key: key, Label: MonthLabel(key)}
			byMonth[key] = p
		}
		switch t.Type {
		case TypeIncome:
			p.Income.Cents += t.Amount.Cents
		case TypeExpense:
			p.Expense.Cents += t.Amount.Cents
		}
	}

	switch r {
	case TrendMonth:
		return monthWindow(byMonth, selected, 1)
	case TrendSixMonths:
		return monthWindow(byMonth, selected, 6)
	case TrendYear:
		return monthWindow(byMonth, selected, 12)
	case TrendAll:
		return fullHistory(byMonth)
	}
	return nil
}

// monthWindow emits n consecutive buckets ending at the selected month,
// oldest first, zero-filling gaps.
func monthWindow(byMonth map[string]*TrendPoint, selected Date, n int) []TrendPoint {
	anchor := selected.StartOfMonth()
	out := make([]TrendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := anchor.AddMonths(-i).MonthKey()
		if p, ok := byMonth[key]; ok {
			out = append(out, *p)
		} else {
			out = append(out, TrendPoint{Key: key, Label: MonthLabel(key)})
		}
	}
	return out
}

// fullHistory emits every non-empty month bucket chronologically, rolling
// up to year buckets past the density threshold.
func fullHistory(byMonth map[string]*TrendPoint) []TrendPoint {
	keys := make([]string, 0, len(byMonth))
	for key := range byMonth {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if len(keys) <= yearRollupThreshold {
		out := make([]TrendPoint, 0, len(keys))
		for _, key := range keys {
			out = append(out, *byMonth[key])
		}
		return out
	}

	byYear := make(map[string]*TrendPoint)
	years := make([]string, 0)
	for _, key := range keys {
		year := key[:4]
		p, ok := byYear[year]
		if !ok {
			p = &TrendPoint{Key: year, Label: year}
			byYear[year] = p
			years = append(years, year)
		}
		p.Income.Cents += byMonth[key].Income.Cents
		p.Expense.Cents += byMonth[key].Expense.Cents
	}

	out := make([]TrendPoint, 0, len(years))
	for _, year := range years {
		out = append(out, *byYear[year])
	}
	return out
}

// GoalProgress is the display-only view of a goal's funding level. The
// stored saved amount is never clamped; only these derived values are.
type GoalProgress struct {
	Ratio     float64 `json:"ratio"`
	Saved     Money   `json:"saved"`
	Remaining Money   `json:"remaining"`
}

// ProgressOf computes the clamped progress for g. Over-funded goals report
// a ratio of 1 and zero remaining; a non-positive target reports zero
// progress.
func ProgressOf(g Goal) GoalProgress {
	if g.Target.Cents <= 0 {
		return GoalProgress{}
	}

	ratio := float64(g.Saved.Cents) / float64(g.Target.Cents)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}

	saved := g.Saved.Cents
	if saved < 0 {
		saved = 0
	}
	if saved > g.Target.Cents {
		saved = g.Target.Cents
	}

	return GoalProgress{
		Ratio:     ratio,
		Saved:     Money{Cents: saved},
		Remaining: Money{Cents: g.Target.Cents - saved},
	}
}
