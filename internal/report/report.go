// Package report summarizes fetched ledger entries for display.
package report

import (
	"sort"
	"strings"

	"financial-app/internal/models"

	"github.com/shopspring/decimal"
)

// CategoryItem is the spending of one category.
type CategoryItem struct {
	Category   string
	Total      decimal.Decimal
	Count      int
	Percentage float64
}

// Summary aggregates a list of transactions.
type Summary struct {
	Income     decimal.Decimal
	Spent      decimal.Decimal
	Net        decimal.Decimal
	Categories []CategoryItem
}

// Summarize totals credits and debits and breaks debits down by category,
// largest first.
func Summarize(txns []models.Transaction) Summary {
	var s Summary
	byCategory := make(map[string]*CategoryItem)

	for _, t := range txns {
		if t.IsCredit() {
			s.Income = s.Income.Add(t.Amount)
			continue
		}
		s.Spent = s.Spent.Add(t.Amount)

		cat := strings.ToLower(strings.TrimSpace(t.Category))
		if cat == "" {
			cat = "other"
		}
		item, ok := byCategory[cat]
		if !ok {
			item = &CategoryItem{Category: cat}
			byCategory[cat] = item
		}
		item.Total = item.Total.Add(t.Amount)
		item.Count++
	}
	s.Net = s.Income.Sub(s.Spent)

	s.Categories = make([]CategoryItem, 0, len(byCategory))
	for _, item := range byCategory {
		if s.Spent.IsPositive() {
			item.Percentage = item.Total.Div(s.Spent).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		s.Categories = append(s.Categories, *item)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if c := s.Categories[i].Total.Cmp(s.Categories[j].Total); c != 0 {
			return c > 0
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	return s
}

// TotalBalance sums balances per currency.
func TotalBalance(accounts []models.Account) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, a := range accounts {
		totals[a.Currency] = totals[a.Currency].Add(a.Balance)
	}
	return totals
}
