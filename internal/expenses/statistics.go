package expenses

import "household-expenses/internal/models"

// CategoryTotal is the spending of one category.
type CategoryTotal struct {
	Category   models.Category
	Total      float64
	Count      int
	Percentage float64
}

// Summary totals a set of listed expenses.
type Summary struct {
	Total      float64
	Categories []CategoryTotal
}

// Summarize adds up records per category. Known categories come first in
// their usual order, then any others in the order they appear.
func Summarize(records []models.DisplayRecord) Summary {
	byCategory := make(map[models.Category]*CategoryTotal)
	var order []models.Category
	for _, c := range models.Categories {
		byCategory[c] = &CategoryTotal{Category: c}
		order = append(order, c)
	}

	var sum Summary
	for _, r := range records {
		ct, ok := byCategory[r.Category]
		if !ok {
			ct = &CategoryTotal{Category: r.Category}
			byCategory[r.Category] = ct
			order = append(order, r.Category)
		}
		ct.Total += r.TotalValue
		ct.Count++
		sum.Total += r.TotalValue
	}

	// Calculate percentages, skipping empty categories
	for _, c := range order {
		ct := byCategory[c]
		if ct.Count == 0 {
			continue
		}
		if sum.Total > 0 {
			ct.Percentage = (ct.Total / sum.Total) * 100
		}
		sum.Categories = append(sum.Categories, *ct)
	}
	return sum
}
