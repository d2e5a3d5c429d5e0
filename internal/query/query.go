// Package query holds the pure catalog stages used by the storefront:
// category filter, text search and sort. Stages never mutate their input.
package query

import (
	"slices"
	"strings"

	"hakey-storefront/internal/domain"
)

// AllCategories is the category value that disables filtering.
const AllCategories = "Todos"

// Sort keys understood by Sort. Unknown keys behave like SortFeatured.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortDiscount  = "discount"
)

// Params selects the pipeline stages applied by Apply.
type Params struct {
	Category string `json:"category"`
	Term     string `json:"q"`
	SortBy   string `json:"sort"`
}

// Apply runs filter, search and sort in that order.
func Apply(games []domain.Game, p Params) []domain.Game {
	category := p.Category
	if category == "" {
		category = AllCategories
	}
	out := FilterByCategory(games, category)
	out = Search(out, p.Term)
	return Sort(out, p.SortBy)
}

// FilterByCategory keeps games whose category matches exactly.
func FilterByCategory(games []domain.Game, category string) []domain.Game {
	if category == AllCategories {
		return games
	}
	out := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if g.Category == category {
			out = append(out, g)
		}
	}
	return out
}

// Search keeps games whose title or description contains term, ignoring case.
func Search(games []domain.Game, term string) []domain.Game {
	if term == "" {
		return games
	}
	needle := strings.ToLower(term)
	out := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if strings.Contains(strings.ToLower(g.Title), needle) ||
			strings.Contains(strings.ToLower(g.Description), needle) {
			out = append(out, g)
		}
	}
	return out
}

// Sort returns a stably sorted copy of games.
func Sort(games []domain.Game, key string) []domain.Game {
	out := slices.Clone(games)
	if out == nil {
		return []domain.Game{}
	}
	slices.SortStableFunc(out, comparator(key))
	return out
}

func comparator(key string) func(a, b domain.Game) int {
	switch key {
	case SortPriceLow:
		return func(a, b domain.Game) int { return compareFloat(a.Price, b.Price) }
	case SortPriceHigh:
		return func(a, b domain.Game) int { return compareFloat(b.Price, a.Price) }
	case SortRating:
		return func(a, b domain.Game) int { return compareFloat(b.Rating, a.Rating) }
	case SortDiscount:
		return func(a, b domain.Game) int { return compareFloat(b.Discount, a.Discount) }
	default:
		return func(a, b domain.Game) int {
			switch {
			case a.Featured == b.Featured:
				return 0
			case a.Featured:
				return -1
			default:
				return 1
			}
		}
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Categories returns AllCategories followed by each distinct category in
// first-seen order.
func Categories(games []domain.Game) []string {
	out := []string{AllCategories}
	seen := make(map[string]struct{}, len(games))
	for _, g := range games {
		if _, ok := seen[g.Category]; ok {
			continue
		}
		seen[g.Category] = struct{}{}
		out = append(out, g.Category)
	}
	return out
}
