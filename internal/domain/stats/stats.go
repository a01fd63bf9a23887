package stats

import (
	"cinehub/proj/internal/domain/models"
	"strconv"
)

const PodiumSize = 3

func Count[T any](items []T) int {
	return len(items)
}

// Sum totals field over items, counting missing values as zero.
func Sum[T any](items []T, field func(T) *float64) float64 {
	var total float64
	for _, item := range items {
		if v := field(item); v != nil {
			total += *v
		}
	}
	return total
}

// Average is Sum divided by the number of items, or 0 for an empty collection.
// Items with a missing value still count towards the divisor.
func Average[T any](items []T, field func(T) *float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return Sum(items, field) / float64(len(items))
}

func Rating(t models.Title) *float64 { return t.Rating }

func AmountPaid(p models.PurchaseRecord) *float64 { return p.AmountPaid }

// Ordinal renders n with its English suffix: 1st, 2nd, 11th, 23rd.
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// RankAt labels the entry at index i of a collection that is already ordered by rating.
// No sorting happens here, so a wrongly ordered input gets wrong labels.
func RankAt(i int) models.Rank {
	position := i + 1
	return models.Rank{
		Position: position,
		Label:    Ordinal(position),
		Podium:   i < PodiumSize,
	}
}

func Ranks(n int) []models.Rank {
	ranks := make([]models.Rank, n)
	for i := range ranks {
		ranks[i] = RankAt(i)
	}
	return ranks
}
