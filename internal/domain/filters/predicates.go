package filters

import (
	"cinehub/proj/internal/domain/models"
	"errors"
	"sort"
	"strconv"
	"strings"
)

// All disables the genre and decade predicates.
const All = "all"

var ErrInvalidDecade = errors.New("decade must be \"all\" or a year")

// Predicates are the client-side facets applied to an already fetched collection.
// Zero values disable the corresponding predicate.
type Predicates struct {
	Query     string
	Genre     string
	Decade    *int
	MinRating *float64
}

func NewPredicates(query, genre, decade string, minRating *float64) (Predicates, error) {
	d, err := ParseDecade(decade)
	if err != nil {
		return Predicates{}, err
	}
	if strings.EqualFold(genre, All) {
		genre = ""
	}
	return Predicates{
		Query:     strings.TrimSpace(query),
		Genre:     genre,
		Decade:    d,
		MinRating: minRating,
	}, nil
}

// ParseDecade returns nil for "" and "all".
func ParseDecade(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, All) {
		return nil, nil
	}
	d, err := strconv.Atoi(s)
	if err != nil {
		return nil, ErrInvalidDecade
	}
	return &d, nil
}

// DecadeOf floors a year to the start of its decade.
func DecadeOf(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}

func (p Predicates) Match(t *models.Title) bool {
	if p.Query != "" {
		q := strings.ToLower(p.Query)
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Synopsis), q) {
			return false
		}
	}
	if p.Genre != "" && !strings.EqualFold(t.Genre, p.Genre) {
		return false
	}
	if p.Decade != nil && (t.ReleaseYear < *p.Decade || t.ReleaseYear >= *p.Decade+10) {
		return false
	}
	if p.MinRating != nil && (t.Rating == nil || *t.Rating < *p.MinRating) {
		return false
	}
	return true
}

// Apply returns the titles matching every active predicate in their original order.
// The input slice is never modified.
func Apply(titles []models.Title, p Predicates) []models.Title {
	visible := make([]models.Title, 0, len(titles))
	for i := range titles {
		if p.Match(&titles[i]) {
			visible = append(visible, titles[i])
		}
	}
	return visible
}

// Genres lists distinct non-empty genre labels in first-seen order.
func Genres(titles []models.Title) []string {
	seen := make(map[string]struct{})
	genres := make([]string, 0)
	for _, t := range titles {
		if t.Genre == "" {
			continue
		}
		if _, ok := seen[t.Genre]; ok {
			continue
		}
		seen[t.Genre] = struct{}{}
		genres = append(genres, t.Genre)
	}
	return genres
}

// Decades lists the distinct decade buckets present in titles, newest first.
func Decades(titles []models.Title) []int {
	seen := make(map[int]struct{})
	decades := make([]int, 0)
	for _, t := range titles {
		d := DecadeOf(t.ReleaseYear)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		decades = append(decades, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(decades)))
	return decades
}
