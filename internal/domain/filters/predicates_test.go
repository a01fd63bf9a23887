package filters

import (
	"cinehub/proj/internal/domain/models"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleTitles() []models.Title {
	return []models.Title{
		{ID: "1", Name: "Nope", Genre: "Horror", ReleaseYear: 2019},
		{ID: "2", Name: "Heat", Genre: "Action", ReleaseYear: 1995},
		{ID: "3", Name: "Hype", Genre: "Action", ReleaseYear: 2021},
	}
}

func names(titles []models.Title) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		out = append(out, t.Name)
	}
	return out
}

func TestApply(t *testing.T) {
	titles := sampleTitles()
	testCases := []struct {
		name     string
		query    string
		genre    string
		decade   string
		rating   *float64
		expected []string
	}{
		{name: "query matches name case-insensitively", query: "he", genre: "all", decade: "all", expected: []string{"Heat"}},
		{name: "no predicates", genre: "all", decade: "all", expected: []string{"Nope", "Heat", "Hype"}},
		{name: "empty genre and decade disable", expected: []string{"Nope", "Heat", "Hype"}},
		{name: "genre equality ignores case", genre: "action", expected: []string{"Heat", "Hype"}},
		{name: "decade bucket", decade: "2010", expected: []string{"Nope"}},
		{name: "predicates are combined", genre: "Action", decade: "2020", expected: []string{"Hype"}},
		{name: "no match", query: "zzz", expected: []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPredicates(tc.query, tc.genre, tc.decade, tc.rating)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, names(Apply(titles, p)))
		})
	}
}

func TestApplyQueryMatchesSynopsis(t *testing.T) {
	titles := []models.Title{
		{Name: "Alien", Synopsis: "In space no one can hear you SCREAM"},
		{Name: "Up", Synopsis: "A balloon adventure"},
	}
	p, err := NewPredicates("scream", All, All, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alien"}, names(Apply(titles, p)))
}

func TestApplyEmptyGenre(t *testing.T) {
	titles := []models.Title{{Name: "Untagged"}, {Name: "Tagged", Genre: "Drama"}}

	p, err := NewPredicates("", "Drama", All, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tagged"}, names(Apply(titles, p)))

	p, err = NewPredicates("", All, All, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Untagged", "Tagged"}, names(Apply(titles, p)))
}

func TestApplyMinRating(t *testing.T) {
	titles := []models.Title{
		{Name: "Unrated"},
		{Name: "Low", Rating: ptr(4.0)},
		{Name: "High", Rating: ptr(8.5)},
	}
	p, err := NewPredicates("", All, All, ptr(5.0))
	require.NoError(t, err)
	assert.Equal(t, []string{"High"}, names(Apply(titles, p)))
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	titles := sampleTitles()
	before := names(titles)
	p, err := NewPredicates("nope", All, All, nil)
	require.NoError(t, err)
	visible := Apply(titles, p)
	require.Len(t, visible, 1)
	visible[0].Name = "changed"
	assert.Equal(t, before, names(titles))
}

func TestDecadeBucketing(t *testing.T) {
	title := models.Title{ReleaseYear: 1994}
	nineties, err := NewPredicates("", All, "1990", nil)
	require.NoError(t, err)
	noughties, err := NewPredicates("", All, "2000", nil)
	require.NoError(t, err)
	assert.True(t, nineties.Match(&title))
	assert.False(t, noughties.Match(&title))
}

func TestParseDecade(t *testing.T) {
	d, err := ParseDecade("all")
	assert.NoError(t, err)
	assert.Nil(t, d)
	d, err = ParseDecade("ALL")
	assert.NoError(t, err)
	assert.Nil(t, d)
	d, err = ParseDecade("")
	assert.NoError(t, err)
	assert.Nil(t, d)
	d, err = ParseDecade("1980")
	assert.NoError(t, err)
	assert.Equal(t, 1980, *d)
	_, err = ParseDecade("eighties")
	assert.ErrorIs(t, err, ErrInvalidDecade)
}

func TestDecadeOf(t *testing.T) {
	assert.Equal(t, 1990, DecadeOf(1994))
	assert.Equal(t, 2000, DecadeOf(2000))
	assert.Equal(t, 2000, DecadeOf(2009))
	assert.Equal(t, 0, DecadeOf(7))
	assert.Equal(t, -10, DecadeOf(-3))
}

func TestGenresAndDecades(t *testing.T) {
	titles := []models.Title{
		{Genre: "Drama", ReleaseYear: 1994},
		{Genre: "Action", ReleaseYear: 2021},
		{Genre: "", ReleaseYear: 1999},
		{Genre: "Drama", ReleaseYear: 2003},
	}
	assert.Equal(t, []string{"Drama", "Action"}, Genres(titles))
	assert.Equal(t, []int{2020, 2000, 1990}, Decades(titles))
	assert.Empty(t, Genres(nil))
	assert.Empty(t, Decades(nil))
}

func TestSortColumn(t *testing.T) {
	f := Filters{Sort: "-Rating", SortSafelist: []string{"release_year", "rating"}}
	assert.Equal(t, "rating", f.SortColumn())
	assert.Equal(t, DescSort, f.SortDirection())

	f.Sort = "release_year"
	assert.Equal(t, AscSort, f.SortDirection())

	f.Sort = "name; DROP TABLE titles"
	assert.Panics(t, func() { f.SortColumn() })
}

func genTitle() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("Heat", "Nope", "Hype", "Alien", "Up"),
		gen.OneConstOf("", "Drama", "Action", "horror", "Comedy"),
		gen.IntRange(1950, 2030),
	).Map(func(values []interface{}) models.Title {
		return models.Title{
			Name:        values[0].(string),
			Genre:       values[1].(string),
			ReleaseYear: values[2].(int),
		}
	})
}

func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("no-op predicates return the input", prop.ForAll(
		func(titles []models.Title) bool {
			p, err := NewPredicates("", All, All, nil)
			if err != nil {
				return false
			}
			visible := Apply(titles, p)
			if len(visible) != len(titles) {
				return false
			}
			for i := range titles {
				if visible[i].Name != titles[i].Name || visible[i].ReleaseYear != titles[i].ReleaseYear {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genTitle()),
	))

	properties.Property("result is the ordered subsequence satisfying every predicate", prop.ForAll(
		func(titles []models.Title, query, genre string, decade int) bool {
			d := DecadeOf(decade)
			p := Predicates{Query: query, Genre: genre, Decade: &d}
			visible := Apply(titles, p)
			j := 0
			for i := range titles {
				if p.Match(&titles[i]) {
					if j >= len(visible) || visible[j].Name != titles[i].Name || visible[j].ReleaseYear != titles[i].ReleaseYear {
						return false
					}
					j++
				}
			}
			return j == len(visible)
		},
		gen.SliceOf(genTitle()),
		gen.OneConstOf("", "e", "HE", "up"),
		gen.OneConstOf("", "drama", "Action"),
		gen.IntRange(1950, 2030),
	))

	properties.Property("decade match is the half-open bucket", prop.ForAll(
		func(year, decade int) bool {
			d := DecadeOf(decade)
			p := Predicates{Decade: &d}
			title := models.Title{ReleaseYear: year}
			return p.Match(&title) == (year >= d && year < d+10)
		},
		gen.IntRange(1900, 2100),
		gen.IntRange(1900, 2100),
	))

	properties.TestingRun(t)
}
