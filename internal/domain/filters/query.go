package filters

// TitleSortSafelist holds the columns a title listing may be ordered by.
var TitleSortSafelist = []string{"release_year", "rating", "name", "created_at"}

// TitleQuery is a page-specific store query descriptor.
type TitleQuery struct {
	Filters
	// RatedOnly excludes titles without a rating.
	RatedOnly bool
	// Limit of 0 means no limit.
	Limit int
	// GenreContains keeps titles whose genre contains any of the substrings, ignoring case.
	GenreContains []string
}

func AllTitles() TitleQuery {
	return TitleQuery{
		Filters: Filters{Sort: "-release_year", SortSafelist: TitleSortSafelist},
	}
}

func TopRated(limit int) TitleQuery {
	return TitleQuery{
		Filters:   Filters{Sort: "-rating", SortSafelist: TitleSortSafelist},
		RatedOnly: true,
		Limit:     limit,
	}
}

// TopRatedSeries approximates series by a genre allow-list.
func TopRatedSeries(limit int, genres []string) TitleQuery {
	q := TopRated(limit)
	q.GenreContains = genres
	return q
}
