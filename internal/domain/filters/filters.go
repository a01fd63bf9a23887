package filters

import (
	"errors"
	"strings"
)

const (
	AscSort  = "ASC"
	DescSort = "DESC"
)

// Filters describes the store-side ordering of a listing query.
type Filters struct {
	Sort         string
	SortSafelist []string
}

func (f *Filters) SortColumn() string {
	s := strings.TrimPrefix(f.Sort, "-")
	for _, safeValue := range f.SortSafelist {
		if strings.EqualFold(s, safeValue) {
			return safeValue
		}
	}
	panic(errors.New("Unknown sort column: " + f.Sort))
}

func (f *Filters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return DescSort
	}
	return AscSort
}
