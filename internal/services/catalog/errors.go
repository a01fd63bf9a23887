package catalog

import "errors"

var ErrTitleNotFound = errors.New("title not found")
