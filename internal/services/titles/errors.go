package titles

import "errors"

var ErrTitleAlreadyExists = errors.New("title with that name and release year already exists")
