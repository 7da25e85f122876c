package persistence

import "errors"

var ErrNotMessageAuthor = errors.New("not the message author")
