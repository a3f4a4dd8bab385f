package service

import "errors"

// ErrArticleStoreUnavailable marks a run that could not read its input at all.
// No partial result is reported when it is returned.
var ErrArticleStoreUnavailable = errors.New("article store unavailable")
