package repository

import "errors"

// ErrStaleStatus is returned by compare-and-set updates when the stored record
// changed after the caller read it
var ErrStaleStatus = errors.New("stored record changed since it was read")
