package models

import "errors"

// ErrNotFound is returned by stores when the addressed document does not exist.
var ErrNotFound = errors.New("document not found")
