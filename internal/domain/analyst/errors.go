package analyst

import "errors"

// ErrNotFound is returned by repositories when no analysis matches.
var ErrNotFound = errors.New("analysis not found")
