package cache

import "errors"

// ErrInvalidConfiguration is returned by [New] when capacity or TTL is not
// strictly positive. Check for it with errors.Is.
var ErrInvalidConfiguration = errors.New("invalid cache configuration")
