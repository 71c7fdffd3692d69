// Package process terminates browser process trees left behind by rod.
package process

import "errors"

// ErrInvalidPID rejects PIDs that would address the caller's own group.
var ErrInvalidPID = errors.New("invalid pid")
