package protocol

import "errors"

// ErrUnknown is returned by Parse{TCP,UDP} when the frame's keyword/type
// byte does not match any known message kind.
var ErrUnknown = errors.New("protocol: unknown message")

// ErrMalformed is returned when the keyword/type byte is recognized but the
// frame's structure (missing separators, truncated fields) is invalid.
var ErrMalformed = errors.New("protocol: malformed frame")
