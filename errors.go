package nash

import (
	"github.com/pkg/errors"
)

// ErrMalformedGame is returned (wrapped with context) when a game
// description is structurally invalid. Use errors.Cause to test for it.
var ErrMalformedGame = errors.New("malformed game")
