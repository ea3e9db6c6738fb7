package mines

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is the only error the engine returns. It is
// reported by [Start] and [GameParams.Generate] when no board can satisfy the
// requested parameters.
var ErrInvalidConfiguration = errors.New("invalid configuration")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
