package args

import (
	"errors"
	"fmt"
)

// ErrUnmapped is returned when an enumerated field holds a bit pattern without a defined meaning.
var ErrUnmapped = errors.New("args: unmapped field value")

func unmappedError(field string, value byte) error {
	return fmt.Errorf("%w: %s 0x%02X", ErrUnmapped, field, value)
}
