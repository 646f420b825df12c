// Package sanitize validates user supplied node names at the command boundary.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxNameSize is the default limit in bytes.
	DefaultMaxNameSize = 256
	// EnvMaxNameSize is the environment variable to override the default.
	EnvMaxNameSize = "ARBOR_MAX_NAME_SIZE"
)

var (
	ErrEmptyName   = errors.New("name cannot be empty")
	ErrNameTooLong = errors.New("name exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("name contains invalid UTF-8 sequences")
)

// Name cleans a node name by stripping control characters and surrounding
// whitespace, then enforces UTF-8 validity, a size limit and non-emptiness.
func Name(input string) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Names are single-line labels, so newlines and tabs go too.
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input))

	if clean == "" {
		return "", ErrEmptyName
	}

	limit := maxNameSize()
	if len(clean) > limit {
		// Reject rather than truncate so the stored name is exactly what was asked for.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrNameTooLong, len(clean), limit)
	}

	return clean, nil
}

func maxNameSize() int {
	if val := os.Getenv(EnvMaxNameSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxNameSize
}
