package eventid

import (
	"strings"

	"github.com/samborkent/uuidv7"
)

// New returns a fresh event identifier: a uuidv7 rendered as 32 lowercase hex
// characters.
func New() string {
	return strings.ToLower(strings.ReplaceAll(uuidv7.New().String(), "-", ""))
}
