package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips all markup. User-supplied free text (names, item
// names, locations) passes through here before it reaches the store.
var strictPolicy = bluemonday.StrictPolicy()

func sanitize(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
