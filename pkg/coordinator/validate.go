package coordinator

import (
	"strings"

	"github.com/netdoc/netdoc/pkg/protoerr"
)

// validateName enforces spec.md §4.1's name constraints, applied to
// every name-bearing operation: non-empty, length within limit, no '/'
// and no ".." substring, case-sensitive (i.e. no case folding is done
// anywhere in this package).
func validateName(name string, maxLen int) error {
	if name == "" {
		return protoerr.BadParam("name must not be empty")
	}
	if maxLen > 0 && len(name) > maxLen {
		return protoerr.BadParam("name exceeds maximum length")
	}
	if strings.Contains(name, "/") {
		return protoerr.BadParam("name must not contain '/'")
	}
	if strings.Contains(name, "..") {
		return protoerr.BadParam("name must not contain '..'")
	}
	return nil
}
