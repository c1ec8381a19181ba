package coordinator

import (
	"errors"
	"fmt"

	"github.com/netdoc/netdoc/pkg/wire"
)

var errHandlerPanic = errors.New("internal error handling request")

func errUnknownType(t wire.Type) error {
	return fmt.Errorf("unrecognized request type %q", t)
}
