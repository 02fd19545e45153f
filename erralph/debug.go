package erralph

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// DumpChain walks err's wrap chain, printing each layer's type and, for any
// layer that is an *Error, a full field dump via go-spew — useful when a
// reported on_error callback needs to be inspected interactively rather
// than just logged as a one-line message.
func DumpChain(err error) {
	for i := 0; err != nil; err = errors.Unwrap(err) {
		fmt.Printf("[%d] %T: %v\n", i, err, err)
		if e, ok := err.(*Error); ok {
			spew.Dump(e)
		}
		i++
	}
}
