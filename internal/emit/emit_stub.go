//go:build !windows

package emit

import (
	"fmt"
	"runtime"

	"pks/internal/keys"
	"pks/internal/proc"
)

type stubEmitter struct{}

// New returns a stub emitter for platforms without key injection support.
func New() Emitter {
	return &stubEmitter{}
}

func (e *stubEmitter) Send(h proc.Handle, c keys.Combo) error {
	return fmt.Errorf("key injection not supported on %s", runtime.GOOS)
}
