//go:build !windows

package proc

import (
	"context"
	"fmt"
	"runtime"
)

type stubLocator struct{}

// New returns a stub locator for platforms without process lookup support.
func New() Locator {
	return &stubLocator{}
}

func (l *stubLocator) Locate(ctx context.Context, name string) (Handle, error) {
	return Handle{}, fmt.Errorf("process location not supported on %s", runtime.GOOS)
}

func (l *stubLocator) Alive(h Handle) bool {
	return false
}
