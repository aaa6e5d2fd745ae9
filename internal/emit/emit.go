// Package emit performs synthetic key injection against a located process.
// The coordinator only depends on the Emitter interface; one implementation
// exists per target platform.
package emit

import (
	"pks/internal/keys"
	"pks/internal/proc"
)

// Emitter sends one logical key press to a target process. A failure is
// returned as an error and is never fatal by itself; the coordinator
// decides what to do with it.
type Emitter interface {
	Send(h proc.Handle, c keys.Combo) error
}
