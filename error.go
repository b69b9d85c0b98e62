// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dyn

import (
	"errors"
	"fmt"
)

// ErrNoBinding reports a required Consume (or effect-world Ask) with no
// provider in scope on the current call stack. It signals a missing
// upstream Provide; the package performs no recovery. Match with
// errors.Is.
var ErrNoBinding = errors.New("dyn: no provider in scope")

// noBinding wraps ErrNoBinding with the variable's identity.
func noBinding(c *varCore) error {
	if c.name != "" {
		return fmt.Errorf("%w: %s", ErrNoBinding, c.name)
	}
	return fmt.Errorf("%w: var #%d", ErrNoBinding, c.serial)
}
