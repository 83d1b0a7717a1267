//go:build tools

// Package tools pins tool dependencies invoked through go generate (mockgen)
// so go.mod and go.sum track them.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
