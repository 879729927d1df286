//go:build js

package main

import (
	"context"

	"github.com/taigrr/globe/pkg/config"
)

// The browser has no terminal; the root command opens the canvas instead.
func runTerminal(ctx context.Context, c config.Config) error {
	return runWindow(ctx, c)
}
