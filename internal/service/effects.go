package service

import "equipshare-backend/internal/logger"

// effect is one best-effort side step run after a committed state change.
type effect struct {
	name string
	run  func() error
}

// runEffects executes each effect independently. A failure is logged and
// never bubbles up: the primary state change is authoritative, effects are
// advisory.
func runEffects(operation string, effects ...effect) {
	for _, e := range effects {
		if err := e.run(); err != nil {
			logger.Error("Best-effort side effect failed", "operation", operation, "effect", e.name, "error", err)
		}
	}
}
