// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about clustering runs, frame rendering and animation.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRunHooks(&myRunHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Run().OnStep(ctx, iteration, reseeded, inertia, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Run Hooks
// =============================================================================

// RunHooks receives events from a clustering run.
type RunHooks interface {
	// Run lifecycle
	OnRunStart(ctx context.Context, k, points, iterations int)
	OnRunComplete(ctx context.Context, iterations int, duration time.Duration, err error)

	// OnStep fires after every engine step.
	OnStep(ctx context.Context, iteration, reseeded int, inertia float64, duration time.Duration)
}

// =============================================================================
// Output Hooks
// =============================================================================

// OutputHooks receives events from frame rendering and animation.
type OutputHooks interface {
	// OnFrame records a rendered frame.
	OnFrame(ctx context.Context, iteration int, path string, duration time.Duration, err error)

	// OnAnimate records a GIF assembly attempt.
	OnAnimate(ctx context.Context, frames, skipped int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRunHooks is a no-op implementation of RunHooks.
type NoopRunHooks struct{}

func (NoopRunHooks) OnRunStart(context.Context, int, int, int)                {}
func (NoopRunHooks) OnRunComplete(context.Context, int, time.Duration, error) {}
func (NoopRunHooks) OnStep(context.Context, int, int, float64, time.Duration) {}

// NoopOutputHooks is a no-op implementation of OutputHooks.
type NoopOutputHooks struct{}

func (NoopOutputHooks) OnFrame(context.Context, int, string, time.Duration, error) {}
func (NoopOutputHooks) OnAnimate(context.Context, int, int, time.Duration, error)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	runHooks    RunHooks    = NoopRunHooks{}
	outputHooks OutputHooks = NoopOutputHooks{}
	hooksMu     sync.RWMutex
)

// SetRunHooks registers custom run hooks.
// This should be called once at application startup before any run starts.
func SetRunHooks(h RunHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		runHooks = h
	}
}

// SetOutputHooks registers custom output hooks.
func SetOutputHooks(h OutputHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		outputHooks = h
	}
}

// Run returns the registered run hooks.
func Run() RunHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return runHooks
}

// Output returns the registered output hooks.
func Output() OutputHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return outputHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	runHooks = NoopRunHooks{}
	outputHooks = NoopOutputHooks{}
}
