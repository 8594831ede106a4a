// Package scope models security-scoped access to a sandboxed directory tree.
// On platforms without sandboxing the guard is a no-op; on restrictive
// platforms the host wires in the real acquire/release primitives via
// FuncGuard. Acquisition failure is never fatal to the caller — the workspace
// proceeds with whatever access it has.
package scope

// Guard grants and revokes access to a directory tree. Acquire reports
// whether access was granted; Release must be safe to call for any path,
// including one that was never acquired.
type Guard interface {
	Acquire(path string) bool
	Release(path string)
}

// NoGuard is the guard for platforms without sandboxing.
type NoGuard struct{}

func (NoGuard) Acquire(string) bool { return true }
func (NoGuard) Release(string)      {}

// FuncGuard adapts a pair of callbacks to the Guard interface.
type FuncGuard struct {
	AcquireFn func(path string) bool
	ReleaseFn func(path string)
}

func (g FuncGuard) Acquire(path string) bool {
	if g.AcquireFn == nil {
		return true
	}
	return g.AcquireFn(path)
}

func (g FuncGuard) Release(path string) {
	if g.ReleaseFn != nil {
		g.ReleaseFn(path)
	}
}
