package runtime

import "sync"

// mutexOrNop wraps a sync.Mutex that is only actually engaged when the
// caller asks for it, mirroring the emitted code's MULTITHREADING knob: by
// default the interpreter (like the generated file) assumes single-threaded
// callers and pays no locking cost, but can be switched to guard every call
// site that consumes or reseeds RNG state (SeedGenerator and MutateSequence).
type mutexOrNop struct {
	mu sync.Mutex
}

func (m *mutexOrNop) Lock(enabled bool) {
	if enabled {
		m.mu.Lock()
	}
}

func (m *mutexOrNop) Unlock(enabled bool) {
	if enabled {
		m.mu.Unlock()
	}
}
