package sh

import (
	"bytes"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// 128 + SIGINT(2)
const exitCodeSigInt = 130

var defaultCleanup = &cleanupManager{procs: make(map[*os.Process]struct{})}

// EnableCleanup installs a SIGINT/SIGTERM handler that kills every spawned
// process before exiting. Call once at program startup.
func EnableCleanup() {
	defaultCleanup.enable()
}

// cleanupManager tracks running processes so a signal can tear them down.
type cleanupManager struct {
	mu        sync.Mutex
	enabled   bool
	installed bool
	procs     map[*os.Process]struct{}
}

func (m *cleanupManager) enable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled {
		return
	}

	m.enabled = true

	if !m.installed {
		m.installed = true
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			<-sigCh
			m.killAll()
			os.Exit(exitCodeSigInt)
		}()
	}
}

func (m *cleanupManager) killAll() {
	m.mu.Lock()

	procs := make([]*os.Process, 0, len(m.procs))
	for p := range m.procs {
		procs = append(procs, p)
	}

	m.mu.Unlock()

	for _, p := range procs {
		killTree(p)
	}
}

func (m *cleanupManager) register(p *os.Process) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enabled {
		m.procs[p] = struct{}{}
	}
}

func (m *cleanupManager) unregister(p *os.Process) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.procs, p)
}

// safeBuffer is a buffer safe for concurrent stdout/stderr writes.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}
