package state

import (
	"errors"
	"fmt"
	"sync"
)

// ErrStaleEpoch is returned for commands issued against a board that has since
// been cleared.
var ErrStaleEpoch = errors.New("command predates the latest clear")

// SessionStore is the authoritative, append-only log of accepted commands.
// Append, AppendAt, Clear and Snapshot are serialized by one mutex, which makes
// the store the single point that fixes global order.
type SessionStore struct {
	mu       sync.RWMutex
	commands []DrawCommand
	clock    Clock
}

func NewSessionStore() *SessionStore {
	return &SessionStore{commands: make([]DrawCommand, 0, 256)}
}

// Append adds an already validated command and returns its 0-based position.
func (s *SessionStore) Append(cmd DrawCommand) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(cmd)
}

// AppendAt appends cmd only if epoch is not older than the current epoch. The
// check and the append are atomic with respect to Clear.
func (s *SessionStore) AppendAt(epoch uint64, cmd DrawCommand) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock.Stale(epoch) {
		return 0, fmt.Errorf("%w: epoch %d, current %d", ErrStaleEpoch, epoch, s.clock.Now())
	}
	return s.appendLocked(cmd), nil
}

func (s *SessionStore) appendLocked(cmd DrawCommand) uint64 {
	s.commands = append(s.commands, cmd)
	return uint64(len(s.commands) - 1)
}

// Clear empties the board and returns the new epoch.
func (s *SessionStore) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = make([]DrawCommand, 0, 256)
	return s.clock.Tick()
}

// Snapshot returns a consistent copy of the board and its epoch.
func (s *SessionStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cmds := make([]DrawCommand, len(s.commands))
	copy(cmds, s.commands)
	return Snapshot{Commands: cmds, Epoch: s.clock.Now()}
}

func (s *SessionStore) Epoch() uint64 {
	return s.clock.Now()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.commands)
}
