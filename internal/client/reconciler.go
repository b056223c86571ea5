// Package client is the participant side of a board: a local mirror of the
// authority's log and the connection that keeps it up to date.
package client

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	boardnet "SyncBoard/internal/net"
	"SyncBoard/internal/render"
	"SyncBoard/internal/state"
)

var ErrNotSynchronized = errors.New("board not synchronized yet")

// Status is the connection state as the participant sees it.
type Status int

const (
	Disconnected Status = iota
	Connecting
	Synchronized
	Updating
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Synchronized:
		return "synchronized"
	case Updating:
		return "updating"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Outbound delivers messages to the authority.
type Outbound func(boardnet.Message) error

// Reconciler mirrors the authority's board for one participant. It renders
// only what the authority sent: local proposals are never drawn until they
// come back acknowledged, in log order. Messages from the authority are
// applied from a single goroutine.
type Reconciler struct {
	mu      sync.Mutex
	board   []state.DrawCommand
	clock   state.Clock
	users   int
	status  Status
	surface render.Surface
	send    Outbound
	logger  *zap.Logger

	// OnChange, if set, is called after every state transition or user count
	// update, outside the reconciler's lock.
	OnChange func(Status, int)
}

func NewReconciler(surface render.Surface, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		surface: surface,
		logger:  logger.Named("reconciler"),
	}
}

// Connecting records that a new connection attempt is underway; draws stay
// locked until its snapshot arrives.
func (r *Reconciler) Connecting(send Outbound) {
	r.transition(Connecting, func() { r.send = send })
}

// Disconnected drops the outbound channel. The local board is kept on screen
// until the next snapshot replaces it.
func (r *Reconciler) Disconnected() {
	r.transition(Disconnected, func() { r.send = nil })
}

// Handle dispatches one message from the authority.
func (r *Reconciler) Handle(m boardnet.Message) error {
	switch m.Type {
	case boardnet.KindBoardState:
		cmds, err := m.Commands()
		if err != nil {
			return err
		}
		r.ApplySnapshot(cmds, m.EpochOr(0))
	case boardnet.KindDraw, boardnet.KindAck:
		cmd, err := m.Command()
		if err != nil {
			return err
		}
		r.ApplyDraw(cmd, m.Epoch)
	case boardnet.KindClear:
		r.ApplyClear(m.Epoch)
	case boardnet.KindCurrentUsers:
		n, err := m.Users()
		if err != nil {
			return err
		}
		r.setUsers(n)
	case boardnet.KindReject:
		r.logger.Debug("proposal rejected", zap.String("reason", m.Reason))
	default:
		return fmt.Errorf("unknown message kind %q", m.Type)
	}
	return nil
}

// ApplySnapshot replaces the local board wholesale and redraws it.
func (r *Reconciler) ApplySnapshot(cmds []state.DrawCommand, epoch uint64) {
	r.transition(Synchronized, func() {
		r.board = append(make([]state.DrawCommand, 0, len(cmds)), cmds...)
		// A snapshot is authoritative even across a server restart.
		r.clock.Reset(epoch)
		render.Replay(r.surface, r.board)
		r.logger.Debug("applied snapshot", zap.Int("commands", len(cmds)), zap.Uint64("epoch", epoch))
	})
}

// ApplyDraw appends one accepted command and draws just that segment on top,
// passing through Updating while it does. Commands tagged with an epoch older
// than the local one are dropped.
func (r *Reconciler) ApplyDraw(cmd state.DrawCommand, epoch *uint64) {
	r.mu.Lock()
	if r.status < Synchronized || (epoch != nil && r.clock.Stale(*epoch)) {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.transition(Updating, func() {
		r.board = append(r.board, cmd)
		r.surface.DrawLine(cmd)
	})
	r.transition(Synchronized, func() {})
}

// ApplyClear empties the local board and wipes the surface.
func (r *Reconciler) ApplyClear(epoch *uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status < Synchronized {
		return
	}
	if epoch != nil {
		r.clock.Observe(*epoch)
	} else {
		r.clock.Tick()
	}
	r.board = nil
	r.surface.Clear()
}

// Resize re-renders the whole local board for new surface dimensions.
func (r *Reconciler) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.surface.Reshape(width, height)
	render.Replay(r.surface, r.board)
}

// Propose sends a segment to the authority. Nothing is drawn until the
// authority acknowledges it.
func (r *Reconciler) Propose(cmd state.DrawCommand) error {
	r.mu.Lock()
	send, epoch, err := r.outboundLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return send(boardnet.ProposeMessage(cmd, epoch))
}

// RequestClear asks the authority to clear the board for everyone.
func (r *Reconciler) RequestClear() error {
	r.mu.Lock()
	send, _, err := r.outboundLocked()
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return send(boardnet.ClearRequest())
}

func (r *Reconciler) outboundLocked() (Outbound, uint64, error) {
	if r.status < Synchronized || r.send == nil {
		return nil, 0, ErrNotSynchronized
	}
	return r.send, r.clock.Now(), nil
}

// Board returns a copy of the local board.
func (r *Reconciler) Board() []state.DrawCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]state.DrawCommand(nil), r.board...)
}

func (r *Reconciler) Epoch() uint64 {
	return r.clock.Now()
}

func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Reconciler) Users() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users
}

func (r *Reconciler) setUsers(n int) {
	r.transition(-1, func() { r.users = n })
}

// transition runs fn under the lock, moves to status unless it is negative,
// and reports the change.
func (r *Reconciler) transition(status Status, fn func()) {
	r.mu.Lock()
	fn()
	if status >= 0 {
		r.status = status
	}
	st, users, notify := r.status, r.users, r.OnChange
	r.mu.Unlock()
	if notify != nil {
		notify(st, users)
	}
}
