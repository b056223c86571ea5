package net

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"SyncBoard/internal/metrics"
)

var (
	ErrPeerClosed = errors.New("peer closed")
	ErrQueueFull  = errors.New("peer outbound queue full")
)

// Participant is the identity of one connected client.
type Participant struct {
	ID            string `json:"id"`
	JoinedAtEpoch uint64 `json:"joinedAtEpoch"`
}

// Peer is a connected participant together with its outbound queue. Sends
// never block: a participant that cannot keep up is closed and expected to
// reconnect for a fresh snapshot.
type Peer struct {
	Participant

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
}

func newPeer(p Participant, queue int, limiter *rate.Limiter) *Peer {
	return &Peer{
		Participant: p,
		send:        make(chan Message, queue),
		done:        make(chan struct{}),
		limiter:     limiter,
	}
}

// Send enqueues m for delivery.
func (p *Peer) Send(m Message) error {
	select {
	case <-p.done:
		return ErrPeerClosed
	default:
	}
	select {
	case p.send <- m:
		return nil
	default:
		p.Close()
		return ErrQueueFull
	}
}

// Outbox yields queued messages in the order they were sent.
func (p *Peer) Outbox() <-chan Message { return p.send }

// Done is closed once the peer is closed.
func (p *Peer) Done() <-chan struct{} { return p.done }

func (p *Peer) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// Allow reports whether the peer may submit another command now.
func (p *Peer) Allow() bool {
	return p.limiter == nil || p.limiter.Allow()
}

// ConnectionManager tracks the connected participants. Every connect and
// disconnect broadcasts the new participant count to everyone.
type ConnectionManager struct {
	peers     map[string]*Peer
	mu        sync.RWMutex
	queueSize int
	limit     rate.Limit
	burst     int
	logger    *zap.Logger
}

// NewConnectionManager creates a manager whose peers buffer up to queueSize
// outbound messages. A zero limit disables per-peer rate limiting.
func NewConnectionManager(logger *zap.Logger, queueSize int, limit rate.Limit, burst int) *ConnectionManager {
	if queueSize < 1 {
		queueSize = 1
	}
	return &ConnectionManager{
		peers:     make(map[string]*Peer),
		queueSize: queueSize,
		limit:     limit,
		burst:     burst,
		logger:    logger.Named("connections"),
	}
}

// OnConnect registers a new participant. The welcome messages are queued to
// it before it becomes visible to any broadcast.
func (cm *ConnectionManager) OnConnect(epoch uint64, welcome ...Message) *Peer {
	var limiter *rate.Limiter
	if cm.limit > 0 {
		limiter = rate.NewLimiter(cm.limit, cm.burst)
	}
	peer := newPeer(Participant{ID: uuid.NewString(), JoinedAtEpoch: epoch}, cm.queueSize, limiter)
	for _, m := range welcome {
		_ = peer.Send(m)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.peers[peer.ID] = peer
	cm.logger.Info("participant connected",
		zap.String("peer", peer.ID),
		zap.Uint64("epoch", epoch),
		zap.Int("active", len(cm.peers)),
	)
	cm.broadcastCountLocked()
	return peer
}

// OnDisconnect forgets a participant. Unknown ids are ignored.
func (cm *ConnectionManager) OnDisconnect(id string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	peer, ok := cm.peers[id]
	if !ok {
		return
	}
	delete(cm.peers, id)
	peer.Close()
	cm.logger.Info("participant disconnected", zap.String("peer", id), zap.Int("active", len(cm.peers)))
	cm.broadcastCountLocked()
}

func (cm *ConnectionManager) ActiveCount() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.peers)
}

// Participants lists everyone currently connected, ordered by id.
func (cm *ConnectionManager) Participants() []Participant {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	out := make([]Participant, 0, len(cm.peers))
	for _, p := range cm.peers {
		out = append(out, p.Participant)
	}
	slices.SortFunc(out, func(a, b Participant) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Lookup returns the peer registered under id.
func (cm *ConnectionManager) Lookup(id string) (*Peer, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	p, ok := cm.peers[id]
	return p, ok
}

// Broadcast queues m to every peer except exclude. Delivery to one peer never
// affects delivery to another.
func (cm *ConnectionManager) Broadcast(m Message, exclude string) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	cm.broadcastLocked(m, exclude)
}

func (cm *ConnectionManager) broadcastCountLocked() {
	metrics.Participants.Set(float64(len(cm.peers)))
	cm.broadcastLocked(UsersMessage(len(cm.peers)), "")
}

func (cm *ConnectionManager) broadcastLocked(m Message, exclude string) {
	for id, peer := range cm.peers {
		if id == exclude {
			continue
		}
		if err := peer.Send(m); errors.Is(err, ErrQueueFull) {
			metrics.Dropped.Inc()
			cm.logger.Warn("dropping slow participant", zap.String("peer", id), zap.Stringer("kind", m.Type))
		}
	}
}
