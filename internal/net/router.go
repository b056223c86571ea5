package net

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"SyncBoard/internal/metrics"
	"SyncBoard/internal/state"
)

var ErrRateLimited = errors.New("participant is drawing too fast")

// Router accepts commands from participants, appends them to the session log
// and fans them out. Appending and queueing happen under one lock, so every
// participant's queue receives events in log order, and a joining participant
// gets its snapshot strictly before any event that follows it.
type Router struct {
	mu     sync.Mutex
	store  *state.SessionStore
	codec  *state.Codec
	conns  *ConnectionManager
	logger *zap.Logger
}

func NewRouter(store *state.SessionStore, codec *state.Codec, conns *ConnectionManager, logger *zap.Logger) *Router {
	return &Router{
		store:  store,
		codec:  codec,
		conns:  conns,
		logger: logger.Named("router"),
	}
}

// Join onboards a new participant: it is sent the current snapshot and only
// then registered for live events.
func (r *Router) Join() *Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.store.Snapshot()
	peer := r.conns.OnConnect(snap.Epoch, BoardStateMessage(snap))
	r.logger.Debug("sent snapshot",
		zap.String("peer", peer.ID),
		zap.Int("commands", len(snap.Commands)),
		zap.Uint64("epoch", snap.Epoch),
	)
	return peer
}

func (r *Router) Leave(peerID string) {
	r.conns.OnDisconnect(peerID)
}

// Submit validates and appends a proposed command, then queues it to every
// participant but the submitter, who gets an ack in the same log position.
// A non-nil epoch is checked against the latest clear. Submissions from ids
// that already left are still accepted.
func (r *Router) Submit(peerID string, raw state.RawCommand, epoch *uint64) (uint64, error) {
	if err := r.admit(peerID); err != nil {
		return 0, err
	}
	cmd, err := r.codec.Validate(raw)
	if err != nil {
		return 0, r.reject(peerID, metrics.ReasonMalformed, err)
	}
	return r.submit(peerID, cmd, epoch)
}

// SubmitPayload decodes a wire payload and submits it.
func (r *Router) SubmitPayload(peerID string, data json.RawMessage, epoch *uint64) (uint64, error) {
	if err := r.admit(peerID); err != nil {
		return 0, err
	}
	cmd, err := r.codec.Decode(data)
	if err != nil {
		return 0, r.reject(peerID, metrics.ReasonMalformed, err)
	}
	return r.submit(peerID, cmd, epoch)
}

// admit spends one token of the submitter's rate limit.
func (r *Router) admit(peerID string) error {
	if peer, ok := r.conns.Lookup(peerID); ok && !peer.Allow() {
		return r.reject(peerID, metrics.ReasonRateLimited, ErrRateLimited)
	}
	return nil
}

func (r *Router) submit(peerID string, cmd state.DrawCommand, epoch *uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var (
		seq uint64
		err error
	)
	if epoch != nil {
		seq, err = r.store.AppendAt(*epoch, cmd)
		if err != nil {
			return 0, r.reject(peerID, metrics.ReasonStaleEpoch, err)
		}
	} else {
		seq = r.store.Append(cmd)
	}
	current := r.store.Epoch()
	r.conns.Broadcast(DrawMessage(cmd, seq, current), peerID)
	if peer, ok := r.conns.Lookup(peerID); ok {
		_ = peer.Send(AckMessage(cmd, seq, current))
	}
	metrics.Accepted.Inc()
	return seq, nil
}

// SubmitClear resets the board and tells everyone, the requester included.
func (r *Router) SubmitClear(peerID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	epoch := r.store.Clear()
	r.conns.Broadcast(ClearMessage(epoch), "")
	metrics.Clears.Inc()
	r.logger.Info("board cleared", zap.String("peer", peerID), zap.Uint64("epoch", epoch))
	return epoch
}

// reject logs the drop and acknowledges it to the submitter if still present.
func (r *Router) reject(peerID, reason string, err error) error {
	metrics.Rejected.WithLabelValues(reason).Inc()
	r.logger.Debug("command rejected", zap.String("peer", peerID), zap.String("reason", reason), zap.Error(err))
	if peer, ok := r.conns.Lookup(peerID); ok {
		_ = peer.Send(RejectMessage(reason))
	}
	return err
}
