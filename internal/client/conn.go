package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	boardnet "SyncBoard/internal/net"
	"SyncBoard/internal/state"
)

const writeWait = 10 * time.Second

type Options struct {
	// InitialReconnect and MaxReconnect bound the exponential reconnect delay.
	InitialReconnect time.Duration
	MaxReconnect     time.Duration
	Dialer           *websocket.Dialer
}

func (o Options) withDefaults() Options {
	if o.InitialReconnect <= 0 {
		o.InitialReconnect = 250 * time.Millisecond
	}
	if o.MaxReconnect <= 0 {
		o.MaxReconnect = 30 * time.Second
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	return o
}

// Run keeps rec connected to the board at url until ctx is cancelled. Every
// connection starts from a fresh snapshot; missed events are never replayed.
func Run(ctx context.Context, url string, rec *Reconciler, logger *zap.Logger, opts Options) error {
	opts = opts.withDefaults()
	logger = logger.Named("conn").With(zap.String("url", url))

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = opts.InitialReconnect
	b.MaxInterval = opts.MaxReconnect
	b.MaxElapsedTime = 0
	for {
		connected, err := session(ctx, url, rec, logger, opts.Dialer)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			b.Reset()
		}
		wait := b.NextBackOff()
		logger.Info("connection lost, retrying", zap.Duration("in", wait), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// session runs one connection and reports whether it was ever established.
func session(ctx context.Context, url string, rec *Reconciler, logger *zap.Logger, dialer *websocket.Dialer) (bool, error) {
	rec.Connecting(nil)
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		rec.Disconnected()
		return false, fmt.Errorf("dial: %w", err)
	}
	defer ws.Close()
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	var wmu sync.Mutex
	rec.Connecting(func(m boardnet.Message) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteJSON(m)
	})
	defer rec.Disconnected()
	logger.Info("connected")

	for {
		var m boardnet.Message
		if err := ws.ReadJSON(&m); err != nil {
			return true, err
		}
		if err := rec.Handle(m); err != nil {
			logger.Debug("ignored message", zap.Stringer("kind", m.Type), zap.Error(err))
		}
	}
}

var errNoSnapshot = errors.New("connection closed before the board state arrived")

// FetchSnapshot connects once, waits for the board state, and disconnects.
func FetchSnapshot(ctx context.Context, url string, dialer *websocket.Dialer) (state.Snapshot, error) {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return state.Snapshot{}, fmt.Errorf("dial: %w", err)
	}
	defer ws.Close()
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	for {
		var m boardnet.Message
		if err := ws.ReadJSON(&m); err != nil {
			return state.Snapshot{}, errors.Join(errNoSnapshot, err)
		}
		if m.Type != boardnet.KindBoardState {
			continue
		}
		cmds, err := m.Commands()
		if err != nil {
			return state.Snapshot{}, err
		}
		return state.Snapshot{Commands: cmds, Epoch: m.EpochOr(0)}, nil
	}
}
