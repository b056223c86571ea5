package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	boardnet "SyncBoard/internal/net"
	"SyncBoard/internal/render"
	"SyncBoard/internal/state"
)

type board struct {
	store *state.SessionStore
	conns *boardnet.ConnectionManager
	url   string
}

func startBoard(t *testing.T) *board {
	logger := zaptest.NewLogger(t)
	store := state.NewSessionStore()
	conns := boardnet.NewConnectionManager(logger, 256, 0, 0)
	router := boardnet.NewRouter(store, state.NewCodec(state.DefaultLimits()), conns, logger)
	srv := httptest.NewServer(boardnet.NewServer(router, store, logger).Handler())
	t.Cleanup(srv.Close)
	return &board{
		store: store,
		conns: conns,
		url:   "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
	}
}

func runClient(t *testing.T, b *board) (*Reconciler, *render.Raster) {
	surface := render.NewRaster(64, 64, white)
	rec := NewReconciler(surface, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, b.url, rec, zaptest.NewLogger(t), Options{InitialReconnect: 10 * time.Millisecond})
	}()
	t.Cleanup(func() {
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	})
	require.Eventually(t, func() bool { return rec.Status() >= Synchronized }, 5*time.Second, 5*time.Millisecond)
	return rec, surface
}

func TestRunConverges(t *testing.T) {
	b := startBoard(t)
	alice, aliceSurface := runClient(t, b)
	bob, bobSurface := runClient(t, b)
	require.Eventually(t, func() bool { return alice.Users() == 2 && bob.Users() == 2 }, 5*time.Second, 5*time.Millisecond)

	for _, c := range strokes() {
		require.NoError(t, alice.Propose(c))
	}
	require.Eventually(t, func() bool {
		return len(bob.Board()) == len(strokes()) && len(alice.Board()) == len(strokes())
	}, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, strokes(), bob.Board())
	// The submitter sees its own strokes once acknowledged, pixel for pixel.
	require.Equal(t, bob.Board(), alice.Board())
	require.Equal(t, bobSurface.Image().Pix, aliceSurface.Image().Pix)
	require.Equal(t, len(strokes()), b.store.Len())

	require.NoError(t, bob.RequestClear())
	require.Eventually(t, func() bool {
		return alice.Epoch() == 1 && bob.Epoch() == 1 && len(bob.Board()) == 0
	}, 5*time.Second, 5*time.Millisecond)
}

func TestRunResnapshotsAfterDrop(t *testing.T) {
	b := startBoard(t)
	rec, _ := runClient(t, b)

	// Change the board behind the participant's back, then kick it from the
	// server side; only a fresh snapshot can bring it up to date.
	b.store.Append(strokes()[0])
	b.store.Append(strokes()[1])
	require.Empty(t, rec.Board())
	for _, p := range b.conns.Participants() {
		b.conns.OnDisconnect(p.ID)
	}

	require.Eventually(t, func() bool {
		return rec.Status() >= Synchronized && len(rec.Board()) == 2
	}, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, strokes()[:2], rec.Board())
}

func TestFetchSnapshot(t *testing.T) {
	b := startBoard(t)
	b.store.Append(strokes()[2])
	b.store.Clear()
	b.store.Append(strokes()[3])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := FetchSnapshot(ctx, b.url, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), snap.Epoch)
	require.Equal(t, strokes()[3:], snap.Commands)
}
