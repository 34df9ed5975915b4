package status

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"scape-bot/internal/clock"
	"scape-bot/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Feed holds the latest snapshot and serves the plugin endpoints:
//
//	GET  /ws      websocket; every text message is a JSON snapshot
//	POST /status  JSON snapshot body
//	GET  /status  latest snapshot as JSON (404 when none)
type Feed struct {
	clock    clock.Clock
	maxAge   time.Duration
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	last Snapshot
	have bool

	connMu  sync.Mutex
	conns   map[*websocket.Conn]struct{}
	closing bool
	handles sync.WaitGroup
}

var _ Source = (*Feed)(nil)

// NewFeed returns a Feed whose snapshots expire after maxAge (0 = never).
func NewFeed(c clock.Clock, maxAge time.Duration) *Feed {
	return &Feed{clock: c, maxAge: maxAge}
}

// Update stores s as the latest snapshot.
func (f *Feed) Update(s Snapshot) {
	s.Received = f.clock.Now()
	f.mu.Lock()
	f.last, f.have = s, true
	f.mu.Unlock()
}

// Snapshot returns the latest snapshot if it is fresh.
func (f *Feed) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.have {
		return Snapshot{}, ErrNoSnapshot
	}
	if f.maxAge > 0 && f.clock.Now().Sub(f.last.Received) > f.maxAge {
		return Snapshot{}, fmt.Errorf("%w: last update %s ago", ErrNoSnapshot, f.clock.Now().Sub(f.last.Received))
	}
	return f.last, nil
}

// Handler returns the HTTP routes of the feed.
func (f *Feed) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", f.handleWs).Methods(http.MethodGet)
	r.HandleFunc("/status", f.handlePost).Methods(http.MethodPost)
	r.HandleFunc("/status", f.handleGet).Methods(http.MethodGet)
	return r
}

func (f *Feed) handlePost(w http.ResponseWriter, r *http.Request) {
	var s Snapshot
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, fmt.Sprintf("invalid snapshot: %v", err), http.StatusBadRequest)
		return
	}
	f.Update(s)
	w.WriteHeader(http.StatusNoContent)
}

func (f *Feed) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := f.Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		observability.LogWarn("status: failed to write snapshot: %v", err)
	}
}

func (f *Feed) handleWs(w http.ResponseWriter, r *http.Request) {
	ws, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.LogWarn("status: can't upgrade websocket: %v", err)
		return
	}
	if !f.track(ws) {
		ws.Close()
		return
	}
	defer f.untrack(ws)
	observability.LogInfo("status: plugin connected from %s", r.RemoteAddr)

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if !f.isClosing() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.LogWarn("status: websocket read failed: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			observability.LogWarn("status: dropping invalid snapshot: %v", err)
			_ = ws.WriteMessage(websocket.TextMessage, []byte("invalid snapshot"))
			continue
		}
		f.Update(s)
	}
}

func (f *Feed) track(ws *websocket.Conn) bool {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.closing {
		return false
	}
	if f.conns == nil {
		f.conns = make(map[*websocket.Conn]struct{})
	}
	f.conns[ws] = struct{}{}
	f.handles.Add(1)
	return true
}

func (f *Feed) isClosing() bool {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	return f.closing
}

func (f *Feed) untrack(ws *websocket.Conn) {
	f.connMu.Lock()
	delete(f.conns, ws)
	f.connMu.Unlock()
	ws.Close()
	f.handles.Done()
}

// CloseConnections closes every open websocket and refuses new ones. Their
// handlers return on the next read.
func (f *Feed) CloseConnections() {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	f.closing = true
	for ws := range f.conns {
		ws.Close()
	}
}

// Serve listens on addr until ctx is done.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("status server: %w", err)
	}
	return f.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done. On shutdown it closes the
// websockets, which the HTTP server no longer tracks once upgraded, and
// waits for their handlers.
func (f *Feed) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: f.Handler(), ReadHeaderTimeout: 5 * time.Second}
	srv.RegisterOnShutdown(f.CloseConnections)
	errc := make(chan error, 1)
	go func() {
		observability.LogInfo("status: listening on %s", ln.Addr())
		errc <- srv.Serve(ln)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errc
		// RegisterOnShutdown hooks run in their own goroutine.
		f.CloseConnections()
		f.handles.Wait()
		if err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
		return nil
	}
}
