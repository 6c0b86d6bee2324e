package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/seth-ellison/express-blackjack/internal/config"
	"github.com/seth-ellison/express-blackjack/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // open CORS, matching the original deployment
	},
}

// Server accepts WebSocket connections on /blackjack and feeds decoded
// frames into the registry. Everything outside the registry and tables is a
// thin shell: upgrade, pumps, static files.
type Server struct {
	config   *config.Config
	redis    *redis.Client // nil when disabled
	registry *Registry
	handler  *Handler

	clients   map[string]*Client
	clientsMu sync.RWMutex

	stop chan struct{}
}

// NewServer wires up the server from config. With Redis enabled the
// connection is verified up front; disabled, stats recording is skipped.
func NewServer(cfg *config.Config) (*Server, error) {
	var (
		rdb   *redis.Client
		stats *storage.StatsStore
	)
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		stats = storage.NewStatsStore(rdb)
	}

	s := &Server{
		config:   cfg,
		redis:    rdb,
		registry: NewRegistry(stats),
		clients:  make(map[string]*Client),
		stop:     make(chan struct{}),
	}
	s.handler = NewHandler(s.registry)

	s.registry.StartReaper(
		cfg.Game.ReapIntervalDuration(),
		cfg.Game.AbandonedAfterDuration(),
		s.stop,
	)

	return s, nil
}

// Routes builds the HTTP mux: the WebSocket endpoint, a health check, and
// optionally the static client files.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/blackjack", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}

// Start listens and serves until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	log.Printf("🚀 blackjack server listening on ws://%s/blackjack", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleWebSocket upgrades a connection and starts its pumps. Each socket
// gets a uuid so the rest of the app can refer to it for binding and purges.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := newClient(s, conn)
	s.registerClient(client)
	log.Printf("✅ socket %s connected", client.ID())

	go client.ReadPump()
	go client.WritePump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) registerClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.ID()] = c
}

func (s *Server) unregisterClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[c.ID()]; ok {
		delete(s.clients, c.ID())
		log.Printf("❌ socket %s disconnected", c.ID())
	}
}

// OnlineCount reports the number of connected sockets.
func (s *Server) OnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Registry exposes the session registry, mainly for tests.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Shutdown closes every client connection and the Redis client.
func (s *Server) Shutdown() {
	close(s.stop)

	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clientsMu.Unlock()

	if s.redis != nil {
		_ = s.redis.Close()
	}
	log.Println("server stopped")
}
