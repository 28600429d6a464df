package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/portfolio-pilot/internal/db"
	"github.com/atharvakonge/portfolio-pilot/internal/metrics"
)

const (
	pingInterval  = 30 * time.Second
	writeTimeout  = 10 * time.Second
	reloadTimeout = 5 * time.Second
	subscriberBuf = 8
)

// PortfolioUpdate is pushed to stream clients whenever the portfolio changes
type PortfolioUpdate struct {
	OwnerID   string          `json:"ownerId"`
	Summary   metrics.Summary `json:"summary"`
	Timestamp time.Time       `json:"timestamp"`
}

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, the dashboard may be served elsewhere
	},
}

// Hub fans portfolio summaries out to the websocket clients of each owner
type Hub struct {
	store db.Store
	log   zerolog.Logger

	mu   sync.RWMutex
	subs map[string]map[chan PortfolioUpdate]struct{}
}

var _ Notifier = (*Hub)(nil)

// NewHub creates a hub reading summaries from store
func NewHub(store db.Store, log zerolog.Logger) *Hub {
	return &Hub{
		store: store,
		log:   log,
		subs:  make(map[string]map[chan PortfolioUpdate]struct{}),
	}
}

// Subscribe registers a listener for ownerID. Call cancel to unregister.
func (h *Hub) Subscribe(ownerID string) (<-chan PortfolioUpdate, func()) {
	ch := make(chan PortfolioUpdate, subscriberBuf)

	h.mu.Lock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[chan PortfolioUpdate]struct{})
	}
	h.subs[ownerID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[ownerID], ch)
			if len(h.subs[ownerID]) == 0 {
				delete(h.subs, ownerID)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers returns how many listeners ownerID has
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ownerID])
}

// Snapshot summarises the owner's current portfolio
func (h *Hub) Snapshot(ctx context.Context, ownerID string) (PortfolioUpdate, error) {
	invs, err := h.store.FindAll(ctx, ownerID)
	if err != nil {
		return PortfolioUpdate{}, err
	}
	return PortfolioUpdate{
		OwnerID:   ownerID,
		Summary:   metrics.Summarize(invs),
		Timestamp: time.Now().UTC(),
	}, nil
}

// PortfolioChanged recomputes the owner's summary and publishes it. Slow
// subscribers miss updates rather than block writers.
func (h *Hub) PortfolioChanged(ownerID string) {
	if h.Subscribers(ownerID) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	update, err := h.Snapshot(ctx, ownerID)
	if err != nil {
		h.log.Error().Err(err).Str("owner", ownerID).Msg("Failed to reload portfolio for stream")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ownerID] {
		select {
		case ch <- update:
		default:
			h.log.Warn().Str("owner", ownerID).Msg("Dropped portfolio update for slow client")
		}
	}
}

// HandleWebSocket streams portfolio summaries for the requesting owner
func (h *InvestmentHandler) HandleWebSocket(c *gin.Context) {
	ownerID := h.owner(c)

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	defer conn.Close()

	log := h.Log.With().Str("owner", ownerID).Logger()
	log.Info().Msg("Client connected to portfolio stream")

	updates, cancel := h.Hub.Subscribe(ownerID)
	defer cancel()

	snapshot, err := h.Hub.Snapshot(c.Request.Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load portfolio snapshot")
		return
	}
	if err := writeJSON(conn, snapshot); err != nil {
		log.Debug().Err(err).Msg("WebSocket write error")
		return
	}

	// The client only talks to us to close; reading surfaces that.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Info().Msg("Client disconnected from portfolio stream")
			return

		case update := <-updates:
			if err := writeJSON(conn, update); err != nil {
				log.Debug().Err(err).Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				log.Debug().Err(err).Msg("WebSocket ping error")
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}
