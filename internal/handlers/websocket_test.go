package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-pilot/internal/db"
)

func TestHub_PublishesToOwnerSubscribers(t *testing.T) {
	store := db.NewMemoryStore()
	hub := NewHub(store, zerolog.Nop())

	mine, cancelMine := hub.Subscribe("default")
	defer cancelMine()
	theirs, cancelTheirs := hub.Subscribe("alice")
	defer cancelTheirs()

	db.CreateTestInvestment(t, store, "default", db.SampleInvestment("AAPL", 10, 100, 150))
	hub.PortfolioChanged("default")

	select {
	case update := <-mine:
		assert.Equal(t, "default", update.OwnerID)
		assert.Equal(t, 1, update.Summary.Count)
		assert.Equal(t, 500.0, update.Summary.PortfolioProfit)
	case <-time.After(time.Second):
		t.Fatal("expected a portfolio update")
	}

	select {
	case <-theirs:
		t.Fatal("other owners must not be notified")
	default:
	}
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	hub := NewHub(db.NewMemoryStore(), zerolog.Nop())

	_, cancel := hub.Subscribe("default")
	assert.Equal(t, 1, hub.Subscribers("default"))

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers("default"))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(db.NewMemoryStore(), zerolog.Nop())
	_, cancel := hub.Subscribe("default")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuf*3; i++ {
			hub.PortfolioChanged("default")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
}

func TestHub_Snapshot(t *testing.T) {
	store := db.NewMemoryStore()
	hub := NewHub(store, zerolog.Nop())
	db.CreateTestInvestment(t, store, "default", db.SampleInvestment("AAPL", 10, 100, 150))
	db.CreateTestInvestment(t, store, "default", db.SampleInvestment("TSLA", 5, 200, 180))

	snap, err := hub.Snapshot(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, snap.Summary.TotalInvested)
	assert.InDelta(t, 20.0, snap.Summary.PortfolioPercent, 1e-9)
}

func TestHandleWebSocket_StreamsChanges(t *testing.T) {
	s := setupServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/portfolio?owner=default"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var snapshot PortfolioUpdate
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, "default", snapshot.OwnerID)
	assert.Equal(t, 0, snapshot.Summary.Count)

	mustCreate(t, s, createBody("AAPL", "Stock", 10, 100, 150, "2024-01-15"))

	var update PortfolioUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, 1, update.Summary.Count)
	assert.Equal(t, "$1,500.00", update.Summary.Formatted.TotalCurrentValue)
}
