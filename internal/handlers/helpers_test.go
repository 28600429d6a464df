package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/atharvakonge/portfolio-pilot/internal/db"
	"github.com/atharvakonge/portfolio-pilot/internal/validation"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	router    *gin.Engine
	store     *db.MemoryStore
	hub       *Hub
	processor *WriteProcessor
	handler   *InvestmentHandler
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	hub := NewHub(store, zerolog.Nop())
	processor := NewWriteProcessor(2, store, hub, zerolog.Nop())
	processor.Start()
	t.Cleanup(processor.Stop)

	h := &InvestmentHandler{
		Store:        store,
		Processor:    processor,
		Hub:          hub,
		Validator:    validation.New(func() time.Time { return fixedNow }),
		DefaultOwner: "default",
		Log:          zerolog.Nop(),
		Now:          func() time.Time { return fixedNow },
	}

	return &testServer{
		router:    NewRouter(h, zerolog.Nop()),
		store:     store,
		hub:       hub,
		processor: processor,
		handler:   h,
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, isString := body.(string); isString {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

func createBody(symbol, typ string, qty, buy, cur float64, date string) map[string]any {
	return map[string]any{
		"stockSymbol":   symbol,
		"type":          typ,
		"purchaseDate":  date,
		"quantity":      qty,
		"purchasePrice": buy,
		"currentPrice":  cur,
	}
}

func mustCreate(t *testing.T, s *testServer, body map[string]any, headers ...string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/investments", body, headers...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decode[envelope[struct {
		ID string `json:"id"`
	}]](t, w)
	require.NotEmpty(t, env.Data.ID)
	return env.Data.ID
}
