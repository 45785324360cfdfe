package adaptor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cinema-reservation/internal/dto/request"
	"cinema-reservation/internal/dto/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) GetMovies(ctx context.Context) ([]response.MovieResponse, error) {
	args := m.Called(ctx)
	movies, _ := args.Get(0).([]response.MovieResponse)
	return movies, args.Error(1)
}

func (m *mockCatalog) GetMovieByID(ctx context.Context, movieID string) (*response.MovieResponse, error) {
	args := m.Called(ctx, movieID)
	movie, _ := args.Get(0).(*response.MovieResponse)
	return movie, args.Error(1)
}

func (m *mockCatalog) GetSessions(ctx context.Context) ([]response.SessionResponse, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]response.SessionResponse)
	return sessions, args.Error(1)
}

func (m *mockCatalog) GetSeatMap(ctx context.Context, sessionID string) (*response.SeatMapResponse, error) {
	args := m.Called(ctx, sessionID)
	seatMap, _ := args.Get(0).(*response.SeatMapResponse)
	return seatMap, args.Error(1)
}

func (m *mockCatalog) GetCombos(ctx context.Context) ([]response.ComboResponse, error) {
	args := m.Called(ctx)
	combos, _ := args.Get(0).([]response.ComboResponse)
	return combos, args.Error(1)
}

type mockReservation struct{ mock.Mock }

func (m *mockReservation) CreateOrder(ctx context.Context, req *request.ReservationRequest) (*response.OrderResponse, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*response.OrderResponse)
	return order, args.Error(1)
}

func (m *mockReservation) UpdateOrder(ctx context.Context, orderID string, req *request.ReservationRequest) (*response.OrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	order, _ := args.Get(0).(*response.OrderResponse)
	return order, args.Error(1)
}

func (m *mockReservation) GetOrders(ctx context.Context) ([]response.OrderResponse, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]response.OrderResponse)
	return orders, args.Error(1)
}

func (m *mockReservation) GetOrderByID(ctx context.Context, orderID string) (*response.OrderResponse, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*response.OrderResponse)
	return order, args.Error(1)
}

func (m *mockReservation) DeleteOrder(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *mockReservation) RemoveTicket(ctx context.Context, orderID, ticketID string) (*response.OrderResponse, error) {
	args := m.Called(ctx, orderID, ticketID)
	order, _ := args.Get(0).(*response.OrderResponse)
	return order, args.Error(1)
}

func (m *mockReservation) GetOrphanTickets(ctx context.Context) ([]response.TicketResponse, error) {
	args := m.Called(ctx)
	tickets, _ := args.Get(0).([]response.TicketResponse)
	return tickets, args.Error(1)
}

func (m *mockReservation) AdoptOrphan(ctx context.Context, ticketID string) (*response.OrderResponse, error) {
	args := m.Called(ctx, ticketID)
	order, _ := args.Get(0).(*response.OrderResponse)
	return order, args.Error(1)
}

// envelope mirrors the response envelope with raw payloads so tests can decode
// into whatever shape they expect.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func testRouter(catalog *mockCatalog, orders *mockReservation) *chi.Mux {
	log := zap.NewNop()
	ch := NewCatalogHandler(catalog, log)
	oh := NewOrderHandler(orders, log)

	r := chi.NewRouter()
	r.Get("/api/movies", ch.GetMovies)
	r.Get("/api/movies/{id}", ch.GetMovieByID)
	r.Get("/api/sessions", ch.GetSessions)
	r.Get("/api/sessions/{id}/seats", ch.GetSeatMap)
	r.Get("/api/combos", ch.GetCombos)

	r.Get("/api/orders", oh.GetOrders)
	r.Post("/api/orders", oh.CreateOrder)
	r.Get("/api/orders/{id}", oh.GetOrderByID)
	r.Put("/api/orders/{id}", oh.UpdateOrder)
	r.Delete("/api/orders/{id}", oh.DeleteOrder)
	r.Delete("/api/orders/{id}/tickets/{ticketId}", oh.RemoveTicket)
	r.Get("/api/tickets/orphans", oh.GetOrphanTickets)
	r.Post("/api/tickets/orphans/{id}/adopt", oh.AdoptOrphan)
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

