package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/punchamoorthee/payrolld/internal/domain"
	"github.com/punchamoorthee/payrolld/internal/service"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payroll_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	}, []string{"method", "endpoint"})
)

// Payroll is the service surface the handlers depend on.
type Payroll interface {
	Submit(ctx context.Context, req domain.PayrollRequest) (*domain.SubmitResult, error)
	History(ctx context.Context) ([]domain.PayrollRecord, error)
	Status(ctx context.Context, txHash string) (*domain.TransactionStatus, error)
}

type Handler struct {
	payroll Payroll
}

func NewHandler(p Payroll) *Handler {
	return &Handler{payroll: p}
}

// NewRouter wires up the full HTTP surface.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", h.Health).Methods("GET")
	// OPTIONS is routed so the CORS middleware can answer preflights
	r.HandleFunc("/build_and_submit_tx", h.SubmitPayroll).Methods("POST", "OPTIONS")
	r.HandleFunc("/transaction_history", h.TransactionHistory).Methods("GET", "OPTIONS")
	r.HandleFunc("/get_tx_info/{tx_hash}", h.GetTxInfo).Methods("GET", "OPTIONS")
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

func (h *Handler) SubmitPayroll(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/build_and_submit_tx"))
	defer timer.ObserveDuration()

	var req domain.PayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON", "POST", "/build_and_submit_tx")
		return
	}

	result, err := h.payroll.Submit(r.Context(), req)
	if err != nil {
		var invalidErr *service.InvalidRequestError
		var mismatchErr *service.AddressMismatchError
		var noFundsErr *service.NoFundsError
		var upstreamErr *service.UpstreamError
		switch {
		case errors.As(err, &invalidErr),
			errors.As(err, &mismatchErr),
			errors.As(err, &noFundsErr),
			errors.As(err, &upstreamErr):
			h.respondError(w, http.StatusBadRequest, err.Error(), "POST", "/build_and_submit_tx")
		default:
			h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/build_and_submit_tx")
		}
		return
	}
	h.respondJSON(w, http.StatusOK, result, "POST", "/build_and_submit_tx")
}

func (h *Handler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.payroll.History(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/transaction_history")
		return
	}
	if records == nil {
		records = []domain.PayrollRecord{}
	}
	h.respondJSON(w, http.StatusOK, domain.HistoryResponse{Transactions: records}, "GET", "/transaction_history")
}

func (h *Handler) GetTxInfo(w http.ResponseWriter, r *http.Request) {
	txHash := mux.Vars(r)["tx_hash"]

	status, err := h.payroll.Status(r.Context(), txHash)
	if err != nil {
		if errors.Is(err, service.ErrTxNotFound) {
			h.respondError(w, http.StatusNotFound, "Transaction not found or still pending", "GET", "/get_tx_info/{tx_hash}")
			return
		}
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			h.respondError(w, http.StatusBadRequest, err.Error(), "GET", "/get_tx_info/{tx_hash}")
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", "/get_tx_info/{tx_hash}")
		return
	}
	h.respondJSON(w, http.StatusOK, status, "GET", "/get_tx_info/{tx_hash}")
}

// corsMiddleware mirrors the permissive policy this internal tool has
// always run with.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
