package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"inspection-station/internal/domain/entity"
	"inspection-station/internal/domain/port"
	"inspection-station/internal/metrics"
)

// Server — HTTP/JSON API хранения записей инспекции: один маршрут
// /api/{table} на все стадии, имя таблицы проверяется по схеме.
// Ровно одна запись на пару (штрихкод, таблица): повторная отправка
// перезаписывает существующую.
type Server struct {
	server *http.Server
	router *mux.Router
	repo   port.RecordRepository
	tables map[string][]string // имя таблицы -> допустимые колонки
	logger *zap.Logger
}

// New создаёт сервер с проверкой таблиц по схеме из конфигурации.
func New(addr string, repo port.RecordRepository, tables map[string][]string, logger *zap.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: router,
		},
		router: router,
		repo:   repo,
		tables: make(map[string][]string, len(tables)),
		logger: logger,
	}
	for name, cols := range tables {
		s.tables[strings.ToUpper(name)] = cols
	}

	router.Use(s.metricsMiddleware)

	router.HandleFunc("/health", s.healthCheck).Methods("GET")
	router.HandleFunc("/api/{table}", s.handleGet).Methods("GET")
	router.HandleFunc("/api/{table}", s.handleUpsert).Methods("POST", "PUT")
	router.HandleFunc("/api/{table}", s.handleDelete).Methods("DELETE")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return s
}

// Handler возвращает маршрутизатор (используется в тестах через httptest).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start запускает сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.logger.Info("starting records API server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Shutdown останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down records API server")
	return s.server.Shutdown(ctx)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		table := mux.Vars(r)["table"]
		metrics.HTTPRequests.WithLabelValues(r.Method, strings.ToUpper(table), strconv.Itoa(rw.statusCode)).Inc()
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.HealthCheck(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// validTable проверяет имя таблицы по схеме; сравнение без учёта регистра.
func (s *Server) validTable(name string) (string, []string, bool) {
	upper := strings.ToUpper(name)
	cols, ok := s.tables[upper]
	return upper, cols, ok
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	table, _, ok := s.validTable(mux.Vars(r)["table"])
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid table name: %s", mux.Vars(r)["table"]))
		return
	}

	barcode := r.URL.Query().Get("barcode")
	if barcode == "" {
		s.writeError(w, http.StatusBadRequest, "barcode parameter is required")
		return
	}

	rec, err := s.repo.Latest(r.Context(), table, barcode)
	if err != nil {
		s.logger.Error("failed to read record", zap.String("table", table), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if rec == nil {
		s.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	table, cols, ok := s.validTable(mux.Vars(r)["table"])
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid table name: %s", mux.Vars(r)["table"]))
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := recordFromPayload(table, cols, payload)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.Upsert(r.Context(), rec); err != nil {
		s.logger.Error("failed to upsert record", zap.String("table", table), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusCreated
	if r.Method == http.MethodPut {
		status = http.StatusOK
	}
	s.writeJSON(w, status, map[string]string{"status": "ok", "barcode": rec.Barcode})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	table, _, ok := s.validTable(mux.Vars(r)["table"])
	if !ok {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid table name: %s", mux.Vars(r)["table"]))
		return
	}

	var payload struct {
		Barcode string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Barcode == "" {
		s.writeError(w, http.StatusBadRequest, "barcode is required")
		return
	}

	if err := s.repo.Delete(r.Context(), table, payload.Barcode); err != nil {
		s.logger.Error("failed to delete record", zap.String("table", table), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "barcode": payload.Barcode})
}

// recordFromPayload собирает запись из плоского JSON, отбрасывая поля,
// которых нет в схеме таблицы.
func recordFromPayload(table string, cols []string, payload map[string]any) (*entity.Record, error) {
	barcode, _ := payload["Barcode"].(string)
	if barcode == "" {
		return nil, fmt.Errorf("Barcode field is required")
	}

	rec := &entity.Record{
		Table:   table,
		Barcode: barcode,
		DT:      time.Now().UTC(),
	}
	if raw, ok := payload["DT"].(string); ok {
		if dt, err := time.Parse(time.RFC3339, raw); err == nil {
			rec.DT = dt
		}
	}
	if v, ok := payload["Process_id"].(string); ok {
		rec.ProcessID = v
	}
	if v, ok := payload["Station_ID"].(string); ok {
		rec.StationID = v
	}
	rec.Result = intField(payload, "Result")
	rec.ManualResult = intField(payload, "ManualResult")

	for _, col := range cols {
		switch col {
		case "Barcode", "DT", "Process_id", "Station_ID", "Result", "ManualResult":
			continue
		}
		if strings.HasPrefix(col, "Manual") {
			continue
		}
		if _, present := payload[col]; !present {
			continue
		}
		rec.Components = append(rec.Components, entity.RecordColumn{
			Name:   col,
			Value:  intField(payload, col),
			Manual: intField(payload, "Manual"+col),
		})
	}
	return rec, nil
}

// intField достаёт целое из JSON-значения (числа приходят как float64).
func intField(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
