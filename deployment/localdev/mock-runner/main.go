package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"time"
)

type restartRequest struct {
	ServiceID string `json:"service_id"`
}

type restartResponse struct {
	ServiceID   string    `json:"service_id"`
	Status      string    `json:"status"`
	TimeTakenMS float64   `json:"time_taken_ms"`
	Via         string    `json:"via"`
	CompletedAt time.Time `json:"completed_at"`
}

type healthResponse struct {
	ServiceID string  `json:"service_id"`
	Health    float64 `json:"health"`
}

func main() {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/runner/restart", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}
		elapsed := 400 + rng.Float64()*1600
		writeJSON(w, restartResponse{
			ServiceID:   req.ServiceID,
			Status:      "success",
			TimeTakenMS: elapsed,
			Via:         "mock-runner",
			CompletedAt: time.Now().UTC(),
		})
	})

	mux.HandleFunc("/api/v1/runner/health", func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest(w, r)
		if !ok {
			return
		}
		// Mostly healthy, with an occasional failing probe to exercise
		// the escalation path end to end.
		health := 0.75 + rng.Float64()*0.25
		if rng.Float64() < 0.15 {
			health = rng.Float64() * 0.6
		}
		writeJSON(w, healthResponse{ServiceID: req.ServiceID, Health: health})
	})

	logger := log.New(log.Writer(), "mock-runner ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":9090",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :9090")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (restartRequest, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return restartRequest{}, false
	}
	var req restartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ServiceID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return restartRequest{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
