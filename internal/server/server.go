package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cwbudde/smooth5x5/internal/imageio"
	"github.com/cwbudde/smooth5x5/internal/smooth"
)

// maxUploadBytes bounds the request body of /api/v1/smooth.
const maxUploadBytes = 32 << 20

// Server exposes the smoothing filter over HTTP.
type Server struct {
	addr   string
	server *http.Server
}

// NewServer creates a new HTTP server
func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/backends", s.handleBackends)
	mux.HandleFunc("/api/v1/smooth", s.handleSmooth)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

// handleBackends handles GET /api/v1/backends
func (s *Server) handleBackends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"active":   smooth.ActiveBackend.String(),
		"backends": []string{smooth.BackendScalar.String(), smooth.BackendSWAR.String()},
		"cpu":      smooth.CPUFeatures(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleSmooth handles POST /api/v1/smooth?backend=<name>&workers=<n>&format=<png|bmp|tiff>.
// The body is an encoded image; the response is the smoothed gray image.
func (s *Server) handleSmooth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	backend, err := smooth.ParseBackend(query.Get("backend"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workers := 1
	if v := query.Get("workers"); v != "" {
		workers, err = strconv.Atoi(v)
		if err != nil || workers < 0 {
			http.Error(w, "workers must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if workers != 1 && backend != smooth.BackendSWAR {
			http.Error(w, "workers requires the swar backend", http.StatusBadRequest)
			return
		}
	}

	format := query.Get("format")
	if format == "" {
		format = "png"
	}
	if err := imageio.CheckFormat(format); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, inFormat, err := imageio.Decode(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid image: %v", err), http.StatusBadRequest)
		return
	}

	bounds := img.Bounds()
	start := time.Now()
	if workers != 1 {
		err = smooth.Smooth5x5Parallel(img.Stride, bounds.Dx(), bounds.Dy(), img.Pix, img.Pix, workers)
	} else {
		err = smooth.Run(backend, img.Stride, bounds.Dx(), bounds.Dy(), img.Pix, img.Pix)
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Smoothing failed: %v", err), http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	if err := imageio.Encode(&body, img, format); err != nil {
		http.Error(w, fmt.Sprintf("Encoding failed: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Debug("Smoothed image",
		"input_format", inFormat, "output_format", format,
		"width", bounds.Dx(), "height", bounds.Dy(),
		"backend", backend, "workers", workers, "duration", time.Since(start))

	w.Header().Set("Content-Type", contentType(format))
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(body.Bytes())
}

func contentType(format string) string {
	switch format {
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	default:
		return "image/png"
	}
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
