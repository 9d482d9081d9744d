// Package server is the HTTP comment service the client talks to.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"github.com/fragmede/commentbox/internal/api"
)

// Store is the persistence the service needs.
type Store interface {
	List(ctx context.Context, page, size int) ([]api.Comment, int, error)
	Create(ctx context.Context, nc api.NewComment) (api.Comment, error)
	Get(ctx context.Context, id uint64) (api.Comment, error)
	Delete(ctx context.Context, id uint64) error
	Ping(ctx context.Context) error
}

// Server serves the comment API.
type Server struct {
	store      Store
	corsOrigin string
	router     *mux.Router
}

// New creates a server backed by store. corsOrigin is sent as
// Access-Control-Allow-Origin; empty means "*".
func New(store Store, corsOrigin string) *Server {
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	s := &Server{store: store, corsOrigin: corsOrigin}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.logRequests, s.cors)

	comments := r.PathPrefix("/api/comment").Subrouter()
	comments.HandleFunc("/get", s.handleList).Methods(http.MethodGet, http.MethodOptions)
	comments.HandleFunc("/add", s.handleAdd).Methods(http.MethodPost, http.MethodOptions)
	comments.HandleFunc("/delete", s.handleDelete).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID returns the ID assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %s %d %s", RequestID(r.Context()), r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Round(time.Microsecond))
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.corsOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, X-Request-ID")
		h.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
