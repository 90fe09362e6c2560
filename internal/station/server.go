package station

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Server handles HTTP requests for the scan station
type Server struct {
	service *Service
	router  *mux.Router
}

// NewServer creates a new Server
func NewServer(service *Service) *Server {
	s := &Server{
		service: service,
		router:  mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// Pages
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/settings", s.handleSettings).Methods("GET")
	s.router.HandleFunc("/static/app.css", s.handleCSS).Methods("GET")

	// User directory
	s.router.HandleFunc("/api/users", s.handleListUsers).Methods("GET")
	s.router.HandleFunc("/api/users", s.handleAddUser).Methods("POST")
	s.router.HandleFunc("/api/users/{id:[0-9]+}", s.handleDeleteUser).Methods("DELETE")

	// Quotation-database connection settings
	s.router.HandleFunc("/api/sql-connection", s.handleGetConnection).Methods("GET")
	s.router.HandleFunc("/api/sql-connection", s.handleSaveConnection).Methods("POST")
	s.router.HandleFunc("/api/test-connection", s.handleTestConnection).Methods("POST")

	// Scanning
	s.router.HandleFunc("/api/scan", s.handleScan).Methods("POST")

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP dispatches through the middleware chain; exported so tests
// can drive the server without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	corsMiddleware(noCacheMiddleware(s.router)).ServeHTTP(w, r)
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, http.HandlerFunc(s.ServeHTTP))
}

// corsMiddleware adds CORS headers and answers preflight requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// noCacheMiddleware keeps scanner stations from showing stale pages or
// user lists after a settings change.
func noCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
