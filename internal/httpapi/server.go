// Package httpapi exposes the shop over HTTP. Requests authenticate
// with basic auth; the resolved actor rides the request context and
// the service layer enforces who may see what.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/aslbekmam/flower-salon/internal/directory"
	"github.com/aslbekmam/flower-salon/internal/orders"
	"github.com/aslbekmam/flower-salon/pkg/models"
)

// Catalog lists the sellable products for the storefront endpoints.
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Directory lists the known parties for the staff endpoints.
type Directory interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
}

type Server struct {
	svc     *orders.Service
	catalog Catalog
	dir     Directory
	auth    directory.Authenticator
	feed    http.Handler
	logger  *logrus.Logger
	router  *mux.Router
}

// NewServer wires the routes. feed may be nil when the live order
// feed is disabled.
func NewServer(svc *orders.Service, catalog Catalog, dir Directory, auth directory.Authenticator, feed http.Handler, logger *logrus.Logger) *Server {
	s := &Server{
		svc:     svc,
		catalog: catalog,
		dir:     dir,
		auth:    auth,
		feed:    feed,
		logger:  logger,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(s.loggingMiddleware)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/orders", s.handlePlaceOrder).Methods("POST")
	api.HandleFunc("/orders", s.handleBrowseOrders).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}", s.handleReviewOrder).Methods("GET")
	api.HandleFunc("/orders/{id:[0-9]+}/status", s.handleTransitionStatus).Methods("POST")
	api.HandleFunc("/products", s.handleListProducts).Methods("GET")
	api.HandleFunc("/customers", s.staffOnly(s.handleListCustomers)).Methods("GET")
	api.HandleFunc("/employees", s.staffOnly(s.handleListEmployees)).Methods("GET")

	if s.feed != nil {
		s.router.Handle("/ws/orders", s.authMiddleware(http.HandlerFunc(s.handleFeed))).Methods("GET")
	}
}

type ctxKey int

const actorKey ctxKey = iota

func actorFrom(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(actorKey).(models.Actor)
	return a, ok
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="flower-salon"`)
			s.respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		actor, err := s.auth.Authenticate(r.Context(), login, password)
		if err != nil {
			s.logger.WithField("login", login).Warn("Authentication failed")
			w.Header().Set("WWW-Authenticate", `Basic realm="flower-salon"`)
			s.respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func (s *Server) staffOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r.Context())
		if !ok || !actor.IsStaff() {
			s.respondWithError(w, http.StatusForbidden, "Staff access required")
			return
		}
		next(w, r)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID,
			"duration":   time.Since(start).String(),
		}).Info("Request processed")
	})
}
