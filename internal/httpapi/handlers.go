package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/aslbekmam/flower-salon/internal/orders"
	"github.com/aslbekmam/flower-salon/pkg/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "flower-salon",
	})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var draft orders.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.logger.WithError(err).Error("Failed to decode order request")
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		draft.IdempotencyKey = key
	}

	orderID, err := s.svc.PlaceOrder(r.Context(), actor, draft)
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	details, err := s.svc.ReviewOrder(r.Context(), actor, orderID)
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusCreated, details)
}

func (s *Server) handleReviewOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	details, err := s.svc.ReviewOrder(r.Context(), actor, id)
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, details)
}

func (s *Server) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var body struct {
		Status models.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.svc.TransitionStatus(r.Context(), actor, id, body.Status); err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]any{
		"order_id": id,
		"status":   body.Status,
	})
}

func (s *Server) handleBrowseOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())

	var filter orders.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.Status(v)
		if !status.Valid() {
			s.respondWithError(w, http.StatusBadRequest, "Unknown status "+strconv.Quote(v))
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			s.respondWithError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	summaries, err := s.svc.BrowseOrders(r.Context(), actor, filter)
	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.ListProducts(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list products")
		s.respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	s.respondWithJSON(w, http.StatusOK, products)
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.dir.ListCustomers(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list customers")
		s.respondWithError(w, http.StatusInternalServerError, "Failed to list customers")
		return
	}
	s.respondWithJSON(w, http.StatusOK, customers)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.dir.ListEmployees(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to list employees")
		s.respondWithError(w, http.StatusInternalServerError, "Failed to list employees")
		return
	}
	s.respondWithJSON(w, http.StatusOK, employees)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok || !actor.IsStaff() {
		s.respondWithError(w, http.StatusForbidden, "Staff access required")
		return
	}
	s.feed.ServeHTTP(w, r)
}

func (s *Server) respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrInvalidInput), errors.Is(err, orders.ErrEmptyCart):
		s.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrForbidden):
		s.respondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, orders.ErrUnknownProduct),
		errors.Is(err, orders.ErrUnknownParty):
		s.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, orders.ErrConflict):
		s.respondWithError(w, http.StatusConflict, err.Error())
	default:
		s.logger.WithError(err).Error("Order operation failed")
		s.respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]any{
		"success": false,
		"message": message,
	})
}
