package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jokes-api/internal/db"
	"jokes-api/internal/types"
	"jokes-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// handlerFunc is an http.HandlerFunc that reports failures instead of
// writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle always terminates the response: errors become a JSON
// { message } body with the status carried by a types.StatusError, or 500.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var se types.StatusError
		if !errors.As(err, &se) {
			se = types.NewStatusError(err, http.StatusInternalServerError).WithMessage("internal server error")
		}
		fields := []zap.Field{
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", se.Status),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		if se.Status >= http.StatusInternalServerError {
			s.log.Error("request failed", fields...)
		} else {
			s.log.Warn("request rejected", fields...)
		}

		if werr := utils.WriteJSON(w, se.Status, map[string]string{"message": se.ClientMessage()}); werr != nil {
			s.log.Error("write error response", zap.Error(werr))
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	return utils.WriteJSON(w, http.StatusOK, v)
}

func decodeBody(r *http.Request, v any) error {
	if err := utils.DecodeJSON(r.Body, v); err != nil {
		return types.NewStatusError(err, http.StatusBadRequest).WithMessage("malformed JSON body")
	}
	return nil
}

func notFound(entity string) error {
	return types.NewStatusError(db.ErrNotFound, http.StatusNotFound).WithMessage(fmt.Sprintf("no %s found", entity))
}

// storeError maps store sentinels onto HTTP statuses.
func storeError(err error, entity string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return notFound(entity)
	case errors.Is(err, db.ErrConflict):
		return types.NewStatusError(err, http.StatusConflict).WithMessage(fmt.Sprintf("%s conflicts with existing data", entity))
	}
	return err
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		return utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return writeJSON(w, map[string]string{"status": "ok"})
}
