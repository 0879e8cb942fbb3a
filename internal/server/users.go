package server

import (
	"errors"
	"net/http"

	"jokes-api/internal/db"

	"github.com/go-chi/chi/v5"
)

type userRequest struct {
	Name  *string  `json:"name"`
	Email *string  `json:"email"`
	Role  *db.Role `json:"role"`
}

func (req userRequest) changes() map[string]any {
	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	if req.Role != nil {
		changes["role"] = *req.Role
	}
	return changes
}

func (s *Server) mountUsers(r chi.Router) {
	r.Get("/users", s.handle(s.listUsers))
	r.Get("/user/{id}", s.handle(s.getUser))
	r.Post("/user", s.handle(s.createUser))
	r.Put("/user/{id}", s.handle(s.updateUser))
	r.Delete("/users", s.handle(s.deleteUsers))
	r.Delete("/user/{id}", s.handle(s.deleteUser))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"users": users})
}

// getUser answers a missing id with a null user rather than 404.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) error {
	user, err := s.store.GetUser(r.Context(), idParam(r))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return writeJSON(w, map[string]any{"user": user})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) error {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	user := &db.User{}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		return storeError(err, "user")
	}
	return writeJSON(w, map[string]any{"user": user})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) error {
	var req userRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	user, err := s.store.UpdateUser(r.Context(), idParam(r), req.changes())
	if err != nil {
		return storeError(err, "user")
	}
	return writeJSON(w, map[string]any{"user": user})
}

func (s *Server) deleteUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.store.DeleteAllUsers(r.Context())
	if err != nil {
		return storeError(err, "user")
	}
	return writeJSON(w, map[string]any{"users": users, "count": len(users)})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) error {
	user, err := s.store.DeleteUser(r.Context(), idParam(r))
	if err != nil {
		return storeError(err, "user")
	}
	return writeJSON(w, map[string]any{"user": user})
}
