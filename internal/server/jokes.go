package server

import (
	"errors"
	"net/http"

	"jokes-api/internal/db"

	"github.com/go-chi/chi/v5"
)

type jokeRequest struct {
	Text *string `json:"text"`
}

func (s *Server) mountJokes(r chi.Router) {
	r.Get("/jokes", s.handle(s.listJokes))
	r.Get("/joke/{id}", s.handle(s.getJoke))
	r.Post("/joke", s.handle(s.createJoke))
	r.Put("/joke/{id}", s.handle(s.updateJoke))
	r.Delete("/jokes", s.handle(s.deleteJokes))
	r.Delete("/joke/{id}", s.handle(s.deleteJoke))
}

func (s *Server) listJokes(w http.ResponseWriter, r *http.Request) error {
	jokes, err := s.store.ListJokes(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"jokes": jokes})
}

func (s *Server) getJoke(w http.ResponseWriter, r *http.Request) error {
	joke, err := s.store.GetJoke(r.Context(), idParam(r))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return writeJSON(w, map[string]any{"joke": joke})
}

// createJoke never takes the creator from the body.
func (s *Server) createJoke(w http.ResponseWriter, r *http.Request) error {
	var req jokeRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	joke := &db.Joke{UserID: s.creatorID(r, s.cfg.Creators.CreatorID)}
	if req.Text != nil {
		joke.Text = *req.Text
	}
	if err := s.store.CreateJoke(r.Context(), joke); err != nil {
		return storeError(err, "joke")
	}
	return writeJSON(w, map[string]any{"joke": joke})
}

// updateJoke also hands the joke over to the reassignment creator.
func (s *Server) updateJoke(w http.ResponseWriter, r *http.Request) error {
	var req jokeRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	changes := map[string]any{"user_id": s.creatorID(r, s.cfg.Creators.ReassignID)}
	if req.Text != nil {
		changes["text"] = *req.Text
	}
	joke, err := s.store.UpdateJoke(r.Context(), idParam(r), changes)
	if err != nil {
		return storeError(err, "joke")
	}
	return writeJSON(w, map[string]any{"joke": joke})
}

func (s *Server) deleteJokes(w http.ResponseWriter, r *http.Request) error {
	jokes, err := s.store.DeleteAllJokes(r.Context())
	if err != nil {
		return storeError(err, "joke")
	}
	return writeJSON(w, map[string]any{"message": "jokes deleted", "jokes": jokes, "count": len(jokes)})
}

func (s *Server) deleteJoke(w http.ResponseWriter, r *http.Request) error {
	joke, err := s.store.DeleteJoke(r.Context(), idParam(r))
	if err != nil {
		return storeError(err, "joke")
	}
	return writeJSON(w, map[string]any{"joke": joke})
}
