package server

import (
	"errors"
	"net/http"

	"jokes-api/internal/db"

	"github.com/go-chi/chi/v5"
)

type postRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) mountPosts(r chi.Router) {
	r.Get("/posts", s.handle(s.listPosts))
	r.Get("/post/{id}", s.handle(s.getPost))
	r.Get("/post/{id}/html", s.handle(s.renderPost))
	r.Post("/post", s.handle(s.createPost))
	r.Put("/post/{id}", s.handle(s.updatePost))
	r.Delete("/posts", s.handle(s.deletePosts))
	r.Delete("/post/{id}", s.handle(s.deletePost))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) error {
	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"posts": posts})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) error {
	post, err := s.store.GetPost(r.Context(), idParam(r))
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	return writeJSON(w, map[string]any{"post": post})
}

func (s *Server) renderPost(w http.ResponseWriter, r *http.Request) error {
	post, err := s.store.GetPost(r.Context(), idParam(r))
	if err != nil {
		return storeError(err, "post")
	}
	html, err := s.md.Render([]byte(post.Content))
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"post": post, "html": string(html)})
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) error {
	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	post := &db.Post{UserID: s.creatorID(r, s.cfg.Creators.CreatorID)}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if err := s.store.CreatePost(r.Context(), post); err != nil {
		return storeError(err, "post")
	}
	return writeJSON(w, map[string]any{"post": post})
}

// updatePost publishes the post and hands it over to the reassignment
// creator.
func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) error {
	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	changes := map[string]any{
		"published": true,
		"user_id":   s.creatorID(r, s.cfg.Creators.ReassignID),
	}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Content != nil {
		changes["content"] = *req.Content
	}
	post, err := s.store.UpdatePost(r.Context(), idParam(r), changes)
	if err != nil {
		return storeError(err, "post")
	}
	return writeJSON(w, map[string]any{"post": post})
}

func (s *Server) deletePosts(w http.ResponseWriter, r *http.Request) error {
	posts, err := s.store.DeleteAllPosts(r.Context())
	if err != nil {
		return storeError(err, "post")
	}
	return writeJSON(w, map[string]any{"message": "posts deleted", "posts": posts, "count": len(posts)})
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) error {
	post, err := s.store.DeletePost(r.Context(), idParam(r))
	if err != nil {
		return storeError(err, "post")
	}
	return writeJSON(w, map[string]any{"post": post})
}
