package db

import "context"

func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	posts := make([]Post, 0)
	if err := s.db.WithContext(ctx).Preload("Creator").Find(&posts).Error; err != nil {
		return nil, translate(err, "list posts")
	}
	return posts, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*Post, error) {
	p, err := findByID[Post](ctx, s.db, id, "Creator")
	return p, translate(err, "get post")
}

// CreatePost inserts p. p.UserID must reference an existing user.
func (s *Store) CreatePost(ctx context.Context, p *Post) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create post")
}

func (s *Store) UpdatePost(ctx context.Context, id string, changes map[string]any) (*Post, error) {
	p, err := updateByID[Post](ctx, s.db, id, changes)
	return p, translate(err, "update post")
}

func (s *Store) DeletePost(ctx context.Context, id string) (*Post, error) {
	p, err := deleteByID[Post](ctx, s.db, id)
	return p, translate(err, "delete post")
}

func (s *Store) DeleteAllPosts(ctx context.Context) ([]Post, error) {
	posts, err := deleteAll[Post](ctx, s.db)
	return posts, translate(err, "delete posts")
}
