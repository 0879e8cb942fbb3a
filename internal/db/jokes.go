package db

import "context"

func (s *Store) ListJokes(ctx context.Context) ([]Joke, error) {
	jokes := make([]Joke, 0)
	if err := s.db.WithContext(ctx).Preload("Creator").Find(&jokes).Error; err != nil {
		return nil, translate(err, "list jokes")
	}
	return jokes, nil
}

func (s *Store) GetJoke(ctx context.Context, id string) (*Joke, error) {
	j, err := findByID[Joke](ctx, s.db, id, "Creator")
	return j, translate(err, "get joke")
}

// CreateJoke inserts j. j.UserID must reference an existing user.
func (s *Store) CreateJoke(ctx context.Context, j *Joke) error {
	return translate(s.db.WithContext(ctx).Create(j).Error, "create joke")
}

func (s *Store) UpdateJoke(ctx context.Context, id string, changes map[string]any) (*Joke, error) {
	j, err := updateByID[Joke](ctx, s.db, id, changes)
	return j, translate(err, "update joke")
}

func (s *Store) DeleteJoke(ctx context.Context, id string) (*Joke, error) {
	j, err := deleteByID[Joke](ctx, s.db, id)
	return j, translate(err, "delete joke")
}

func (s *Store) DeleteAllJokes(ctx context.Context) ([]Joke, error) {
	jokes, err := deleteAll[Joke](ctx, s.db)
	return jokes, translate(err, "delete jokes")
}
