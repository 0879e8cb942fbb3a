package db

import "context"

// ListUsers returns every user with their posts and jokes, each joke
// carrying its creator.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	users := make([]User, 0)
	err := s.db.WithContext(ctx).
		Preload("Posts").
		Preload("Jokes.Creator").
		Find(&users).Error
	if err != nil {
		return nil, translate(err, "list users")
	}
	for i := range users {
		users[i].loaded()
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	u, err := findByID[User](ctx, s.db, id, "Posts", "Jokes")
	if err != nil {
		return nil, translate(err, "get user")
	}
	u.loaded()
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error, "create user")
}

// UpdateUser applies changes keyed by column name.
func (s *Store) UpdateUser(ctx context.Context, id string, changes map[string]any) (*User, error) {
	u, err := updateByID[User](ctx, s.db, id, changes)
	return u, translate(err, "update user")
}

// DeleteUser fails with ErrConflict while the user still owns posts or jokes.
func (s *Store) DeleteUser(ctx context.Context, id string) (*User, error) {
	u, err := deleteByID[User](ctx, s.db, id)
	return u, translate(err, "delete user")
}

func (s *Store) DeleteAllUsers(ctx context.Context) ([]User, error) {
	users, err := deleteAll[User](ctx, s.db)
	return users, translate(err, "delete users")
}
