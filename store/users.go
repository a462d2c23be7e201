package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/ZeMendes2393/sailscore/models"
)

// GetUser loads a user by username.
func (r *Impl) GetUser(ctx context.Context, db bun.IDB, username string) (*models.User, error) {
	u := new(models.User)
	err := r.conn(db).NewSelect().Model(u).
		Where("u.username = ?", strings.TrimSpace(username)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.GetUser: %w", notFound(err))
	}
	return u, nil
}

// CreateUser inserts a user, replacing the password and role of an existing
// user with the same name.
func (r *Impl) CreateUser(ctx context.Context, db bun.IDB, u *models.User) error {
	_, err := r.conn(db).NewInsert().Model(u).
		On("CONFLICT (username) DO UPDATE").
		Set("password = EXCLUDED.password").
		Set("role = EXCLUDED.role").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("store.CreateUser: %w", err)
	}
	return nil
}
