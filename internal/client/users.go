package client

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type UserRepository struct {
	c *Client
}

func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{c: c}
}

func (r *UserRepository) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := r.c.Get(ctx, "/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.c.Get(ctx, pathf("/users/%d", id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	out := []domain.User{}
	if err := r.c.Get(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}
