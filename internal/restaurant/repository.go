package restaurant

import (
	"context"

	"restopos/internal/api"
)

type Repository interface {
	GetSettings(ctx context.Context) (*Settings, error)
}

type httpRepository struct {
	client *api.Client
}

func NewRepository(client *api.Client) Repository {
	return &httpRepository{client: client}
}

func (r *httpRepository) GetSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := r.client.Get(ctx, "/restaurant/settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}
