package menu

import (
	"context"
	"fmt"

	"restopos/internal/api"
)

type Repository interface {
	List(ctx context.Context) ([]*Item, error)
	Get(ctx context.Context, id uint) (*Item, error)
}

type httpRepository struct {
	client *api.Client
}

func NewRepository(client *api.Client) Repository {
	return &httpRepository{client: client}
}

func (r *httpRepository) List(ctx context.Context) ([]*Item, error) {
	var items []*Item
	if err := r.client.Get(ctx, "/menu-items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *httpRepository) Get(ctx context.Context, id uint) (*Item, error) {
	var item Item
	if err := r.client.Get(ctx, fmt.Sprintf("/menu-items/%d", id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}
