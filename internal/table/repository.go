package table

import (
	"context"
	"fmt"

	"restopos/internal/api"
)

type Repository interface {
	List(ctx context.Context) ([]*Table, error)
	Get(ctx context.Context, id uint) (*Table, error)
	Create(ctx context.Context, t *Table) (*Table, error)
	Update(ctx context.Context, t *Table) (*Table, error)
	Delete(ctx context.Context, id uint) error
}

type httpRepository struct {
	client *api.Client
}

func NewRepository(client *api.Client) Repository {
	return &httpRepository{client: client}
}

func (r *httpRepository) List(ctx context.Context) ([]*Table, error) {
	var tables []*Table
	if err := r.client.Get(ctx, "/tables", &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *httpRepository) Get(ctx context.Context, id uint) (*Table, error) {
	var t Table
	if err := r.client.Get(ctx, fmt.Sprintf("/tables/%d", id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *httpRepository) Create(ctx context.Context, t *Table) (*Table, error) {
	var created Table
	if err := r.client.Post(ctx, "/tables", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *httpRepository) Update(ctx context.Context, t *Table) (*Table, error) {
	var updated Table
	if err := r.client.Put(ctx, fmt.Sprintf("/tables/%d", t.ID), t, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *httpRepository) Delete(ctx context.Context, id uint) error {
	return r.client.Delete(ctx, fmt.Sprintf("/tables/%d", id))
}
