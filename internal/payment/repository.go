package payment

import (
	"context"
	"fmt"

	"restopos/internal/api"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	UpdateStatus(ctx context.Context, id uint, status Status) (*Payment, error)
}

type httpRepository struct {
	client *api.Client
}

func NewRepository(client *api.Client) Repository {
	return &httpRepository{client: client}
}

func (r *httpRepository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	var created Payment
	if err := r.client.Post(ctx, "/payments", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *httpRepository) UpdateStatus(ctx context.Context, id uint, status Status) (*Payment, error) {
	var updated Payment
	body := map[string]Status{"payment_status": status}
	if err := r.client.Patch(ctx, fmt.Sprintf("/payments/%d/status", id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
