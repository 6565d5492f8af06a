package order

import (
	"context"
	"fmt"

	"restopos/internal/api"
	"restopos/internal/policy"
)

type Repository interface {
	List(ctx context.Context) ([]*Order, error)
	Get(ctx context.Context, id uint) (*Order, error)
	Create(ctx context.Context, o *Order) (*Order, error)
	Update(ctx context.Context, o *Order) (*Order, error)
	UpdateStatus(ctx context.Context, id uint, status policy.OrderStatus) (*Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID uint, status policy.ItemStatus) (*Order, error)
	Delete(ctx context.Context, id uint) error
}

type httpRepository struct {
	client *api.Client
}

func NewRepository(client *api.Client) Repository {
	return &httpRepository{client: client}
}

func (r *httpRepository) List(ctx context.Context) ([]*Order, error) {
	var orders []*Order
	if err := r.client.Get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *httpRepository) Get(ctx context.Context, id uint) (*Order, error) {
	var o Order
	if err := r.client.Get(ctx, fmt.Sprintf("/orders/%d", id), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *httpRepository) Create(ctx context.Context, o *Order) (*Order, error) {
	var created Order
	if err := r.client.Post(ctx, "/orders", o, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *httpRepository) Update(ctx context.Context, o *Order) (*Order, error) {
	var updated Order
	if err := r.client.Put(ctx, fmt.Sprintf("/orders/%d", o.ID), o, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *httpRepository) UpdateStatus(ctx context.Context, id uint, status policy.OrderStatus) (*Order, error) {
	var updated Order
	body := map[string]policy.OrderStatus{"status": status}
	if err := r.client.Patch(ctx, fmt.Sprintf("/orders/%d/status", id), body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *httpRepository) UpdateItemStatus(ctx context.Context, orderID, itemID uint, status policy.ItemStatus) (*Order, error) {
	var updated Order
	body := map[string]policy.ItemStatus{"status": status}
	path := fmt.Sprintf("/orders/%d/items/%d/status", orderID, itemID)
	if err := r.client.Patch(ctx, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *httpRepository) Delete(ctx context.Context, id uint) error {
	return r.client.Delete(ctx, fmt.Sprintf("/orders/%d", id))
}
