package todo

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/gotodo/todokit/pkg/apiclient"
)

// ErrEmptyValue is returned by Create for a blank value.
var ErrEmptyValue = errors.New("todo.empty_value")

// Service is the remote to-do collection.
type Service interface {
	List(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, value string) (Item, error)
	Get(ctx context.Context, id int64) (Item, error)
	Delete(ctx context.Context, id int64) error
}

// API is the HTTP Service. Every call needs a bearer token, supplied by the
// transport of the wrapped client.
type API struct {
	c *apiclient.Client
}

func NewAPI(c *apiclient.Client) *API {
	return &API{c: c}
}

// NewAuthorizedAPI builds an API whose requests carry the token from src.
// src is consulted on every request, so a session change is picked up
// immediately.
func NewAuthorizedAPI(cfg apiclient.Config, src oauth2.TokenSource, opts ...apiclient.Option) (*API, error) {
	opts = append(opts, apiclient.WithTransport(&oauth2.Transport{Source: src}))
	c, err := apiclient.NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewAPI(c), nil
}

func (a *API) List(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := a.c.Do(ctx, "todos.list", http.MethodGet, "/todos", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (a *API) Create(ctx context.Context, value string) (Item, error) {
	if strings.TrimSpace(value) == "" {
		return Item{}, ErrEmptyValue
	}
	var item Item
	in := struct {
		Value string `json:"value"`
	}{Value: value}
	if err := a.c.Do(ctx, "todos.create", http.MethodPost, "/todos", in, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (a *API) Get(ctx context.Context, id int64) (Item, error) {
	var item Item
	if err := a.c.Do(ctx, "todos.get", http.MethodGet, itemPath(id), nil, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (a *API) Delete(ctx context.Context, id int64) error {
	return a.c.Do(ctx, "todos.delete", http.MethodDelete, itemPath(id), nil, nil)
}

func itemPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

var _ Service = (*API)(nil)
