package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MrEthical07/goSession/schema"
)

// List is the typed result of a list operation.
type List[T any] struct {
	Items []T
	// TotalCount is meta.total_count, or len(Items) when the backend sent no meta.
	TotalCount int64
	HasMeta    bool
}

// Resource exposes fetch-by-id, list, create and update for one entity
// collection. T is the response entity and In the request payload.
type Resource[T, In any] struct {
	client  *Client
	name    string
	path    string
	input   schema.Descriptor
	itemEnv *schema.ObjectDescriptor
	listEnv *schema.ObjectDescriptor
}

// NewResource binds a collection rooted at path (for example "/suppliers").
func NewResource[T, In any](c *Client, name, path string, item, input schema.Descriptor) *Resource[T, In] {
	return &Resource[T, In]{
		client:  c,
		name:    name,
		path:    path,
		input:   input,
		itemEnv: schema.Envelope(item),
		listEnv: schema.ListEnvelope(item),
	}
}

// Name returns the collection name used in operation labels.
func (r *Resource[T, In]) Name() string { return r.name }

// Get fetches one entity by id.
func (r *Resource[T, In]) Get(ctx context.Context, token string, id int64) (T, error) {
	env, err := Invoke[T](ctx, r.client, Call{
		Op:       r.name + ".get",
		Method:   http.MethodGet,
		Path:     r.itemPath(id),
		Token:    token,
		Response: r.itemEnv,
	})
	return data(env, err, r.name+".get")
}

// List fetches one page of the collection.
func (r *Resource[T, In]) List(ctx context.Context, token string, page Page) (List[T], error) {
	env, err := Invoke[[]T](ctx, r.client, Call{
		Op:       r.name + ".list",
		Method:   http.MethodGet,
		Path:     r.path,
		Query:    page.Values(),
		Token:    token,
		Response: r.listEnv,
	})
	items, err := data(env, err, r.name+".list")
	if err != nil {
		return List[T]{}, err
	}
	out := List[T]{Items: items, TotalCount: int64(len(items))}
	if env.Meta != nil {
		out.TotalCount = env.Meta.TotalCount
		out.HasMeta = true
	}
	return out, nil
}

// Create posts a new entity. The payload is checked before sending.
func (r *Resource[T, In]) Create(ctx context.Context, token string, in In) (T, error) {
	env, err := Invoke[T](ctx, r.client, Call{
		Op:         r.name + ".create",
		Method:     http.MethodPost,
		Path:       r.path,
		Token:      token,
		Body:       in,
		BodySchema: r.input,
		Response:   r.itemEnv,
	})
	return data(env, err, r.name+".create")
}

// Update replaces an entity by id. The payload is checked before sending.
func (r *Resource[T, In]) Update(ctx context.Context, token string, id int64, in In) (T, error) {
	env, err := Invoke[T](ctx, r.client, Call{
		Op:         r.name + ".update",
		Method:     http.MethodPut,
		Path:       r.itemPath(id),
		Token:      token,
		Body:       in,
		BodySchema: r.input,
		Response:   r.itemEnv,
	})
	return data(env, err, r.name+".update")
}

func (r *Resource[T, In]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// data unwraps a validated envelope, treating success=false as an API error.
func data[T any](env Envelope[T], err error, op string) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	if !env.Success {
		var zero T
		msg := env.Message
		if msg == "" {
			msg = DefaultFailureMessage
		}
		return zero, &Error{Kind: KindAPI, Op: op, Status: http.StatusOK, Message: msg}
	}
	return env.Data, nil
}
