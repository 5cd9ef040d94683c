package processor

import (
	"context"

	"github.com/vtagz/recommendations/pkg/models"
)

// Handler applies one validated message against the graph.
type Handler func(ctx context.Context, msg *models.Message) error

// Registry maps a message's declared type to its transformer. The mapping
// is closed over the supported types at construction; unknown types are
// never dispatched.
type Registry struct {
	operations map[string]Handler
}

// NewRegistry builds the fixed type-to-transformer mapping.
func NewRegistry(p *Processor) *Registry {
	return &Registry{
		operations: map[string]Handler{
			models.TypeUpsertUser:    p.UpsertUser,
			models.TypeUpsertProduct: p.UpsertProduct,
			models.TypeUpsertClaim:   p.UpsertClaim,
		},
	}
}

// Lookup returns the transformer for a message type.
func (r *Registry) Lookup(messageType string) (Handler, bool) {
	handler, ok := r.operations[messageType]
	return handler, ok
}

// Supported reports whether the message type has a registered transformer.
func (r *Registry) Supported(messageType string) bool {
	_, ok := r.operations[messageType]
	return ok
}
