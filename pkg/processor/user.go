package processor

import (
	"context"
	"time"

	"github.com/vtagz/recommendations/pkg/graph"
	"github.com/vtagz/recommendations/pkg/models"
)

// UpsertUser validates an upsertUser message and applies it: the User node
// and any supplied geo nodes first, then the CREATED_IN relationships
// seeded with the pooled bookmarks of phase one.
func (p *Processor) UpsertUser(ctx context.Context, msg *models.Message) error {
	var body models.UserBody
	if err := decodeBody(msg.Body, &body); err != nil {
		return err
	}

	if body.VtagzID == nil || *body.VtagzID == 0 {
		return rangeError("vtagzId", "must be a number")
	}

	var createdAt *time.Time
	if body.CreatedAt != nil {
		ts, err := models.ParseTimestamp(*body.CreatedAt)
		if err != nil {
			return rangeError("createdAt", "is not a valid ISO timestamp")
		}
		createdAt = &ts
	}

	vtagzID := int64(*body.VtagzID)

	// Phase 1: the user node and any supplied geo nodes, each in its own
	// independent session.
	nodeOps := []operation{
		func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertUser(ctx, graph.UserAttrs{
				VtagzID:       vtagzID,
				PhoneNumber:   body.PhoneNumber,
				WalletAddress: body.WalletAddress,
				CreatedAt:     createdAt,
				Latitude:      body.Latitude,
				Longitude:     body.Longitude,
				Postal:        body.Postal,
			}, nil)
		},
	}
	if body.State != nil {
		state := *body.State
		nodeOps = append(nodeOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertState(ctx, state, nil)
		})
	}
	if body.City != nil {
		city := *body.City
		nodeOps = append(nodeOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertCity(ctx, city, nil)
		})
	}
	if body.Country != nil {
		country := *body.Country
		nodeOps = append(nodeOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertCountry(ctx, country, nil)
		})
	}

	bookmarks, err := runAll(ctx, nodeOps)
	if err != nil {
		return err
	}

	// Phase 2: relationships from the user to each supplied geo node. The
	// bookmark pool guarantees every session observes both endpoints.
	var relationshipOps []operation
	if body.State != nil {
		state := *body.State
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertUserCreatedInStateRelationship(ctx, vtagzID, state, bookmarks)
		})
	}
	if body.City != nil {
		city := *body.City
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertUserCreatedInCityRelationship(ctx, vtagzID, city, bookmarks)
		})
	}
	if body.Country != nil {
		country := *body.Country
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertUserCreatedInCountryRelationship(ctx, vtagzID, country, bookmarks)
		})
	}

	if _, err := runAll(ctx, relationshipOps); err != nil {
		return err
	}

	return nil
}
