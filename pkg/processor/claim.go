package processor

import (
	"context"

	"github.com/vtagz/recommendations/pkg/graph"
	"github.com/vtagz/recommendations/pkg/models"
)

// UpsertClaim validates an upsertClaim message and applies it: the claim
// relationship chain and any supplied geo nodes first, then the CLAIMED_IN
// relationships seeded with the pooled phase-one bookmarks.
func (p *Processor) UpsertClaim(ctx context.Context, msg *models.Message) error {
	var body models.ClaimBody
	if err := decodeBody(msg.Body, &body); err != nil {
		return err
	}

	if body.ClaimVtagzID == nil {
		return typeError("claimVtagzId", "number")
	}
	if body.UserVtagzID == nil {
		return typeError("userVtagzId", "number")
	}
	if body.ProductVtagzID == nil {
		return typeError("productVtagzId", "number")
	}

	claimVtagzID := int64(*body.ClaimVtagzID)
	userVtagzID := int64(*body.UserVtagzID)
	productVtagzID := int64(*body.ProductVtagzID)

	nodeOps := []operation{
		func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertClaim(ctx, graph.ClaimAttrs{
				ClaimVtagzID:   claimVtagzID,
				UserVtagzID:    userVtagzID,
				ProductVtagzID: productVtagzID,
				Latitude:       body.Latitude,
				Longitude:      body.Longitude,
				Postal:         body.Postal,
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

	var relationshipOps []operation
	if body.State != nil {
		state := *body.State
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertClaimClaimedInStateRelationship(ctx, claimVtagzID, state, bookmarks)
		})
	}
	if body.City != nil {
		city := *body.City
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertClaimClaimedInCityRelationship(ctx, claimVtagzID, city, bookmarks)
		})
	}
	if body.Country != nil {
		country := *body.Country
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertClaimClaimedInCountryRelationship(ctx, claimVtagzID, country, bookmarks)
		})
	}

	if _, err := runAll(ctx, relationshipOps); err != nil {
		return err
	}

	return nil
}
