package processor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vtagz/recommendations/pkg/graph"
	"github.com/vtagz/recommendations/pkg/models"
)

// UpsertProduct validates an upsertProduct message and applies it. When the
// message carries a tag list the product's tag edges are fully replaced:
// existing TAGGED edges are dropped and the listed tags recreated. An absent
// or null tags field leaves the edges untouched.
func (p *Processor) UpsertProduct(ctx context.Context, msg *models.Message) error {
	var body models.ProductBody
	if err := decodeBody(msg.Body, &body); err != nil {
		return err
	}

	if body.VtagzID == nil || *body.VtagzID == 0 {
		return typeError("vtagzId", "number")
	}

	var createdAt *time.Time
	if body.CreatedAt != nil {
		ts, err := models.ParseTimestamp(*body.CreatedAt)
		if err != nil {
			return rangeError("createdAt", "is not a valid ISO timestamp")
		}
		createdAt = &ts
	}

	var tags []string
	if body.TagsPresent() {
		if err := json.Unmarshal(body.Tags, &tags); err != nil {
			return typeError("tags", "list of strings")
		}
	}

	vtagzID := int64(*body.VtagzID)
	var brandID *int64
	if body.BrandID != nil {
		id := int64(*body.BrandID)
		brandID = &id
	}

	productResult, err := p.engine.UpsertProduct(ctx, graph.ProductAttrs{
		VtagzID:   vtagzID,
		BrandID:   brandID,
		CreatedAt: createdAt,
		Name:      body.Name,
		Status:    body.Status,
	}, nil)
	if err != nil {
		return err
	}

	if len(tags) == 0 {
		return nil
	}

	bookmarks := append(neo4j.Bookmarks{}, productResult.Bookmarks...)

	// Drop the existing tag edges and upsert the tag nodes concurrently;
	// the edge set must end up reflecting exactly this message's list.
	tagOps := []operation{
		func(ctx context.Context) (*graph.Result, error) {
			return p.engine.DropProductTagRelationships(ctx, vtagzID, nil)
		},
	}
	for _, tag := range tags {
		tag := tag
		tagOps = append(tagOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertProductTag(ctx, tag, nil)
		})
	}

	tagBookmarks, err := runAll(ctx, tagOps)
	if err != nil {
		return err
	}
	bookmarks = append(bookmarks, tagBookmarks...)

	var relationshipOps []operation
	for _, tag := range tags {
		tag := tag
		relationshipOps = append(relationshipOps, func(ctx context.Context) (*graph.Result, error) {
			return p.engine.UpsertProductTagRelationship(ctx, vtagzID, tag, bookmarks)
		})
	}

	if _, err := runAll(ctx, relationshipOps); err != nil {
		return err
	}

	return nil
}
