package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ProductAttrs are the attributes of a Product node.
type ProductAttrs struct {
	VtagzID   int64
	BrandID   *int64
	CreatedAt *time.Time
	Name      *string
	Status    *string
}

func (p ProductAttrs) props() map[string]any {
	props := map[string]any{
		"vtagzId": p.VtagzID,
	}
	if p.BrandID != nil {
		props["brandId"] = *p.BrandID
	}
	if p.CreatedAt != nil {
		props["createdAt"] = *p.CreatedAt
	}
	if p.Name != nil {
		props["name"] = *p.Name
	}
	if p.Status != nil {
		props["status"] = *p.Status
	}
	return props
}

// UpsertProduct merges a Product node by vtagzId.
func (s *Service) UpsertProduct(ctx context.Context, product ProductAttrs, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MERGE (p:Product { vtagzId: $params.vtagzId })
		ON CREATE SET p = $params
		ON MATCH SET p += $params
		RETURN p
	`

	return s.write(ctx, "graph.Service.UpsertProduct", cypher, map[string]any{
		"params": product.props(),
	}, bookmarks)
}

// UpsertProductTag merges a ProductTag node by name.
func (s *Service) UpsertProductTag(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MERGE (pt:ProductTag { name: $name })
		RETURN pt
	`

	return s.write(ctx, "graph.Service.UpsertProductTag", cypher, map[string]any{
		"name": name,
	}, bookmarks)
}

// UpsertProductTagRelationship merges a TAGGED edge from a Product to a
// ProductTag. Missing endpoints make the statement a no-op with no record.
func (s *Service) UpsertProductTagRelationship(ctx context.Context, productVtagzID int64, tagName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (p:Product { vtagzId: $vtagzId }), (pt:ProductTag { name: $tagName })
		MERGE (p)-[t:TAGGED]->(pt)
		RETURN p, pt, t
	`

	return s.write(ctx, "graph.Service.UpsertProductTagRelationship", cypher, map[string]any{
		"vtagzId": productVtagzID,
		"tagName": tagName,
	}, bookmarks)
}

// DropProductTagRelationships deletes every TAGGED edge of a Product. Used
// together with UpsertProductTagRelationship to give tag lists full-replace
// semantics: the edge set always reflects the latest message.
func (s *Service) DropProductTagRelationships(ctx context.Context, productVtagzID int64, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (p:Product { vtagzId: $vtagzId })-[t:TAGGED]->(pt:ProductTag)
		DELETE t
		RETURN p, pt
	`

	return s.write(ctx, "graph.Service.DropProductTagRelationships", cypher, map[string]any{
		"vtagzId": productVtagzID,
	}, bookmarks)
}
