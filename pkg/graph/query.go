package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vtagz/recommendations/pkg/models"
)

// GetProductRecommendationByTag reads the active products tagged with the
// given name. It participates in the same bookmark protocol as the writes,
// so a caller holding write bookmarks gets read-after-write consistency.
func (s *Service) GetProductRecommendationByTag(ctx context.Context, productTagName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (:ProductTag { name: $name })<-[:TAGGED]-(p:Product { status: "active" })
		RETURN p
	`

	return s.read(ctx, "graph.Service.GetProductRecommendationByTag", cypher, map[string]any{
		"name": productTagName,
	}, bookmarks)
}

// ProductRecommendationsByTag runs the tag recommendation query and maps the
// returned nodes into product rows.
func (s *Service) ProductRecommendationsByTag(ctx context.Context, productTagName string) ([]models.ProductRecommendation, error) {
	result, err := s.GetProductRecommendationByTag(ctx, productTagName, nil)
	if err != nil {
		return nil, err
	}

	products := make([]models.ProductRecommendation, 0, result.Count())
	for _, record := range result.Records {
		value, ok := record.Get("p")
		if !ok {
			continue
		}
		node, ok := value.(neo4j.Node)
		if !ok {
			continue
		}
		products = append(products, productFromNode(node))
	}

	return products, nil
}

func productFromNode(node neo4j.Node) models.ProductRecommendation {
	product := models.ProductRecommendation{}

	if v, ok := node.Props["vtagzId"].(int64); ok {
		product.VtagzID = v
	}
	if v, ok := node.Props["brandId"].(int64); ok {
		product.BrandID = &v
	}
	if v, ok := node.Props["name"].(string); ok {
		product.Name = &v
	}
	if v, ok := node.Props["status"].(string); ok {
		product.Status = &v
	}
	if v, ok := node.Props["createdAt"].(time.Time); ok {
		product.CreatedAt = &v
	}

	return product
}
