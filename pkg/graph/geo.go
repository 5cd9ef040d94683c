package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// UpsertState merges a State node by name.
func (s *Service) UpsertState(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MERGE (st:State { name: $name })
		RETURN st
	`

	return s.write(ctx, "graph.Service.UpsertState", cypher, map[string]any{
		"name": name,
	}, bookmarks)
}

// UpsertCity merges a City node by name.
func (s *Service) UpsertCity(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MERGE (c:City { name: $name })
		RETURN c
	`

	return s.write(ctx, "graph.Service.UpsertCity", cypher, map[string]any{
		"name": name,
	}, bookmarks)
}

// UpsertCountry merges a Country node by name.
func (s *Service) UpsertCountry(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MERGE (c:Country { name: $name })
		RETURN c
	`

	return s.write(ctx, "graph.Service.UpsertCountry", cypher, map[string]any{
		"name": name,
	}, bookmarks)
}
