package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ClaimAttrs are the attributes of a Claim and the identity keys of the
// user and product it connects.
type ClaimAttrs struct {
	ClaimVtagzID   int64
	UserVtagzID    int64
	ProductVtagzID int64
	Latitude       *float64
	Longitude      *float64
	Postal         *string
}

func (c ClaimAttrs) props() map[string]any {
	props := map[string]any{
		"vtagzId": c.ClaimVtagzID,
	}
	if c.Latitude != nil {
		props["latitude"] = *c.Latitude
	}
	if c.Longitude != nil {
		props["longitude"] = *c.Longitude
	}
	if c.Postal != nil {
		props["postal"] = *c.Postal
	}
	return props
}

// UpsertClaim merges the CLAIMED / INCLUDES_PRODUCT relationship chain
// between a User and a Product through a Claim node. Both endpoints are
// matched by identity key; if either is missing the statement returns no
// record and nothing is written.
func (s *Service) UpsertClaim(ctx context.Context, claim ClaimAttrs, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (u:User { vtagzId: $userVtagzId }), (p:Product { vtagzId: $productVtagzId })
		MERGE (u)-[c:CLAIMED]->(cl:Claim)-[i:INCLUDES_PRODUCT]->(p)
		SET cl = $claimParams
		RETURN u, p, c, cl, i
	`

	return s.write(ctx, "graph.Service.UpsertClaim", cypher, map[string]any{
		"userVtagzId":    claim.UserVtagzID,
		"productVtagzId": claim.ProductVtagzID,
		"claimParams":    claim.props(),
	}, bookmarks)
}

// UpsertClaimClaimedInCityRelationship merges a CLAIMED_IN edge from a
// Claim to a City.
func (s *Service) UpsertClaimClaimedInCityRelationship(ctx context.Context, claimVtagzID int64, cityName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (c:Claim { vtagzId: $claimVtagzId }), (ci:City { name: $cityName })
		MERGE (c)-[cl:CLAIMED_IN]->(ci)
		RETURN c, ci, cl
	`

	return s.write(ctx, "graph.Service.UpsertClaimClaimedInCityRelationship", cypher, map[string]any{
		"claimVtagzId": claimVtagzID,
		"cityName":     cityName,
	}, bookmarks)
}

// UpsertClaimClaimedInStateRelationship merges a CLAIMED_IN edge from a
// Claim to a State.
func (s *Service) UpsertClaimClaimedInStateRelationship(ctx context.Context, claimVtagzID int64, stateName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (c:Claim { vtagzId: $claimVtagzId }), (st:State { name: $stateName })
		MERGE (c)-[cl:CLAIMED_IN]->(st)
		RETURN c, st, cl
	`

	return s.write(ctx, "graph.Service.UpsertClaimClaimedInStateRelationship", cypher, map[string]any{
		"claimVtagzId": claimVtagzID,
		"stateName":    stateName,
	}, bookmarks)
}

// UpsertClaimClaimedInCountryRelationship merges a CLAIMED_IN edge from a
// Claim to a Country.
func (s *Service) UpsertClaimClaimedInCountryRelationship(ctx context.Context, claimVtagzID int64, countryName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (c:Claim { vtagzId: $claimVtagzId }), (co:Country { name: $countryName })
		MERGE (c)-[cl:CLAIMED_IN]->(co)
		RETURN c, co, cl
	`

	return s.write(ctx, "graph.Service.UpsertClaimClaimedInCountryRelationship", cypher, map[string]any{
		"claimVtagzId": claimVtagzID,
		"countryName":  countryName,
	}, bookmarks)
}
