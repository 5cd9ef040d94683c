package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// UserAttrs are the attributes of a User node. Optional fields left nil are
// omitted from the statement parameters, so an on-match overlay never nulls
// out previously written values.
type UserAttrs struct {
	VtagzID       int64
	PhoneNumber   *string
	WalletAddress *string
	CreatedAt     *time.Time
	Latitude      *float64
	Longitude     *float64
	Postal        *string
}

func (u UserAttrs) props() map[string]any {
	props := map[string]any{
		"vtagzId": u.VtagzID,
	}
	if u.PhoneNumber != nil {
		props["phoneNumber"] = *u.PhoneNumber
	}
	if u.WalletAddress != nil {
		props["walletAddress"] = *u.WalletAddress
	}
	if u.CreatedAt != nil {
		props["createdAt"] = *u.CreatedAt
	}
	if u.Latitude != nil {
		props["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		props["longitude"] = *u.Longitude
	}
	if u.Postal != nil {
		props["postal"] = *u.Postal
	}
	return props
}

// UpsertUser merges a User node by vtagzId. On create all supplied
// attributes are set; on match they overlay the existing ones.
func (s *Service) UpsertUser(ctx context.Context, user UserAttrs, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MERGE (u:User { vtagzId: $params.vtagzId })
		ON CREATE SET u = $params
		ON MATCH SET u += $params
		RETURN u
	`

	return s.write(ctx, "graph.Service.UpsertUser", cypher, map[string]any{
		"params": user.props(),
	}, bookmarks)
}

// UpsertUserCreatedInCityRelationship merges a CREATED_IN edge from a User
// to a City. Both endpoints are matched by identity key; if either is
// missing the statement is a no-op returning no record.
func (s *Service) UpsertUserCreatedInCityRelationship(ctx context.Context, userVtagzID int64, cityName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (u:User { vtagzId: $userVtagzId }), (c:City { name: $cityName })
		MERGE (u)-[ci:CREATED_IN]->(c)
		RETURN u, c, ci
	`

	return s.write(ctx, "graph.Service.UpsertUserCreatedInCityRelationship", cypher, map[string]any{
		"userVtagzId": userVtagzID,
		"cityName":    cityName,
	}, bookmarks)
}

// UpsertUserCreatedInStateRelationship merges a CREATED_IN edge from a User
// to a State.
func (s *Service) UpsertUserCreatedInStateRelationship(ctx context.Context, userVtagzID int64, stateName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (u:User { vtagzId: $userVtagzId }), (st:State { name: $stateName })
		MERGE (u)-[ci:CREATED_IN]->(st)
		RETURN u, st, ci
	`

	return s.write(ctx, "graph.Service.UpsertUserCreatedInStateRelationship", cypher, map[string]any{
		"userVtagzId": userVtagzID,
		"stateName":   stateName,
	}, bookmarks)
}

// UpsertUserCreatedInCountryRelationship merges a CREATED_IN edge from a
// User to a Country.
func (s *Service) UpsertUserCreatedInCountryRelationship(ctx context.Context, userVtagzID int64, countryName string, bookmarks neo4j.Bookmarks) (*Result, error) {
	cypher := `
		MATCH (u:User { vtagzId: $userVtagzId }), (c:Country { name: $countryName })
		MERGE (u)-[ci:CREATED_IN]->(c)
		RETURN u, c, ci
	`

	return s.write(ctx, "graph.Service.UpsertUserCreatedInCountryRelationship", cypher, map[string]any{
		"userVtagzId": userVtagzID,
		"countryName": countryName,
	}, bookmarks)
}
