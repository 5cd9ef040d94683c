// Package processor turns validated change events into causally ordered
// graph upserts. Each transformer validates its whole payload first, then
// drives the engine through two phases: independent node upserts whose
// bookmarks are pooled, and relationship upserts seeded with that pool so
// every edge write observes both of its endpoints.
package processor

import (
	"context"
	"sync"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vtagz/recommendations/pkg/graph"
)

// Engine is the graph upsert surface the transformers drive. Every call
// opens its own store session seeded with the supplied bookmarks and
// returns the session's resulting bookmarks on the Result.
type Engine interface {
	UpsertUser(ctx context.Context, user graph.UserAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertProduct(ctx context.Context, product graph.ProductAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertProductTag(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertClaim(ctx context.Context, claim graph.ClaimAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertState(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertCity(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertCountry(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertProductTagRelationship(ctx context.Context, productVtagzID int64, tagName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	DropProductTagRelationships(ctx context.Context, productVtagzID int64, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertUserCreatedInCityRelationship(ctx context.Context, userVtagzID int64, cityName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertUserCreatedInStateRelationship(ctx context.Context, userVtagzID int64, stateName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertUserCreatedInCountryRelationship(ctx context.Context, userVtagzID int64, countryName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertClaimClaimedInCityRelationship(ctx context.Context, claimVtagzID int64, cityName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertClaimClaimedInStateRelationship(ctx context.Context, claimVtagzID int64, stateName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
	UpsertClaimClaimedInCountryRelationship(ctx context.Context, claimVtagzID int64, countryName string, bookmarks neo4j.Bookmarks) (*graph.Result, error)
}

// Processor holds the transformers for the supported message types.
type Processor struct {
	engine Engine
	logger ectologger.Logger
}

// New creates a new message processor.
func New(engine Engine, logger ectologger.Logger) *Processor {
	return &Processor{
		engine: engine,
		logger: logger,
	}
}

type operation func(ctx context.Context) (*graph.Result, error)

// runAll runs every operation concurrently and waits for all of them to
// settle; a failed sibling never cancels the others. It returns the pooled
// bookmarks of the successful operations and the first error encountered.
func runAll(ctx context.Context, ops []operation) (neo4j.Bookmarks, error) {
	results := make([]*graph.Result, len(ops))
	errs := make([]error, len(ops))

	var wg sync.WaitGroup
	for i, op := range ops {
		wg.Add(1)
		go func(i int, op operation) {
			defer wg.Done()
			results[i], errs[i] = op(ctx)
		}(i, op)
	}
	wg.Wait()

	var bookmarks neo4j.Bookmarks
	var firstErr error
	for i := range ops {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		bookmarks = append(bookmarks, results[i].Bookmarks...)
	}

	return bookmarks, firstErr
}
