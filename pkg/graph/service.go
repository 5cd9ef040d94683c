package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vtagz/recommendations/internal/tracing"
)

// Result is the outcome of a single engine operation: the records the
// statement returned and the bookmarks the session ended on. Relationship
// upserts whose endpoints are missing return zero records rather than an
// error; callers that require the endpoints to pre-exist can check Count.
type Result struct {
	Records   []*neo4j.Record
	Bookmarks neo4j.Bookmarks
}

// Count returns the number of records the statement produced.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

// Service executes the upsert and read statements for the recommendations
// graph. It is stateless; sessions are opened per call and never shared.
type Service struct {
	client *Client
	logger ectologger.Logger
}

// NewService creates a new graph service
func NewService(client *Client, logger ectologger.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

func (s *Service) write(ctx context.Context, spanName string, cypher string, params map[string]any, bookmarks neo4j.Bookmarks) (*Result, error) {
	return s.run(ctx, spanName, neo4j.AccessModeWrite, cypher, params, bookmarks)
}

func (s *Service) read(ctx context.Context, spanName string, cypher string, params map[string]any, bookmarks neo4j.Bookmarks) (*Result, error) {
	return s.run(ctx, spanName, neo4j.AccessModeRead, cypher, params, bookmarks)
}

func (s *Service) run(ctx context.Context, spanName string, accessMode neo4j.AccessMode, cypher string, params map[string]any, bookmarks neo4j.Bookmarks) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	session := s.client.Session(ctx, accessMode, bookmarks)
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	}

	var raw any
	var err error
	if accessMode == neo4j.AccessModeRead {
		raw, err = session.ExecuteRead(ctx, work)
	} else {
		raw, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("operation", spanName).Error("Graph statement failed")
		return nil, fmt.Errorf("%s: %w", spanName, err)
	}

	records, _ := raw.([]*neo4j.Record)

	return &Result{
		Records:   records,
		Bookmarks: session.LastBookmarks(),
	}, nil
}
