package processor

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/vtagz/recommendations/pkg/graph"
)

type engineCall struct {
	op        string
	arg       any
	bookmarks neo4j.Bookmarks
}

// fakeEngine records every operation with the bookmarks it was seeded with
// and hands back one unique bookmark per successful call.
type fakeEngine struct {
	mu     sync.Mutex
	calls  []engineCall
	failOn map[string]error
	seq    int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{failOn: map[string]error{}}
}

func (f *fakeEngine) record(op string, arg any, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, engineCall{op: op, arg: arg, bookmarks: bookmarks})

	if err, ok := f.failOn[op]; ok {
		return nil, err
	}

	f.seq++
	return &graph.Result{
		Bookmarks: neo4j.BookmarksFromRawValues(fmt.Sprintf("bm-%s-%d", op, f.seq)),
	}, nil
}

func (f *fakeEngine) callsFor(op string) []engineCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []engineCall
	for _, call := range f.calls {
		if call.op == op {
			matched = append(matched, call)
		}
	}
	return matched
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeEngine) UpsertUser(ctx context.Context, user graph.UserAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertUser", user, bookmarks)
}

func (f *fakeEngine) UpsertProduct(ctx context.Context, product graph.ProductAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertProduct", product, bookmarks)
}

func (f *fakeEngine) UpsertProductTag(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertProductTag", name, bookmarks)
}

func (f *fakeEngine) UpsertClaim(ctx context.Context, claim graph.ClaimAttrs, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertClaim", claim, bookmarks)
}

func (f *fakeEngine) UpsertState(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertState", name, bookmarks)
}

func (f *fakeEngine) UpsertCity(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertCity", name, bookmarks)
}

func (f *fakeEngine) UpsertCountry(ctx context.Context, name string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertCountry", name, bookmarks)
}

func (f *fakeEngine) UpsertProductTagRelationship(ctx context.Context, productVtagzID int64, tagName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertProductTagRelationship", tagName, bookmarks)
}

func (f *fakeEngine) DropProductTagRelationships(ctx context.Context, productVtagzID int64, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("DropProductTagRelationships", productVtagzID, bookmarks)
}

func (f *fakeEngine) UpsertUserCreatedInCityRelationship(ctx context.Context, userVtagzID int64, cityName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertUserCreatedInCityRelationship", cityName, bookmarks)
}

func (f *fakeEngine) UpsertUserCreatedInStateRelationship(ctx context.Context, userVtagzID int64, stateName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertUserCreatedInStateRelationship", stateName, bookmarks)
}

func (f *fakeEngine) UpsertUserCreatedInCountryRelationship(ctx context.Context, userVtagzID int64, countryName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertUserCreatedInCountryRelationship", countryName, bookmarks)
}

func (f *fakeEngine) UpsertClaimClaimedInCityRelationship(ctx context.Context, claimVtagzID int64, cityName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertClaimClaimedInCityRelationship", cityName, bookmarks)
}

func (f *fakeEngine) UpsertClaimClaimedInStateRelationship(ctx context.Context, claimVtagzID int64, stateName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertClaimClaimedInStateRelationship", stateName, bookmarks)
}

func (f *fakeEngine) UpsertClaimClaimedInCountryRelationship(ctx context.Context, claimVtagzID int64, countryName string, bookmarks neo4j.Bookmarks) (*graph.Result, error) {
	return f.record("UpsertClaimClaimedInCountryRelationship", countryName, bookmarks)
}
