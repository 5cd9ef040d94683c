package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vtagz/recommendations/pkg/graph"
	"github.com/vtagz/recommendations/pkg/models"
)

func productMessage(t *testing.T, body string) *models.Message {
	t.Helper()
	return models.NewMessage("msg-1", "receipt-1", []byte(body))
}

func TestUpsertProduct_NodeOnly(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"tags absent", `{"type": "upsertProduct", "vtagzId": 1, "brandId": 1, "name": "test", "status": "active"}`},
		{"tags null", `{"type": "upsertProduct", "vtagzId": 1, "brandId": 1, "name": "test", "status": "active", "tags": null}`},
		{"tags empty list", `{"type": "upsertProduct", "vtagzId": 1, "tags": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newFakeEngine()
			p := newTestProcessor(engine)

			err := p.UpsertProduct(context.Background(), productMessage(t, tt.body))
			require.NoError(t, err)

			assert.Equal(t, 1, engine.callCount(), "only the product node may be written")
			assert.Len(t, engine.callsFor("UpsertProduct"), 1)
			assert.Empty(t, engine.callsFor("DropProductTagRelationships"))
		})
	}
}

func TestUpsertProduct_TagReplacement(t *testing.T) {
	engine := newFakeEngine()
	p := newTestProcessor(engine)

	msg := productMessage(t, `{
		"type": "upsertProduct",
		"vtagzId": 7,
		"brandId": 3,
		"createdAt": "2021-01-01T00:00:00.000Z",
		"name": "test",
		"status": "active",
		"tags": ["summer", "drinks"]
	}`)

	err := p.UpsertProduct(context.Background(), msg)
	require.NoError(t, err)

	productCalls := engine.callsFor("UpsertProduct")
	require.Len(t, productCalls, 1)
	attrs, ok := productCalls[0].arg.(graph.ProductAttrs)
	require.True(t, ok)
	assert.Equal(t, int64(7), attrs.VtagzID)
	require.NotNil(t, attrs.BrandID)
	assert.Equal(t, int64(3), *attrs.BrandID)

	assert.Len(t, engine.callsFor("DropProductTagRelationships"), 1)
	assert.Len(t, engine.callsFor("UpsertProductTag"), 2)

	// Edge writes run last, seeded with the product, drop, and tag
	// bookmarks so each session observes both endpoints.
	relCalls := engine.callsFor("UpsertProductTagRelationship")
	require.Len(t, relCalls, 2)
	tagNames := []string{relCalls[0].arg.(string), relCalls[1].arg.(string)}
	assert.ElementsMatch(t, []string{"summer", "drinks"}, tagNames)
	for _, call := range relCalls {
		assert.Len(t, call.bookmarks, 4)
	}
}

func TestUpsertProduct_Validation(t *testing.T) {
	t.Run("vtagzId missing", func(t *testing.T) {
		engine := newFakeEngine()
		p := newTestProcessor(engine)

		err := p.UpsertProduct(context.Background(), productMessage(t, `{"type": "upsertProduct", "name": "test"}`))
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Zero(t, engine.callCount())
	})

	t.Run("brandId wrong type", func(t *testing.T) {
		engine := newFakeEngine()
		p := newTestProcessor(engine)

		err := p.UpsertProduct(context.Background(), productMessage(t, `{"type": "upsertProduct", "vtagzId": 1, "brandId": "nope"}`))
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Zero(t, engine.callCount())
	})

	t.Run("tags not a list of strings", func(t *testing.T) {
		engine := newFakeEngine()
		p := newTestProcessor(engine)

		err := p.UpsertProduct(context.Background(), productMessage(t, `{"type": "upsertProduct", "vtagzId": 1, "tags": [1, 2]}`))
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Zero(t, engine.callCount())
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		engine := newFakeEngine()
		p := newTestProcessor(engine)

		err := p.UpsertProduct(context.Background(), productMessage(t, `{"type": "upsertProduct", "vtagzId": 1, "createdAt": "not-a-date"}`))
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Zero(t, engine.callCount())
	})
}
