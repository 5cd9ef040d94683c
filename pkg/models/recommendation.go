package models

import "time"

// ProductRecommendation is a product row returned by the tag recommendation
// read query.
type ProductRecommendation struct {
	VtagzID   int64      `json:"vtagzId"`
	BrandID   *int64     `json:"brandId,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Status    *string    `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}
