// Package models defines the queue message envelope and the typed bodies
// for each supported change event.
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Supported message types. The registry is closed over exactly these.
const (
	TypeUpsertUser    = "upsertUser"
	TypeUpsertProduct = "upsertProduct"
	TypeUpsertClaim   = "upsertClaim"
)

// Message is a single received queue message. Type is parsed from the body
// envelope up front; an empty Type means the body was not a routable event.
type Message struct {
	MessageID     string
	ReceiptHandle string
	Body          []byte
	Type          string
}

type envelope struct {
	Type string `json:"type"`
}

// NewMessage wraps a raw queue message and extracts the declared type.
// Bodies that are not JSON objects, or that carry no type tag, yield an
// empty Type and are routed as unsupported by the consumer.
func NewMessage(messageID string, receiptHandle string, body []byte) *Message {
	msg := &Message{
		MessageID:     messageID,
		ReceiptHandle: receiptHandle,
		Body:          body,
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		msg.Type = env.Type
	}

	return msg
}

// UserBody is the payload of an upsertUser message. Optional fields are
// pointers so that absent fields can be skipped rather than written as
// zero values.
type UserBody struct {
	Type          string   `json:"type"`
	VtagzID       *float64 `json:"vtagzId"`
	PhoneNumber   *string  `json:"phoneNumber"`
	WalletAddress *string  `json:"walletAddress"`
	CreatedAt     *string  `json:"createdAt"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	City          *string  `json:"city"`
	State         *string  `json:"state"`
	Country       *string  `json:"country"`
	Postal        *string  `json:"postal"`
}

// ProductBody is the payload of an upsertProduct message. Tags stays raw so
// the three-way distinction is preserved: field absent means "leave tags
// unchanged", explicit null likewise, a present list means "replace tags".
type ProductBody struct {
	Type      string          `json:"type"`
	VtagzID   *float64        `json:"vtagzId"`
	BrandID   *float64        `json:"brandId"`
	CreatedAt *string         `json:"createdAt"`
	Name      *string         `json:"name"`
	Status    *string         `json:"status"`
	Tags      json.RawMessage `json:"tags"`
}

// TagsPresent reports whether the message carried a tags list (as opposed
// to the field being absent or an explicit null).
func (b *ProductBody) TagsPresent() bool {
	return len(b.Tags) > 0 && !bytes.Equal(b.Tags, []byte("null"))
}

// ClaimBody is the payload of an upsertClaim message.
type ClaimBody struct {
	Type           string   `json:"type"`
	ClaimVtagzID   *float64 `json:"claimVtagzId"`
	UserVtagzID    *float64 `json:"userVtagzId"`
	ProductVtagzID *float64 `json:"productVtagzId"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	City           *string  `json:"city"`
	State          *string  `json:"state"`
	Country        *string  `json:"country"`
	Postal         *string  `json:"postal"`
}

// Accepted timestamp layouts, most to least specific. Fractional seconds
// are accepted on any layout that carries seconds; offsetless values are
// taken as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp normalizes an ISO-8601 date-time into a time.Time. Partial
// forms (date only, no seconds, no offset) are valid. The driver persists
// time.Time values as zoned datetimes, so an explicit offset survives into
// the store.
func ParseTimestamp(value string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}
