// Package docstore talks to the remote document store that holds generated
// assessment instruments. The store's wire protocol is outside Lodestar's
// contract: only the fields below are read or written, and everything else
// the service stores is opaque to us.
package docstore

import (
	"context"
	"time"

	"github.com/kingrea/lodestar/internal/taxonomy"
)

// Instrument type values carried in persisted documents.
const (
	TypeSelf = "self"
	TypeTeam = "team"
)

// OwnerInfo identifies the campaign owner inside a document.
type OwnerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// InstrumentDocument is one deployable assessment instrument as persisted
// in the document store. The team variant carries a back-reference to its
// linked self instrument so the pairing stays traceable.
type InstrumentDocument struct {
	ID               string       `json:"id,omitempty"`
	OwnerInfo        OwnerInfo    `json:"ownerInfo"`
	OwnerID          string       `json:"ownerId"`
	BundleID         string       `json:"bundleId"`
	InstrumentType   string       `json:"instrumentType"`
	Campaign         taxonomy.Set `json:"campaign"`
	Password         string       `json:"password"`
	CreatedAt        time.Time    `json:"createdAt"`
	SelfInstrumentID string       `json:"selfInstrumentId,omitempty"`
}

// Creator persists instrument documents. The bundle generator depends on
// this rather than the HTTP client so tests can fail the second write
// deterministically.
type Creator interface {
	Create(ctx context.Context, doc InstrumentDocument) (string, error)
}

// Getter fetches a persisted document by id.
type Getter interface {
	Get(ctx context.Context, id string) (InstrumentDocument, error)
}
