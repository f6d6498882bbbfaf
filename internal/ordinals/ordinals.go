package ordinals

import "context"

// RawInscription is the source-agnostic shape every indexer parser produces.
// Lifecycle is one resolution call; nothing here is persisted.
type RawInscription struct {
	ID           string
	Number       int64
	ContentType  string
	Title        string
	CollectionID string
}

// Source is one candidate inscription indexer. Each source owns its query
// shape and parser; adding an indexer means adding one Source, existing
// sources are never touched.
type Source interface {
	Name() string
	FetchInscriptions(ctx context.Context, address string) ([]RawInscription, error)
}

// Inscription is a fully resolved and classified inscription ready to be
// normalized into an asset.
type Inscription struct {
	ID          string
	Number      int64
	ContentType string
	Name        string
	Collection  string
	Kind        Kind

	// ContentURL is the relay path for kinds whose content is renderable as
	// an image; interactive/text/svg kinds are described by ContentType alone.
	ContentURL string
}
