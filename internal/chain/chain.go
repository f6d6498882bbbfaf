package chain

import (
	"context"

	"walletscope/internal/domain"
)

// Handler discovers the assets one chain holds for one address. Handlers own
// no mutable cross-call state; each call is independent and side-effect-free
// beyond outbound network reads.
type Handler interface {
	Descriptor() domain.ChainDescriptor

	// Accepts reports whether the address matches this chain's formats.
	Accepts(address string) bool

	// GetAllAssets returns whatever assets could be discovered plus error
	// notes for the sub-fetches that failed. A sub-fetch failure degrades
	// the result set, it never fails the whole call.
	GetAllAssets(ctx context.Context, address string) domain.ChainResult
}
