package ordinals

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ContentPathPrefix is the relay route resolved content references point at.
const ContentPathPrefix = "/api/content/"

// Resolver queries an ordered list of inscription indexers. Order is a
// resilience policy: the most trusted and most complete source sits first,
// and sources are tried strictly in declared order.
type Resolver struct {
	sources []Source
	tracer  trace.Tracer
}

func NewResolver(tracer trace.Tracer, sources ...Source) *Resolver {
	return &Resolver{sources: sources, tracer: tracer}
}

// Resolve walks the source list and stops at the first source that yields a
// non-empty inscription list. A source failure or an empty success both move
// on to the next source; holding no inscriptions is not an error, so when
// every source comes back empty the result is an empty success. Only when
// every source failed outright does Resolve return an error.
func (r *Resolver) Resolve(ctx context.Context, address string) ([]Inscription, error) {
	ctx, span := r.tracer.Start(ctx, "ordinals.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("address", address))

	var failed []string
	for _, src := range r.sources {
		raw, err := src.FetchInscriptions(ctx, address)
		if err != nil {
			log.Printf("ordinals source %s failed for %s: %v", src.Name(), address, err)
			failed = append(failed, src.Name())
			continue
		}
		if len(raw) == 0 {
			continue
		}
		span.SetAttributes(attribute.String("source", src.Name()), attribute.Int("count", len(raw)))
		return resolveAll(raw), nil
	}

	if len(r.sources) > 0 && len(failed) == len(r.sources) {
		return nil, fmt.Errorf("all inscription sources failed: %s", strings.Join(failed, ", "))
	}
	return nil, nil
}

func resolveAll(raw []RawInscription) []Inscription {
	out := make([]Inscription, 0, len(raw))
	for _, r := range raw {
		out = append(out, resolveOne(r))
	}
	return out
}

func resolveOne(raw RawInscription) Inscription {
	c := Classify(raw)
	collection := fallbackCollection(c)

	name := strings.TrimSpace(raw.Title)
	if name == "" {
		name = fmt.Sprintf("%s #%d", collection, raw.Number)
	}

	ins := Inscription{
		ID:          raw.ID,
		Number:      raw.Number,
		ContentType: raw.ContentType,
		Name:        name,
		Collection:  collection,
		Kind:        c.Kind,
	}
	if c.Kind == KindStandard {
		ins.ContentURL = ContentPathPrefix + raw.ID
	}
	return ins
}
