package ordinals

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type fakeSource struct {
	name    string
	results []RawInscription
	err     error
	calls   int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) FetchInscriptions(ctx context.Context, address string) ([]RawInscription, error) {
	s.calls++
	return s.results, s.err
}

func TestResolveFirstNonEmptyWins(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "a", results: []RawInscription{{ID: "abci0", Number: 1, ContentType: "image/png"}}}
	b := &fakeSource{name: "b", results: []RawInscription{{ID: "defi0", Number: 2, ContentType: "image/png"}}}
	r := NewResolver(testTracer, a, b)

	got, err := r.Resolve(context.Background(), "bc1qxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "abci0" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if b.calls != 0 {
		t.Fatalf("second source should not be queried after a non-empty first, got %d calls", b.calls)
	}
}

func TestResolveFallsThroughOnError(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "a", err: errors.New("http 502")}
	b := &fakeSource{name: "b", results: []RawInscription{{ID: "defi0", Number: 2, ContentType: "image/png"}}}
	r := NewResolver(testTracer, a, b)

	got, err := r.Resolve(context.Background(), "bc1qxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "defi0" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("both sources should be tried once: a=%d b=%d", a.calls, b.calls)
	}
}

func TestResolveEmptySuccessStillTriesNext(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "a"} // succeeds with zero results
	b := &fakeSource{name: "b", results: []RawInscription{{ID: "defi0", Number: 2, ContentType: "image/png"}}}
	r := NewResolver(testTracer, a, b)

	got, err := r.Resolve(context.Background(), "bc1qxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("empty success must not stop the chain: %+v", got)
	}
	if b.calls != 1 {
		t.Fatalf("second source should have been queried")
	}
}

func TestResolveAllEmptyIsEmptySuccess(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "a"}
	b := &fakeSource{name: "b"}
	r := NewResolver(testTracer, a, b)

	got, err := r.Resolve(context.Background(), "bc1qxyz")
	if err != nil {
		t.Fatalf("absence of inscriptions should not be an error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestResolveAllFailedIsError(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "hiro", err: errors.New("down")}
	b := &fakeSource{name: "magiceden", err: errors.New("also down")}
	r := NewResolver(testTracer, a, b)

	_, err := r.Resolve(context.Background(), "bc1qxyz")
	if err == nil {
		t.Fatal("expected error when every source fails")
	}
	if !strings.Contains(err.Error(), "hiro") || !strings.Contains(err.Error(), "magiceden") {
		t.Fatalf("error should name the failed sources, got %v", err)
	}
}

func TestResolvePartialFailureThenEmptyIsEmptySuccess(t *testing.T) {
	t.Parallel()

	a := &fakeSource{name: "a", err: errors.New("down")}
	b := &fakeSource{name: "b"} // empty success
	r := NewResolver(testTracer, a, b)

	got, err := r.Resolve(context.Background(), "bc1qxyz")
	if err != nil {
		t.Fatalf("one healthy empty source should yield empty success, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no inscriptions, got %+v", got)
	}
}

func TestResolveOneStandardGetsRelayURL(t *testing.T) {
	t.Parallel()

	ins := resolveOne(RawInscription{ID: "abci0", Number: 123, ContentType: "image/webp"})
	if ins.Kind != KindStandard {
		t.Fatalf("expected standard kind, got %s", ins.Kind)
	}
	if ins.ContentURL != "/api/content/abci0" {
		t.Fatalf("unexpected content url: %s", ins.ContentURL)
	}
	if ins.Name != "Inscriptions #123" {
		t.Fatalf("unexpected fallback name: %s", ins.Name)
	}
}

func TestResolveOneInteractiveHasNoContentURL(t *testing.T) {
	t.Parallel()

	ins := resolveOne(RawInscription{ID: "xyzi0", Number: 9, ContentType: "text/html;charset=utf-8"})
	if ins.Kind != KindInteractive {
		t.Fatalf("expected interactive kind, got %s", ins.Kind)
	}
	if ins.ContentURL != "" {
		t.Fatalf("interactive content should have no relay url, got %s", ins.ContentURL)
	}
}

func TestResolveOneKeepsSuppliedTitle(t *testing.T) {
	t.Parallel()

	ins := resolveOne(RawInscription{ID: "abci0", Number: 7, ContentType: "image/png", Title: "Bitcoin Frog #7"})
	if ins.Name != "Bitcoin Frog #7" {
		t.Fatalf("supplied title should win: %s", ins.Name)
	}
	if ins.Collection != "Bitcoin Frogs" {
		t.Fatalf("known collection should be attributed: %s", ins.Collection)
	}
}
