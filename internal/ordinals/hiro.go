package ordinals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const defaultHiroURL = "https://api.hiro.so"

// HiroSource queries the Hiro Ordinals API for inscriptions held by an
// address. It is the most complete public indexer and sits first in the
// resolver's source order.
type HiroSource struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewHiroSource(tracer trace.Tracer, baseURL string) *HiroSource {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultHiroURL
	}
	return &HiroSource{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (s *HiroSource) Name() string { return "hiro" }

func (s *HiroSource) FetchInscriptions(ctx context.Context, address string) ([]RawInscription, error) {
	ctx, span := s.tracer.Start(ctx, "ordinals.hiro.fetch")
	defer span.End()

	u := fmt.Sprintf("%s/ordinals/v1/inscriptions?address=%s&limit=60", s.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("hiro error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Total   int `json:"total"`
		Results []struct {
			ID          string `json:"id"`
			Number      int64  `json:"number"`
			ContentType string `json:"content_type"`
			MimeType    string `json:"mime_type"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode hiro payload: %w", err)
	}

	out := make([]RawInscription, 0, len(payload.Results))
	for _, r := range payload.Results {
		ct := r.ContentType
		if ct == "" {
			ct = r.MimeType
		}
		// Hiro carries no display name; the resolver derives one.
		out = append(out, RawInscription{
			ID:          r.ID,
			Number:      r.Number,
			ContentType: ct,
		})
	}
	return out, nil
}
