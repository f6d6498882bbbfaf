package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// inscription ids are a 64-hex txid, the letter i, and an output index
var inscriptionIDRe = regexp.MustCompile(`^[0-9a-f]{64}i[0-9]+$`)

// ContentRelay proxies ordinal inscription bytes from the upstream content
// host so browsers can load them same-origin. No retry, no fallback host.
type ContentRelay struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	tracer  trace.Tracer
}

func NewContentRelay(tracer trace.Tracer, baseURL string, timeoutSecs int) *ContentRelay {
	if timeoutSecs <= 0 {
		timeoutSecs = 10
	}
	return &ContentRelay{
		client:  &http.Client{},
		baseURL: baseURL,
		timeout: time.Duration(timeoutSecs) * time.Second,
		tracer:  tracer,
	}
}

// Relay godoc
// @Summary      Relay ordinal inscription content
// @Description  Fetches raw inscription bytes from the upstream ordinals content host and serves them with the upstream content type
// @Tags         content
// @Param        inscriptionID  path  string  true  "Inscription ID (txid + i + index)"
// @Success      200  {string}  binary
// @Failure      404  {object}  map[string]string
// @Router       /api/content/{inscriptionID} [get]
func (cr *ContentRelay) Relay(c *gin.Context) {
	ctx, span := cr.tracer.Start(c.Request.Context(), "relay.content")
	defer span.End()

	id := c.Param("inscriptionID")
	span.SetAttributes(attribute.String("inscription_id", id))

	if !inscriptionIDRe.MatchString(id) {
		cr.notFound(c, id)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cr.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cr.baseURL+"/"+id, nil)
	if err != nil {
		cr.notFound(c, id)
		return
	}

	resp, err := cr.client.Do(req)
	if err != nil {
		log.Printf("content relay: upstream fetch failed for %s: %v", id, err)
		cr.notFound(c, id)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("content relay: upstream returned %d for %s", resp.StatusCode, id)
		cr.notFound(c, id)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Printf("content relay: streaming %s aborted: %v", id, err)
	}
}

func (cr *ContentRelay) notFound(c *gin.Context, id string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": fmt.Sprintf("inscription content not found: %s", id),
		"id":    id,
	})
}
