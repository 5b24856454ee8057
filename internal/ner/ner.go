// Package ner calls a hosted token-classification model over HTTP and
// maps its output onto the shared entity types. When the service is
// disabled or unreachable the analyzer falls back to local pattern
// detection.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/privasee/footprint/internal/models"
	"github.com/privasee/footprint/internal/pii"
	"github.com/privasee/footprint/internal/risk"
)

const (
	SourceModel   = "ner"
	SourcePattern = "pattern"
)

// Client talks to a hosted NER inference endpoint.
type Client struct {
	url    string
	token  string
	client *http.Client
}

func NewClient(url, token string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceEntity struct {
	Entity      string  `json:"entity"`
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// Recognize runs the model on text and returns classified entities. The
// caller applies any confidence filtering.
func (c *Client) Recognize(ctx context.Context, text string) ([]models.DetectedEntity, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("encoding inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner inference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ner inference returned %d: %s", resp.StatusCode, msg)
	}

	var raw []inferenceEntity
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}

	entities := make([]models.DetectedEntity, 0, len(raw))
	for _, e := range raw {
		tag := e.EntityGroup
		if tag == "" {
			tag = e.Entity
		}
		label := risk.NormalizeNERTag(tag)
		category, tier := risk.ClassifyEntity(label)
		entities = append(entities, models.DetectedEntity{
			Text:       e.Word,
			Label:      label,
			Confidence: e.Score,
			Start:      e.Start,
			End:        e.End,
			Category:   category,
			RiskTier:   tier,
		})
	}
	return entities, nil
}

// Analyzer combines the remote model with the local pattern detector.
type Analyzer struct {
	remote        *Client // nil when the remote model is disabled
	local         *pii.Detector
	minConfidence float64
	logger        *slog.Logger
}

func NewAnalyzer(remote *Client, local *pii.Detector, minConfidence float64, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if local == nil {
		local = pii.New()
	}
	return &Analyzer{
		remote:        remote,
		local:         local,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Analyze returns confidence-filtered entities for text plus the source
// that produced them. A remote failure downgrades to the pattern
// detector instead of surfacing an error.
func (a *Analyzer) Analyze(ctx context.Context, text string) ([]models.DetectedEntity, string) {
	if a.remote != nil {
		entities, err := a.remote.Recognize(ctx, text)
		if err == nil {
			return a.filter(entities), SourceModel
		}
		a.logger.Warn("ner inference failed, using pattern detection", "error", err)
	}
	return a.filter(a.local.Detect(text)), SourcePattern
}

func (a *Analyzer) filter(entities []models.DetectedEntity) []models.DetectedEntity {
	kept := make([]models.DetectedEntity, 0, len(entities))
	for _, e := range entities {
		if e.Confidence >= a.minConfidence {
			kept = append(kept, e)
		}
	}
	return kept
}
