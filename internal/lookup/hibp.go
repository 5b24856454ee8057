package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HIBPClient queries the Have I Been Pwned v3 API for breached
// accounts.
type HIBPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHIBPClient(baseURL, apiKey string, timeout time.Duration) *HIBPClient {
	return &HIBPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type hibpBreach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	BreachDate  string   `json:"BreachDate"`
	DataClasses []string `json:"DataClasses"`
	IsVerified  bool     `json:"IsVerified"`
	Description string   `json:"Description"`
}

// FindBreaches returns all breaches for the email. A 404 means the
// account is not in any known breach and yields an empty result, not an
// error.
func (c *HIBPClient) FindBreaches(ctx context.Context, email string) ([]Breach, error) {
	endpoint := fmt.Sprintf("%s/breachedaccount/%s?truncateResponse=false",
		c.baseURL, url.PathEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building breach request: %w", err)
	}
	req.Header.Set("hibp-api-key", c.apiKey)
	req.Header.Set("User-Agent", "footprint-analyzer")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("breach lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("breach lookup returned %d: %s", resp.StatusCode, body)
	}

	var raw []hibpBreach
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding breach response: %w", err)
	}

	breaches := make([]Breach, 0, len(raw))
	for _, b := range raw {
		breach := Breach{
			Name:        b.Name,
			DataClasses: b.DataClasses,
			Verified:    b.IsVerified,
			Description: b.Description,
			Source:      SourceHIBP,
		}
		if b.Title != "" {
			breach.Name = b.Title
		}
		if d, err := time.Parse("2006-01-02", b.BreachDate); err == nil {
			breach.Date = &d
		}
		breaches = append(breaches, breach)
	}
	return breaches, nil
}
