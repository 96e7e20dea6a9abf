package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/flowfit/internal/domain/model"
)

// Client talks to the flow-fit HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{base: base, http: &http.Client{Timeout: timeout}}
}

type catalogResponse struct {
	Domains []struct {
		ID string `json:"id"`
	} `json:"domains"`
	TimePerception []struct {
		Value int `json:"value"`
	} `json:"time_perception"`
	SkillRange     [2]int `json:"skill_range"`
	ChallengeRange [2]int `json:"challenge_range"`
}

type submitResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// TeamSummary is the part of the team analysis a seeding run checks.
type TeamSummary struct {
	Respondents int     `json:"respondents"`
	CRI         float64 `json:"cri"`
	Band        string  `json:"band"`
}

type teamResponse struct {
	Result TeamSummary `json:"result"`
}

// Outcome of a single submission.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCreated
	OutcomeDuplicate
)

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Catalog fetches the domain keys and rating scales.
func (c *Client) Catalog(ctx context.Context) ([]string, Scale, error) {
	var cr catalogResponse
	if err := c.getJSON(ctx, "/catalog", &cr); err != nil {
		return nil, Scale{}, err
	}
	ids := make([]string, len(cr.Domains))
	for i, d := range cr.Domains {
		ids[i] = d.ID
	}
	sc := Scale{Min: cr.SkillRange[0], Max: cr.SkillRange[1]}
	if cr.ChallengeRange[0] > sc.Min {
		sc.Min = cr.ChallengeRange[0]
	}
	if cr.ChallengeRange[1] < sc.Max {
		sc.Max = cr.ChallengeRange[1]
	}
	for i, e := range cr.TimePerception {
		if i == 0 || e.Value < sc.TimeMin {
			sc.TimeMin = e.Value
		}
		if i == 0 || e.Value > sc.TimeMax {
			sc.TimeMax = e.Value
		}
	}
	if len(ids) == 0 || sc.Max <= sc.Min {
		return nil, Scale{}, fmt.Errorf("%w: catalog has no usable domains or scale", ErrUnexpected)
	}
	return ids, sc, nil
}

// Submit posts one profile under the given idempotency key.
func (c *Client) Submit(ctx context.Context, p model.Profile, key string) (Outcome, string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return OutcomeFailed, "", fmt.Errorf("marshal profile: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/submissions", bytes.NewReader(body), key)
	if err != nil {
		return OutcomeFailed, "", err
	}
	defer resp.Body.Close()

	var sr submitResponse
	_ = json.NewDecoder(resp.Body).Decode(&sr)
	switch resp.StatusCode {
	case http.StatusCreated:
		return OutcomeCreated, sr.ID, nil
	case http.StatusConflict:
		return OutcomeDuplicate, sr.ID, nil
	default:
		return OutcomeFailed, "", fmt.Errorf("%w: submit status %d", ErrUnexpected, resp.StatusCode)
	}
}

// Team fetches the analysis over all stored submissions. An empty store is
// reported as zero respondents.
func (c *Client) Team(ctx context.Context) (TeamSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/team", nil, "")
	if err != nil {
		return TeamSummary{}, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var tr teamResponse
		if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
			return TeamSummary{}, fmt.Errorf("%w: decode team: %w", ErrUnexpected, err)
		}
		return tr.Result, nil
	case http.StatusUnprocessableEntity:
		return TeamSummary{}, nil
	default:
		return TeamSummary{}, fmt.Errorf("%w: team status %d", ErrUnexpected, resp.StatusCode)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s status %d", ErrUnexpected, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUnexpected, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, key string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
