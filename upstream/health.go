package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	HealthPath           = "/api/health"
	DefaultHealthTimeout = 3 * time.Second

	StateUp   = "UP"
	StateDown = "DOWN"
)

type healthResponse struct {
	Status string `json:"status"`
}

// CheckHealth probes the upstream health endpoint. It succeeds only on a 2xx
// answer whose body reports {"status":"UP"}.
func (c *Client) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultHealthTimeout)
	defer cancel()
	var hr healthResponse
	if err := c.GetJSON(ctx, HealthPath, &hr); err != nil {
		return err
	}
	if !strings.EqualFold(hr.Status, StateUp) {
		return fmt.Errorf("%s%s reported status %q", c.BaseURL, HealthPath, hr.Status)
	}
	return nil
}

// State maps a probe result to UP or DOWN.
func State(err error) string {
	if err != nil {
		return StateDown
	}
	return StateUp
}
