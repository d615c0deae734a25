// Package draftdata is the HTTP client for the draft-data service: draft
// order, prospect big boards and team needs.
package draftdata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chisports/gmengine/go/clients"
	"github.com/chisports/gmengine/go/internal/models"
)

type Client struct {
	*clients.BaseClient
}

// NewClient builds a client. apiKey may be empty.
func NewClient(baseURL, apiKey string) *Client {
	base := clients.NewBaseClient(baseURL)
	base.SetHeader("Accept", "application/json")
	if apiKey != "" {
		base.SetHeader("X-API-Key", apiKey)
	}
	return &Client{BaseClient: base}
}

type pickOrderResponse struct {
	Picks []models.DraftOrderEntry `json:"picks"`
}

type boardResponse struct {
	Prospects []models.Prospect `json:"prospects"`
}

type needsResponse struct {
	Positions []string `json:"positions"`
}

func (c *Client) PickOrder(ctx context.Context, sport models.Sport, year int) ([]models.DraftOrderEntry, error) {
	var res pickOrderResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(EndpointPickOrder, sport, year), &res); err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d pick order: %w", sport, year, err)
	}
	return res.Picks, nil
}

func (c *Client) ProspectBoard(ctx context.Context, sport models.Sport, year int) ([]models.Prospect, error) {
	var res boardResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(EndpointProspects, sport, year), &res); err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d prospect board: %w", sport, year, err)
	}
	return res.Prospects, nil
}

func (c *Client) TeamNeeds(ctx context.Context, sport models.Sport, teamKey string) ([]string, error) {
	var res needsResponse
	if err := c.GetJSON(ctx, fmt.Sprintf(EndpointTeamNeeds, sport, url.PathEscape(teamKey)), &res); err != nil {
		return nil, fmt.Errorf("failed to fetch %s needs for %s: %w", sport, teamKey, err)
	}
	return res.Positions, nil
}
