package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beehive-tools/hivecli/internal/models"
)

// hiveEnvelope accepts both the singular and the plural response form.
// The beehive server answers GET /hives/:id with {"hives": [...]}.
type hiveEnvelope struct {
	Hive  *models.Hive  `json:"hive"`
	Hives []models.Hive `json:"hives"`
}

func (e hiveEnvelope) first() (*models.Hive, bool) {
	if e.Hive != nil {
		return e.Hive, true
	}
	if len(e.Hives) > 0 {
		return &e.Hives[0], true
	}
	return nil, false
}

// ListHives returns all hives known to the server.
func (c *Client) ListHives(ctx context.Context) ([]models.Hive, error) {
	body, err := c.get(ctx, c.endpoint.ResourceURL(models.HivesResource))
	if err != nil {
		return nil, err
	}

	// API returns {"hives": [...]}
	var response models.HivesPayload
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse hives response: %w", err)
	}

	if response.Hives == nil {
		return []models.Hive{}, nil
	}
	return response.Hives, nil
}

// GetHive returns a single hive by its server ID.
func (c *Client) GetHive(ctx context.Context, id string) (*models.Hive, error) {
	body, err := c.get(ctx, c.endpoint.ResourceURL(models.HivesResource, id))
	if err != nil {
		return nil, err
	}

	var response hiveEnvelope
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse hive response: %w", err)
	}

	hive, ok := response.first()
	if !ok {
		return nil, NewAPIError(404, fmt.Sprintf("hive %q not in response", id))
	}
	return hive, nil
}

// CreateHive persists a new hive and returns the server's copy of it.
// If the server answers without a body the submitted fields are returned.
func (c *Client) CreateHive(ctx context.Context, hive models.Hive) (*models.Hive, error) {
	hive.ID = ""
	body, err := c.post(ctx, c.endpoint.ResourceURL(models.HivesResource), models.HivePayload{Hive: hive})
	if err != nil {
		return nil, err
	}

	return decodeSaved(body, hive, "create")
}

// UpdateHive replaces the attributes of an existing hive.
func (c *Client) UpdateHive(ctx context.Context, id string, hive models.Hive) (*models.Hive, error) {
	hive.ID = id
	body, err := c.put(ctx, c.endpoint.ResourceURL(models.HivesResource, id), models.HivePayload{Hive: hive})
	if err != nil {
		return nil, err
	}

	return decodeSaved(body, hive, "update")
}

// DeleteHive deletes a hive by its server ID.
func (c *Client) DeleteHive(ctx context.Context, id string) error {
	_, err := c.delete(ctx, c.endpoint.ResourceURL(models.HivesResource, id))
	return err
}

// savedHive is a hive in a create or update response. Fields the server
// leaves out are nil and keep the submitted value.
type savedHive struct {
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"isCompleted"`
}

func (h savedHive) applyTo(hive models.Hive) models.Hive {
	if h.ID != nil {
		hive.ID = *h.ID
	}
	if h.Name != nil {
		hive.Name = *h.Name
	}
	if h.Image != nil {
		hive.Image = *h.Image
	}
	if h.Description != nil {
		hive.Description = *h.Description
	}
	if h.IsCompleted != nil {
		hive.IsCompleted = *h.IsCompleted
	}
	return hive
}

type savedEnvelope struct {
	Hive  *savedHive  `json:"hive"`
	Hives []savedHive `json:"hives"`
}

func decodeSaved(body []byte, submitted models.Hive, op string) (*models.Hive, error) {
	if len(body) == 0 {
		return &submitted, nil
	}

	var response savedEnvelope
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse %s hive response: %w", op, err)
	}

	var returned savedHive
	switch {
	case response.Hive != nil:
		returned = *response.Hive
	case len(response.Hives) > 0:
		returned = response.Hives[0]
	default:
		return &submitted, nil
	}

	hive := returned.applyTo(submitted)
	return &hive, nil
}
