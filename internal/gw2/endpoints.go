package gw2

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nzvengeance/gw2style/internal/models"
)

// CharacterCore fetches race, gender and profession for an account character.
func (c *Client) CharacterCore(ctx context.Context, name, apiKey string) (*models.Character, error) {
	var ch models.Character
	path := "/v2/characters/" + url.PathEscape(name) + "/core"
	if err := c.getJSON(ctx, path, nil, apiKey, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// EquipmentTabs fetches every equipment tab of a character.
func (c *Client) EquipmentTabs(ctx context.Context, name, apiKey string) ([]models.EquipmentTab, error) {
	var tabs []models.EquipmentTab
	path := "/v2/characters/" + url.PathEscape(name) + "/equipmenttabs"
	if err := c.getJSON(ctx, path, url.Values{"tabs": {"all"}}, apiKey, &tabs); err != nil {
		return nil, err
	}
	return tabs, nil
}

// Items looks up item details in batches.
func (c *Client) Items(ctx context.Context, ids []int) ([]models.Item, error) {
	return getByIDs[models.Item](ctx, c, "/v2/items", ids)
}

// Skins looks up skin details in batches.
func (c *Client) Skins(ctx context.Context, ids []int) ([]models.Skin, error) {
	return getByIDs[models.Skin](ctx, c, "/v2/skins", ids)
}

// Colors looks up dye details in batches.
func (c *Client) Colors(ctx context.Context, ids []int) ([]models.Dye, error) {
	return getByIDs[models.Dye](ctx, c, "/v2/colors", ids)
}

// SkinIDs lists every skin ID known to the API.
func (c *Client) SkinIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, "/v2/skins", nil, "", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func getByIDs[T any](ctx context.Context, c *Client, path string, ids []int) ([]T, error) {
	var all []T
	batches := Batch(ids, MaxIDsPerRequest)
	for i, batch := range batches {
		var page []T
		if err := c.getJSON(ctx, path, url.Values{"ids": {JoinIDs(batch)}}, "", &page); err != nil {
			return nil, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		all = append(all, page...)
		log.Debug().Str("path", path).Int("batch", i+1).Int("count", len(page)).Msg("fetched gw2 batch")
	}
	return all, nil
}

// Batch splits ids into consecutive chunks of at most size elements.
func Batch(ids []int, size int) [][]int {
	if size <= 0 {
		size = MaxIDsPerRequest
	}
	var batches [][]int
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// JoinIDs renders ids as the comma-separated list the API expects.
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
