// Package tagging derives searchable post tags from a character's equipped
// appearance: race, gender, profession, skin names, skin sources and dye
// colour categories.
package tagging

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nzvengeance/gw2style/internal/gw2"
	"github.com/nzvengeance/gw2style/internal/models"
)

// ErrMissingInput is returned when a character name or API key is empty.
var ErrMissingInput = errors.New("character name and api key are required")

// API is the subset of the GW2 client the deriver needs.
type API interface {
	CharacterCore(ctx context.Context, name, apiKey string) (*models.Character, error)
	EquipmentTabs(ctx context.Context, name, apiKey string) ([]models.EquipmentTab, error)
	Skins(ctx context.Context, ids []int) ([]models.Skin, error)
	Colors(ctx context.Context, ids []int) ([]models.Dye, error)
}

type Deriver struct {
	api API
}

func NewDeriver(api API) *Deriver {
	return &Deriver{api: api}
}

// References holds the skin and dye details resolved for an equipment tab.
type References struct {
	Skins []models.Skin `json:"skins"`
	Dyes  []models.Dye  `json:"dyes"`
}

// Result is the outcome of a full tag generation.
type Result struct {
	Character   models.Character `json:"character"`
	Tags        *TagSet          `json:"tags"`
	Categorized Categorized      `json:"categorized"`
}

// FetchCharacterSummary returns the race, gender and profession of a character.
func (d *Deriver) FetchCharacterSummary(ctx context.Context, characterName, apiKey string) (*models.Character, error) {
	ch, err := d.api.CharacterCore(ctx, characterName, apiKey)
	if err != nil {
		return nil, fmt.Errorf("fetching character details: %w", err)
	}
	return ch, nil
}

// FetchEquipmentTab returns the items of the tab named tabName. A tab that
// does not exist yields an empty result.
func (d *Deriver) FetchEquipmentTab(ctx context.Context, characterName, tabName, apiKey string) ([]models.EquipmentItem, error) {
	tabs, err := d.api.EquipmentTabs(ctx, characterName, apiKey)
	if err != nil {
		return nil, fmt.Errorf("fetching equipment tabs: %w", err)
	}

	for _, tab := range tabs {
		if tab.Name == tabName {
			return tab.Equipment, nil
		}
	}

	log.Warn().Str("character", characterName).Str("tab", tabName).Msg("no equipment tab matched")
	return nil, nil
}

// ResolveSkinsAndDyes looks up every distinct skin and non-null dye used by
// items. Both lookups run concurrently; either failing aborts the resolution.
func (d *Deriver) ResolveSkinsAndDyes(ctx context.Context, items []models.EquipmentItem) (*References, error) {
	skinIDs, dyeIDs := CollectIDs(items)
	refs := &References{}

	g, gctx := errgroup.WithContext(ctx)

	if len(skinIDs) > 0 {
		g.Go(func() error {
			skins, err := d.api.Skins(gctx, skinIDs)
			if err != nil {
				return fmt.Errorf("fetching skin details: %w", err)
			}
			refs.Skins = skins
			return nil
		})
	}

	if len(dyeIDs) > 0 {
		g.Go(func() error {
			dyes, err := d.api.Colors(gctx, dyeIDs)
			if err != nil {
				return fmt.Errorf("fetching dye details: %w", err)
			}
			refs.Dyes = dyes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// Generate runs the whole pipeline for one character and equipment tab.
// Either the full tag set is returned or an error; never a partial set.
func (d *Deriver) Generate(ctx context.Context, characterName, tabName, apiKey string) (*Result, error) {
	if characterName == "" || apiKey == "" {
		return nil, ErrMissingInput
	}

	log.Debug().Str("character", characterName).Str("tab", tabName).Str("api_key", gw2.MaskAPIKey(apiKey)).Msg("generating tags")

	var (
		character *models.Character
		items     []models.EquipmentItem
	)

	// The tab lookup does not depend on the character details.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ch, err := d.FetchCharacterSummary(gctx, characterName, apiKey)
		character = ch
		return err
	})
	g.Go(func() error {
		tab, err := d.FetchEquipmentTab(gctx, characterName, tabName, apiKey)
		items = tab
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refs, err := d.ResolveSkinsAndDyes(ctx, items)
	if err != nil {
		return nil, err
	}

	tags := DeriveTags(*character, refs.Skins, refs.Dyes)
	log.Info().Str("character", characterName).Int("items", len(items)).Int("tags", tags.Len()).Msg("generated tags")

	return &Result{
		Character:   *character,
		Tags:        tags,
		Categorized: CategorizeTags(tags.Slice()),
	}, nil
}

// CollectIDs returns the distinct skin IDs and non-null dye IDs of items, in
// first-seen order.
func CollectIDs(items []models.EquipmentItem) (skinIDs, dyeIDs []int) {
	seenSkins := make(map[int]bool)
	seenDyes := make(map[int]bool)

	for _, item := range items {
		if item.Skin != nil && *item.Skin != 0 && !seenSkins[*item.Skin] {
			seenSkins[*item.Skin] = true
			skinIDs = append(skinIDs, *item.Skin)
		}
		for _, dye := range item.Dyes {
			if dye == nil || *dye == 0 || seenDyes[*dye] {
				continue
			}
			seenDyes[*dye] = true
			dyeIDs = append(dyeIDs, *dye)
		}
	}

	return skinIDs, dyeIDs
}
