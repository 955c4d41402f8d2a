// Package skins builds, stores and serves the wardrobe skin snapshot used
// for skin search and autocomplete. Snapshots are produced from the GW2 API,
// persisted through a pluggable Store and held by a Cache that re-fetches
// them once they fall outside a freshness window.
package skins

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nzvengeance/gw2style/internal/gw2"
	"github.com/nzvengeance/gw2style/internal/models"
)

// AllowedTypes are the skin types kept in a snapshot.
var AllowedTypes = []string{"Armor", "Back", "Weapon"}

// BuildSnapshot keeps named Armor, Back and Weapon skins, trims them to the
// snapshot record and sorts them by name.
func BuildSnapshot(raw []models.Skin, now time.Time) *models.SkinSnapshot {
	out := make([]models.SnapshotSkin, 0, len(raw))
	for _, s := range raw {
		if !isAllowedType(s.Type) || strings.TrimSpace(s.Name) == "" {
			continue
		}
		rec := models.SnapshotSkin{ID: s.ID, Name: s.Name, Type: s.Type}
		if sub := s.Subtype(); sub != "" {
			rec.Subtype = &sub
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})

	now = now.UTC()
	return &models.SkinSnapshot{
		Version:     now.Format("2006-01-02"),
		GeneratedAt: now,
		Count:       len(out),
		Types:       append([]string(nil), AllowedTypes...),
		Skins:       out,
	}
}

func isAllowedType(t string) bool {
	for _, a := range AllowedTypes {
		if a == t {
			return true
		}
	}
	return false
}

// CountByType tallies snapshot skins per type.
func CountByType(snap *models.SkinSnapshot) map[string]int {
	counts := make(map[string]int)
	if snap == nil {
		return counts
	}
	for _, s := range snap.Skins {
		counts[s.Type]++
	}
	return counts
}

// SkinAPI is the part of the GW2 client used to build snapshots.
type SkinAPI interface {
	SkinIDs(ctx context.Context) ([]int, error)
	Skins(ctx context.Context, ids []int) ([]models.Skin, error)
}

// Fetcher builds a fresh snapshot from the GW2 API.
type Fetcher struct {
	api       SkinAPI
	batchSize int
	now       func() time.Time
}

func NewFetcher(api SkinAPI) *Fetcher {
	return &Fetcher{
		api:       api,
		batchSize: gw2.MaxIDsPerRequest,
		now:       time.Now,
	}
}

// Fetch lists every skin ID and downloads details batch by batch. Failed
// batches are logged and skipped; the fetch only fails when listing IDs fails,
// the context ends, or no batch succeeds.
func (f *Fetcher) Fetch(ctx context.Context) (*models.SkinSnapshot, error) {
	ids, err := f.api.SkinIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing skin ids: %w", err)
	}
	log.Info().Int("total", len(ids)).Msg("found skins")

	batches := gw2.Batch(ids, f.batchSize)
	var all []models.Skin
	failed := 0

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		skins, err := f.api.Skins(ctx, batch)
		if err != nil {
			failed++
			log.Warn().Err(err).Int("batch", i+1).Int("batches", len(batches)).Msg("skin batch failed")
			continue
		}
		all = append(all, skins...)
		log.Debug().Int("batch", i+1).Int("batches", len(batches)).Int("count", len(skins)).Msg("fetched skin batch")
	}

	if len(batches) > 0 && failed == len(batches) {
		return nil, fmt.Errorf("all %d skin batches failed", failed)
	}

	snap := BuildSnapshot(all, f.now())
	log.Info().Int("kept", snap.Count).Int("fetched", len(all)).Int("failed_batches", failed).
		Interface("by_type", CountByType(snap)).Msg("built skin snapshot")
	return snap, nil
}
