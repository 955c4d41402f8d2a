package equipment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nzvengeance/gw2style/internal/models"
)

// API is the part of the GW2 client used to resolve equipment.
type API interface {
	Items(ctx context.Context, ids []int) ([]models.Item, error)
	Skins(ctx context.Context, ids []int) ([]models.Skin, error)
	Colors(ctx context.Context, ids []int) ([]models.Dye, error)
}

type Resolver struct {
	api API
}

func NewResolver(api API) *Resolver {
	return &Resolver{api: api}
}

// idSets are the distinct IDs referenced by a set of equipment items.
type idSets struct {
	items, upgrades, infusions, skins, dyes []int
}

func collect(items []models.EquipmentItem) idSets {
	var s idSets
	seen := map[string]map[int]bool{}
	add := func(kind string, dst *[]int, id int) {
		if id == 0 {
			return
		}
		if seen[kind] == nil {
			seen[kind] = map[int]bool{}
		}
		if seen[kind][id] {
			return
		}
		seen[kind][id] = true
		*dst = append(*dst, id)
	}

	for _, item := range items {
		add("item", &s.items, item.ID)
		if item.Skin != nil {
			add("skin", &s.skins, *item.Skin)
		}
		for _, id := range item.Upgrades {
			add("upgrade", &s.upgrades, id)
		}
		for _, id := range item.Infusions {
			if id != nil {
				add("infusion", &s.infusions, *id)
			}
		}
		for _, id := range item.Dyes {
			if id != nil {
				add("dye", &s.dyes, *id)
			}
		}
	}
	return s
}

// Details fetches every item, upgrade, infusion, skin and dye referenced by
// items concurrently. Any lookup failing fails the whole resolution.
func (r *Resolver) Details(ctx context.Context, items []models.EquipmentItem) (Details, error) {
	ids := collect(items)
	d := Details{
		Items:     map[int]models.Item{},
		Upgrades:  map[int]models.Item{},
		Infusions: map[int]models.Item{},
		Skins:     map[int]models.Skin{},
		Dyes:      map[int]models.Dye{},
	}

	// Each goroutine fills its own map.
	g, gctx := errgroup.WithContext(ctx)
	fetchItems := func(label string, ids []int, dst map[int]models.Item) {
		if len(ids) == 0 {
			return
		}
		g.Go(func() error {
			got, err := r.api.Items(gctx, ids)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", label, err)
			}
			for _, it := range got {
				dst[it.ID] = it
			}
			return nil
		})
	}
	fetchItems("items", ids.items, d.Items)
	fetchItems("upgrades", ids.upgrades, d.Upgrades)
	fetchItems("infusions", ids.infusions, d.Infusions)

	if len(ids.skins) > 0 {
		g.Go(func() error {
			got, err := r.api.Skins(gctx, ids.skins)
			if err != nil {
				return fmt.Errorf("fetching skins: %w", err)
			}
			for _, s := range got {
				d.Skins[s.ID] = s
			}
			return nil
		})
	}
	if len(ids.dyes) > 0 {
		g.Go(func() error {
			got, err := r.api.Colors(gctx, ids.dyes)
			if err != nil {
				return fmt.Errorf("fetching dyes: %w", err)
			}
			for _, c := range got {
				d.Dyes[c.ID] = c
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Details{}, err
	}
	return d, nil
}

// Resolve fetches details for items and builds their layout.
func (r *Resolver) Resolve(ctx context.Context, items []models.EquipmentItem) (*Display, error) {
	d, err := r.Details(ctx, items)
	if err != nil {
		return nil, err
	}
	return Build(items, d), nil
}
