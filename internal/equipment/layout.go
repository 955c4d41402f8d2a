package equipment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nzvengeance/gw2style/internal/models"
)

const (
	wikiBaseURL   = "https://wiki.guildwars2.com/wiki/"
	defaultRarity = "Ascended"
	noDyeColor    = "#666"
)

// RarityColors maps item rarity to its border colour.
var RarityColors = map[string]string{
	"Junk":       "#aaa",
	"Basic":      "#000",
	"Fine":       "#62a4da",
	"Masterwork": "#1a9306",
	"Rare":       "#fcd00b",
	"Exotic":     "#ffa405",
	"Ascended":   "#fb3e8d",
	"Legendary":  "#4c139d",
}

var (
	// LeftSlots hold armor and the back item.
	LeftSlots = []string{"Helm", "Shoulders", "Coat", "Gloves", "Leggings", "Boots", "Backpack"}
	// MiddleSlots hold land and aquatic weapons plus the aquatic helm.
	MiddleSlots = []string{"WeaponA1", "WeaponA2", "WeaponB1", "WeaponB2", "HelmAquatic", "WeaponAquaticA", "WeaponAquaticB"}
	// RightSlots hold trinkets.
	RightSlots = []string{"Amulet", "Accessory1", "Accessory2", "Ring1", "Ring2"}
)

// Slots whose upgrades are left out of the display.
var hiddenUpgradeSlots = map[string]bool{
	"Helm": true, "Shoulders": true, "Coat": true, "Gloves": true, "Leggings": true, "Boots": true,
	"HelmAquatic": true, "WeaponA1": true, "WeaponA2": true, "WeaponB1": true, "WeaponB2": true,
	"WeaponAquaticA": true, "WeaponAquaticB": true,
}

// cosmeticInfusions lists infusions that change a character's appearance.
var cosmeticInfusions = map[int]bool{
	// meta events
	68440: true, 76063: true, 72021: true, 84970: true, 88771: true,
	92023: true, 93829: true, 94945: true, 94982: true, 98002: true,
	// mystic forge
	90966: true,
	// wizard's vault
	101199: true, 101538: true, 102887: true,
	// halloween
	89065: true, 79674: true, 89007: true, 89070: true, 89071: true,
	67375: true, 67370: true, 67372: true, 79647: true,
	// wintersday
	79978: true, 86405: true, 89426: true, 99956: true,
	// fractals
	81919: true, 99890: true,
	// raids
	77310: true, 91202: true, 104448: true,
	// strikes
	98092: true, 99250: true, 101144: true, 100244: true,
	// dragon response missions
	94130: true,
	// WvW
	99844: true,
	// other
	101659: true, 100389: true, 97965: true,
	// super adventure box
	79653: true, 79661: true,
}

// IsCosmeticInfusion reports whether the infusion item changes appearance.
func IsCosmeticInfusion(id int) bool {
	return cosmeticInfusions[id]
}

// WikiURL links to the wiki article for name, or "" for an empty name.
func WikiURL(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return wikiBaseURL + url.PathEscape(strings.ReplaceAll(name, " ", "_"))
}

// RarityColor returns the border colour for rarity, falling back to fallback's
// colour for unknown rarities.
func RarityColor(rarity, fallback string) string {
	if c, ok := RarityColors[rarity]; ok {
		return c
	}
	return RarityColors[fallback]
}

// Upgrade is a rune, sigil or jewel socketed in a slot.
type Upgrade struct {
	ID          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	Icon        string `json:"icon,omitempty"`
	BorderColor string `json:"border_color"`
}

type Infusion struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Cosmetic bool   `json:"cosmetic"`
}

// Swatch is one dye channel of a slot.
type Swatch struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Slot is one rendered equipment position. Empty slots only carry their name.
type Slot struct {
	Slot        string     `json:"slot"`
	Empty       bool       `json:"empty"`
	ItemID      int        `json:"item_id,omitempty"`
	SkinID      int        `json:"skin_id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Rarity      string     `json:"rarity,omitempty"`
	BorderColor string     `json:"border_color,omitempty"`
	WikiURL     string     `json:"wiki_url,omitempty"`
	ChatLink    string     `json:"chat_link,omitempty"`
	Upgrades    []Upgrade  `json:"upgrades,omitempty"`
	Infusions   []Infusion `json:"infusions,omitempty"`
	Dyes        []Swatch   `json:"dyes,omitempty"`
}

// Display is the full three-column layout of a build.
type Display struct {
	Left              []Slot `json:"left"`
	Middle            []Slot `json:"middle"`
	Right             []Slot `json:"right"`
	CosmeticInfusions []int  `json:"cosmetic_infusions"`
}

// Details are the reference lookups a layout is built from, keyed by ID.
type Details struct {
	Items     map[int]models.Item
	Upgrades  map[int]models.Item
	Infusions map[int]models.Item
	Skins     map[int]models.Skin
	Dyes      map[int]models.Dye
}

// Build lays items out into columns. Missing details degrade to the slot
// name and default rarity.
func Build(items []models.EquipmentItem, d Details) *Display {
	bySlot := make(map[string]models.EquipmentItem, len(items))
	for _, item := range items {
		bySlot[item.Slot] = item
	}

	column := func(slots []string) []Slot {
		out := make([]Slot, 0, len(slots))
		for _, name := range slots {
			item, ok := bySlot[name]
			if !ok {
				out = append(out, Slot{Slot: name, Empty: true})
				continue
			}
			out = append(out, buildSlot(name, item, d))
		}
		return out
	}

	return &Display{
		Left:              column(LeftSlots),
		Middle:            column(MiddleSlots),
		Right:             column(RightSlots),
		CosmeticInfusions: collectCosmetic(items),
	}
}

func buildSlot(name string, item models.EquipmentItem, d Details) Slot {
	details, hasDetails := d.Items[item.ID]

	var skin *models.Skin
	if item.Skin != nil {
		if s, ok := d.Skins[*item.Skin]; ok {
			skin = &s
		}
	}

	slot := Slot{Slot: name, ItemID: item.ID}
	if item.Skin != nil {
		slot.SkinID = *item.Skin
	}

	switch {
	case skin != nil && skin.Name != "":
		slot.Name = skin.Name
	case hasDetails && details.Name != "":
		slot.Name = details.Name
	default:
		slot.Name = name
	}

	if skin != nil && skin.Icon != "" {
		slot.Icon = skin.Icon
	} else if hasDetails {
		slot.Icon = details.Icon
	}

	slot.Rarity = defaultRarity
	if hasDetails && details.Rarity != "" {
		slot.Rarity = details.Rarity
	}
	slot.BorderColor = RarityColor(slot.Rarity, defaultRarity)
	slot.WikiURL = WikiURL(slot.Name)

	if skin != nil && skin.ChatLink != "" {
		slot.ChatLink = skin.ChatLink
	} else if hasDetails {
		slot.ChatLink = details.ChatLink
	}

	if !hiddenUpgradeSlots[name] {
		for _, id := range item.Upgrades {
			up := d.Upgrades[id]
			slot.Upgrades = append(slot.Upgrades, Upgrade{
				ID:          id,
				Name:        up.Name,
				Icon:        up.Icon,
				BorderColor: RarityColor(up.Rarity, "Exotic"),
			})
		}
	}

	for _, id := range item.Infusions {
		if id == nil {
			continue
		}
		inf := d.Infusions[*id]
		infName := inf.Name
		if infName == "" {
			infName = "Infusion"
		}
		slot.Infusions = append(slot.Infusions, Infusion{
			ID:       *id,
			Name:     infName,
			Icon:     inf.Icon,
			Cosmetic: IsCosmeticInfusion(*id),
		})
	}

	for _, id := range item.Dyes {
		if id == nil {
			continue
		}
		dye := d.Dyes[*id]
		dyeName := dye.Name
		if dyeName == "" {
			dyeName = "Dye"
		}
		slot.Dyes = append(slot.Dyes, Swatch{ID: *id, Name: dyeName, Color: dyeColor(dye)})
	}

	return slot
}

// dyeColor prefers the cloth material colour, then the base colour.
func dyeColor(d models.Dye) string {
	rgb := d.BaseRGB
	if d.Cloth != nil && len(d.Cloth.RGB) >= 3 {
		rgb = d.Cloth.RGB
	}
	if len(rgb) < 3 {
		return noDyeColor
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb[0], rgb[1], rgb[2])
}

func collectCosmetic(items []models.EquipmentItem) []int {
	out := []int{}
	seen := make(map[int]bool)
	for _, item := range items {
		for _, id := range item.Infusions {
			if id == nil || seen[*id] || !IsCosmeticInfusion(*id) {
				continue
			}
			seen[*id] = true
			out = append(out, *id)
		}
	}
	return out
}
