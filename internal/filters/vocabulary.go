// Package filters holds the gallery filter model: a category-keyed selection
// of tag values, its URL query encoding, and the toggle/remove/clear algebra
// the filter UI drives.
package filters

import "sort"

// Category is one filterable dimension of the gallery.
type Category struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Options      []string `json:"options"`
	SingleSelect bool     `json:"single_select"`
}

// Vocabulary is the ordered, configured set of categories a page exposes.
type Vocabulary struct {
	categories []Category
	index      map[string]int
}

func NewVocabulary(categories ...Category) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int)}
	for _, c := range categories {
		if _, dup := v.index[c.Key]; dup || c.Key == "" {
			continue
		}
		v.index[c.Key] = len(v.categories)
		v.categories = append(v.categories, c)
	}
	return v
}

// DefaultVocabulary returns the gallery categories: race and gender are
// single-select, the rest multi-select.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(
		Category{Key: "races", Label: "Race", SingleSelect: true,
			Options: []string{"Human", "Asura", "Norn", "Charr", "Sylvari"}},
		Category{Key: "genders", Label: "Gender", SingleSelect: true,
			Options: []string{"Male", "Female"}},
		Category{Key: "classes", Label: "Class",
			Options: []string{"Guardian", "Warrior", "Engineer", "Ranger", "Thief", "Elementalist", "Mesmer", "Necromancer", "Revenant"}},
		Category{Key: "colors", Label: "Dye Colors",
			Options: []string{"Gray dyes", "Brown dyes", "Red dyes", "Orange dyes", "Yellow dyes", "Green dyes", "Blue dyes", "Purple dyes"}},
		Category{Key: "sources", Label: "Source",
			Options: []string{"Lunar New Year", "Super Adventure Box", "Dragon Bash", "Four Winds", "Halloween", "Loot", "Gems Store", "Trading Post"}},
	)
}

// Categories returns the categories in configured order.
func (v *Vocabulary) Categories() []Category {
	out := make([]Category, len(v.categories))
	copy(out, v.categories)
	return out
}

func (v *Vocabulary) Category(key string) (Category, bool) {
	i, ok := v.index[key]
	if !ok {
		return Category{}, false
	}
	return v.categories[i], true
}

func (v *Vocabulary) Keys() []string {
	keys := make([]string, len(v.categories))
	for i, c := range v.categories {
		keys[i] = c.Key
	}
	return keys
}

func (v *Vocabulary) IsSingleSelect(key string) bool {
	c, ok := v.Category(key)
	return ok && c.SingleSelect
}

// orderedKeys lists the configured keys first, then any other keys present
// in state in sorted order.
func (v *Vocabulary) orderedKeys(state State) []string {
	keys := v.Keys()
	var extra []string
	for k := range state {
		if _, known := v.index[k]; !known {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
