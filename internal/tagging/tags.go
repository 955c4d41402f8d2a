package tagging

import (
	"encoding/json"
	"strings"

	"github.com/nzvengeance/gw2style/internal/models"
)

// TagSet is a set of unique tags that remembers first-insertion order.
type TagSet struct {
	order []string
	seen  map[string]struct{}
}

func NewTagSet(tags ...string) *TagSet {
	s := &TagSet{seen: make(map[string]struct{})}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts tag and reports whether it was new. Empty tags are ignored.
func (s *TagSet) Add(tag string) bool {
	if tag == "" {
		return false
	}
	if _, ok := s.seen[tag]; ok {
		return false
	}
	s.seen[tag] = struct{}{}
	s.order = append(s.order, tag)
	return true
}

func (s *TagSet) Has(tag string) bool {
	_, ok := s.seen[tag]
	return ok
}

func (s *TagSet) Len() int {
	return len(s.order)
}

// Slice returns a copy of the tags in insertion order.
func (s *TagSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// DeriveTags builds the tag set for a character wearing the given skins and
// dyes. It performs no I/O.
func DeriveTags(character models.Character, skins []models.Skin, dyes []models.Dye) *TagSet {
	tags := NewTagSet(character.Race, character.Gender, character.Profession)

	for _, skin := range skins {
		tags.Add(skin.Name)
		if source, ok := SourceFor(skin); ok {
			tags.Add(source)
		}
	}

	for _, dye := range dyes {
		if category, ok := ColorCategory(dye.Name); ok {
			tags.Add(category)
		}
	}

	return tags
}

// ColorCategory maps a dye name to its colour category. The first keyword
// contained in the name wins.
func ColorCategory(dyeName string) (string, bool) {
	if dyeName == "" {
		return "", false
	}
	lower := strings.ToLower(dyeName)
	for _, rule := range dyeColorRules {
		if strings.Contains(lower, strings.ToLower(rule.Keyword)) {
			return rule.Tag, true
		}
	}
	return "", false
}

// SourceFor classifies where a skin comes from: flags first, then festival
// keywords in the display name.
func SourceFor(skin models.Skin) (string, bool) {
	for _, flag := range skin.Flags {
		if source := flagSources[flag]; source != "" {
			return source, true
		}
	}

	if skin.Name != "" {
		for _, rule := range festivalRules {
			if strings.Contains(skin.Name, rule.Keyword) {
				return rule.Tag, true
			}
		}
	}

	return "", false
}

// Categorized is a flat tag list split back into its semantic buckets.
type Categorized struct {
	Race    string   `json:"race"`
	Gender  string   `json:"gender"`
	Class   string   `json:"class"`
	Colors  []string `json:"colors"`
	Sources []string `json:"sources"`
	Skins   []string `json:"skins"`
}

// CategorizeTags partitions tags by vocabulary membership. Anything outside
// the race, gender, class, colour and source vocabularies is a skin tag.
func CategorizeTags(tags []string) Categorized {
	c := Categorized{
		Colors:  []string{},
		Sources: []string{},
		Skins:   []string{},
	}

	for _, tag := range tags {
		switch {
		case contains(Races, tag):
			if c.Race == "" {
				c.Race = tag
			}
		case contains(Genders, tag):
			if c.Gender == "" {
				c.Gender = tag
			}
		case contains(Classes, tag):
			if c.Class == "" {
				c.Class = tag
			}
		case contains(ColorCategories, tag):
			c.Colors = append(c.Colors, tag)
		case contains(Sources, tag):
			c.Sources = append(c.Sources, tag)
		default:
			c.Skins = append(c.Skins, tag)
		}
	}

	return c
}
