package tagging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzvengeance/gw2style/internal/models"
)

var testCharacter = models.Character{Name: "Rytlock", Race: "Charr", Gender: "Male", Profession: "Revenant"}

func TestTagSetIgnoresDuplicates(t *testing.T) {
	s := NewTagSet("Charr", "Male")

	assert.False(t, s.Add("Charr"))
	assert.False(t, s.Add(""))
	assert.True(t, s.Add("Revenant"))
	assert.Equal(t, []string{"Charr", "Male", "Revenant"}, s.Slice())

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["Charr","Male","Revenant"]`, string(raw))
}

func TestColorCategory(t *testing.T) {
	testCases := []struct {
		name     string
		dye      string
		expected string
		ok       bool
	}{
		{name: "teal maps to blue", dye: "Teal Dye", expected: "Blue dyes", ok: true},
		{name: "maroon maps to red", dye: "Maroon", expected: "Red dyes", ok: true},
		{name: "case insensitive", dye: "ABYSS BLACK", expected: "Gray dyes", ok: true},
		{name: "first keyword wins", dye: "Red Brown", expected: "Brown dyes", ok: true},
		{name: "unrecognized", dye: "Celestial", ok: false},
		{name: "empty", dye: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ColorCategory(tc.dye)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestSourceFor(t *testing.T) {
	testCases := []struct {
		name     string
		skin     models.Skin
		expected string
		ok       bool
	}{
		{name: "gemstore flag", skin: models.Skin{Name: "Phoenix Helm", Flags: []string{"ShowInWardrobe", "Gemstore"}}, expected: "Gems Store", ok: true},
		{name: "vendor flag", skin: models.Skin{Name: "Plain Boots", Flags: []string{"Vendor"}}, expected: "Trading Post", ok: true},
		{name: "festival flag falls through to name", skin: models.Skin{Name: "Lunar Lantern", Flags: []string{"Festival"}}, expected: "Lunar New Year", ok: true},
		{name: "halloween name without flag", skin: models.Skin{Name: "Mad King's Halloween Mask"}, expected: "Halloween", ok: true},
		{name: "flag beats name", skin: models.Skin{Name: "Halloween Hood", Flags: []string{"Drop"}}, expected: "Loot", ok: true},
		{name: "name keywords are case sensitive", skin: models.Skin{Name: "halloween hood"}, ok: false},
		{name: "neither", skin: models.Skin{Name: "Council Guard Helm", Flags: []string{"ShowInWardrobe"}}, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SourceFor(tc.skin)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestDeriveTagsWithNoEquipment(t *testing.T) {
	tags := DeriveTags(testCharacter, nil, nil)
	assert.Equal(t, []string{"Charr", "Male", "Revenant"}, tags.Slice())
}

func TestDeriveTags(t *testing.T) {
	skins := []models.Skin{
		{ID: 1, Name: "Phoenix Helm", Flags: []string{"Gemstore"}},
		{ID: 2, Name: "Zephyrite Pauldrons"},
		{ID: 3, Name: "Council Guard Boots"},
	}
	dyes := []models.Dye{
		{ID: 5, Name: "Teal Dye"},
		{ID: 7, Name: "Navy"},
		{ID: 9, Name: "Celestial"},
	}

	tags := DeriveTags(testCharacter, skins, dyes)

	assert.Equal(t, []string{
		"Charr", "Male", "Revenant",
		"Phoenix Helm", "Gems Store",
		"Zephyrite Pauldrons", "Four Winds",
		"Council Guard Boots",
		"Blue dyes",
	}, tags.Slice())
}

func TestCategorizeTags(t *testing.T) {
	c := CategorizeTags([]string{
		"Sylvari", "Female", "Ranger", "Human",
		"Green dyes", "Loot", "Gems Store",
		"Nightmare Court Mask",
	})

	assert.Equal(t, "Sylvari", c.Race, "first race wins")
	assert.Equal(t, "Female", c.Gender)
	assert.Equal(t, "Ranger", c.Class)
	assert.Equal(t, []string{"Green dyes"}, c.Colors)
	assert.Equal(t, []string{"Loot", "Gems Store"}, c.Sources)
	assert.Equal(t, []string{"Nightmare Court Mask"}, c.Skins)
}

func TestCategorizeTagsEmpty(t *testing.T) {
	c := CategorizeTags(nil)
	assert.Empty(t, c.Race)
	assert.NotNil(t, c.Skins)
	assert.Empty(t, c.Skins)
}
