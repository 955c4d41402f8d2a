package models

import (
	"encoding/json"
	"time"
)

// --- Character Data ---

// Character is the subset of /v2/characters/{name}/core used for tagging.
type Character struct {
	Name       string `json:"name"`
	Race       string `json:"race"`
	Gender     string `json:"gender"`
	Profession string `json:"profession"`
	Level      int    `json:"level,omitempty"`
}

// EquipmentItem is one equipped slot inside an equipment tab. Infusion and
// dye entries may be null (empty socket or channel).
type EquipmentItem struct {
	Slot      string `json:"slot"`
	ID        int    `json:"id"`
	Skin      *int   `json:"skin,omitempty"`
	Upgrades  []int  `json:"upgrades,omitempty"`
	Infusions []*int `json:"infusions,omitempty"`
	Dyes      []*int `json:"dyes,omitempty"`
	Binding   string `json:"binding,omitempty"`
}

type EquipmentTab struct {
	Tab       int             `json:"tab"`
	Name      string          `json:"name"`
	IsActive  bool            `json:"is_active"`
	Equipment []EquipmentItem `json:"equipment"`
}

// --- Reference Data ---

type Item struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Rarity      string `json:"rarity,omitempty"`
	Icon        string `json:"icon,omitempty"`
	ChatLink    string `json:"chat_link,omitempty"`
	DefaultSkin int    `json:"default_skin,omitempty"`
}

type SkinDetails struct {
	Type string `json:"type,omitempty"`
}

// Skin is a wardrobe skin as returned by /v2/skins.
type Skin struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	Flags    []string     `json:"flags,omitempty"`
	Rarity   string       `json:"rarity,omitempty"`
	Icon     string       `json:"icon,omitempty"`
	ChatLink string       `json:"chat_link,omitempty"`
	Details  *SkinDetails `json:"details,omitempty"`
}

// Subtype returns the armor piece or weapon class of the skin, if known.
func (s Skin) Subtype() string {
	if s.Details == nil {
		return ""
	}
	return s.Details.Type
}

type ColorMaterial struct {
	Brightness int     `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Hue        int     `json:"hue"`
	Saturation float64 `json:"saturation"`
	Lightness  float64 `json:"lightness"`
	RGB        []int   `json:"rgb"`
}

// Dye is a colour from /v2/colors.
type Dye struct {
	ID         int            `json:"id"`
	Name       string         `json:"name"`
	BaseRGB    []int          `json:"base_rgb,omitempty"`
	Cloth      *ColorMaterial `json:"cloth,omitempty"`
	Leather    *ColorMaterial `json:"leather,omitempty"`
	Metal      *ColorMaterial `json:"metal,omitempty"`
	Categories []string       `json:"categories,omitempty"`
}

// --- Skin Snapshot ---

// SnapshotSkin is the trimmed skin record stored in the snapshot file.
type SnapshotSkin struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Subtype *string `json:"subtype"`
}

// SkinSnapshot is the versioned skin database written by the fetch job and
// served from the skin cache.
type SkinSnapshot struct {
	Version     string         `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Count       int            `json:"count"`
	Types       []string       `json:"types"`
	Skins       []SnapshotSkin `json:"skins"`
}

// --- Posts Backend ---

type Post struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Image1      string          `json:"image1,omitempty"`
	Image2      string          `json:"image2,omitempty"`
	Image3      string          `json:"image3,omitempty"`
	Image4      string          `json:"image4,omitempty"`
	Image5      string          `json:"image5,omitempty"`
	Equipments  json.RawMessage `json:"equipments,omitempty"`
	AuthorName  string          `json:"author_name"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	LikesCount  int             `json:"likes_count"`
	Published   bool            `json:"published,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type PostPage struct {
	Success    bool       `json:"success"`
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// --- Sync & Audit ---

type SyncHistory struct {
	ID           int        `json:"id"`
	Endpoint     string     `json:"endpoint"`
	Status       string     `json:"status"`
	RecordCount  int        `json:"record_count"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
