// Package equipment turns a post's stored equipment blob into a display
// layout: slots grouped into columns, each resolved against GW2 item, skin
// and dye data.
package equipment

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nzvengeance/gw2style/internal/models"
)

// ErrEmptyBlob is returned when a post carries no equipment.
var ErrEmptyBlob = errors.New("equipment blob is empty")

// Blob is the stored shape of a post's equipment.
type Blob struct {
	Name      string                 `json:"name,omitempty"`
	Equipment []models.EquipmentItem `json:"equipment"`
}

// Decode accepts the equipment blob as stored by the posts backend: a JSON
// object, a bare item array, or a JSON string holding base64 of either.
func Decode(raw json.RawMessage) (*Blob, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmptyBlob
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("reading equipment string: %w", err)
		}
		decoded, err := decodeBase64(encoded)
		if err != nil {
			return nil, err
		}
		return Decode(decoded)
	}

	switch raw[0] {
	case '{':
		var blob Blob
		if err := json.Unmarshal(raw, &blob); err != nil {
			return nil, fmt.Errorf("parsing equipment: %w", err)
		}
		return &blob, nil
	case '[':
		var items []models.EquipmentItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parsing equipment: %w", err)
		}
		return &Blob{Equipment: items}, nil
	default:
		return nil, fmt.Errorf("unrecognised equipment format starting with %q", raw[0])
	}
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyBlob
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, errors.New("equipment is not valid base64")
}
