package filters

import (
	"net/url"
	"strings"
)

// TagsParam is the backend search parameter carrying the flattened selection.
const TagsParam = "tags"

// Encode renders state as URL query values: one comma-joined key per
// category with a selection. Empty categories are omitted.
func Encode(state State) url.Values {
	q := url.Values{}
	for category, values := range state {
		if len(values) == 0 {
			continue
		}
		q.Set(category, strings.Join(values, ","))
	}
	return q
}

// Decode reads query values into a state holding every configured category.
// Unknown keys are ignored, zero-length tokens from stray commas are
// dropped, duplicates collapse, and single-select categories keep their first value.
func (v *Vocabulary) Decode(query url.Values) State {
	state := v.ClearAll()

	for _, c := range v.categories {
		raw, ok := query[c.Key]
		if !ok {
			continue
		}

		selected := []string{}
		for _, param := range raw {
			for _, token := range strings.Split(param, ",") {
				if token == "" || indexOf(selected, token) >= 0 {
					continue
				}
				selected = append(selected, token)
			}
		}

		if c.SingleSelect && len(selected) > 1 {
			selected = selected[:1]
		}
		state[c.Key] = selected
	}

	return state
}

// Tags flattens state into the union of every selected value, configured
// categories first.
func (v *Vocabulary) Tags(state State) []string {
	tags := []string{}
	for _, key := range v.orderedKeys(state) {
		for _, val := range state[key] {
			if indexOf(tags, val) < 0 {
				tags = append(tags, val)
			}
		}
	}
	return tags
}

// SearchParams builds the backend search parameters for state: a single
// comma-joined tags parameter, omitted when nothing is selected.
func (v *Vocabulary) SearchParams(state State) url.Values {
	params := url.Values{}
	if tags := v.Tags(state); len(tags) > 0 {
		params.Set(TagsParam, strings.Join(tags, ","))
	}
	return params
}
