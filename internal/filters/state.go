package filters

// State maps a category key to its selected values. Each value list is used
// as a set: order carries no meaning and duplicates never appear.
type State map[string][]string

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, values := range s {
		cp := make([]string, len(values))
		copy(cp, values)
		out[k] = cp
	}
	return out
}

// ClearAll returns the canonical empty state: every category mapped to an
// empty selection.
func (v *Vocabulary) ClearAll() State {
	s := make(State, len(v.categories))
	for _, c := range v.categories {
		s[c.Key] = []string{}
	}
	return s
}

// Toggle flips value in category using the category's configured selection mode.
func (v *Vocabulary) Toggle(state State, category, value string) State {
	return Toggle(state, category, value, v.IsSingleSelect(category))
}

// Toggle flips value in category. In single-select mode selecting the current
// value clears the category and any other value replaces the selection. In
// multi-select mode the value is added if absent and removed if present.
// The input state is never modified.
func Toggle(state State, category, value string, singleSelect bool) State {
	next := state.Clone()
	current := next[category]
	selected := indexOf(current, value) >= 0

	if singleSelect {
		if selected {
			next[category] = []string{}
		} else {
			next[category] = []string{value}
		}
		return next
	}

	if selected {
		next[category] = without(current, value)
	} else {
		next[category] = append(current, value)
	}
	return next
}

// Remove drops value from category if present. Other categories are untouched.
func Remove(state State, category, value string) State {
	next := state.Clone()
	if current, ok := next[category]; ok {
		next[category] = without(current, value)
	}
	return next
}

// CountActive is the total number of selected values across categories.
func CountActive(state State) int {
	total := 0
	for _, values := range state {
		total += len(values)
	}
	return total
}

func IsActive(state State, category, value string) bool {
	return indexOf(state[category], value) >= 0
}

// Equal reports whether a and b select the same values per category,
// ignoring order. Missing and empty categories are equivalent.
func Equal(a, b State) bool {
	for _, pair := range [][2]State{{a, b}, {b, a}} {
		for k, values := range pair[0] {
			other := pair[1][k]
			if len(values) != len(other) {
				return false
			}
			for _, val := range values {
				if indexOf(other, val) < 0 {
					return false
				}
			}
		}
	}
	return true
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

func without(values []string, v string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
