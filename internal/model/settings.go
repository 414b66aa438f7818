package model

// GameSettings is the open key/value configuration of a room, merged from
// a game's defaults and host overrides. Validation is by convention; the
// typed accessors fall back when a key is missing or has the wrong shape.
type GameSettings map[string]any

// Merge returns a copy of s with every entry of overrides applied on top.
func (s GameSettings) Merge(overrides GameSettings) GameSettings {
	merged := make(GameSettings, len(s)+len(overrides))
	for k, v := range s {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of s.
func (s GameSettings) Clone() GameSettings {
	return GameSettings{}.Merge(s)
}

// Int reads an integer setting. JSON decoding yields float64 for numbers,
// so both forms are accepted.
func (s GameSettings) Int(key string, fallback int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// String reads a string setting.
func (s GameSettings) String(key, fallback string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return fallback
}

// Bool reads a boolean setting.
func (s GameSettings) Bool(key string, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return fallback
}

// Strings reads a string-list setting, tolerating []any from JSON.
func (s GameSettings) Strings(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Ints reads an int-list setting, tolerating []any from JSON.
func (s GameSettings) Ints(key string) []int {
	switch v := s[key].(type) {
	case []int:
		return v
	case []any:
		out := make([]int, 0, len(v))
		for _, e := range v {
			if f, ok := e.(float64); ok {
				out = append(out, int(f))
			}
		}
		return out
	default:
		return nil
	}
}
