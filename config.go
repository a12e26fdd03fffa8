package docfed

import "time"

// ConfigProvider supplies hierarchical configuration values by dotted
// key path (e.g., "policy.ttl.long"). Absent keys are normal; callers
// fall back to built-in defaults.
type ConfigProvider interface {
	Get(path string) (value any, ok bool)
}

// ConfigString reads a string value, falling back to def when the key
// is absent or not a string.
func ConfigString(c ConfigProvider, path, def string) string {
	if c == nil {
		return def
	}
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// ConfigInt reads an integer value, falling back to def when the key
// is absent or not numeric.
func ConfigInt(c ConfigProvider, path string, def int) int {
	if c == nil {
		return def
	}
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// ConfigFloat reads a float value, falling back to def when the key is
// absent or not numeric.
func ConfigFloat(c ConfigProvider, path string, def float64) float64 {
	if c == nil {
		return def
	}
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

// ConfigBool reads a boolean value, falling back to def when the key
// is absent or not a boolean.
func ConfigBool(c ConfigProvider, path string, def bool) bool {
	if c == nil {
		return def
	}
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// ConfigDuration reads a duration value, falling back to def when the
// key is absent or unparseable. String values use time.ParseDuration
// syntax; numeric values are interpreted as seconds.
func ConfigDuration(c ConfigProvider, path string, def time.Duration) time.Duration {
	if c == nil {
		return def
	}
	v, ok := c.Get(path)
	if !ok {
		return def
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return def
		}
		return parsed
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	}
	return def
}
