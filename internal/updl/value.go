package updl

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Vec3 is a three-component vector used for positions, rotations and scales.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Default colors applied when a node carries no color input.
const (
	DefaultObjectColor = "#ff0000"
	DefaultLightColor  = "#FFFFFF"
)

// numberValue coerces a raw input value to a float64. Non-numeric and
// absent values resolve to def so NaN/undefined never propagate downstream.
func numberValue(v interface{}, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

func numField(inputs map[string]interface{}, key string, def float64) float64 {
	v, ok := inputs[key]
	if !ok {
		return def
	}
	return numberValue(v, def)
}

func strField(inputs map[string]interface{}, key, def string) string {
	if v, ok := inputs[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func boolField(inputs map[string]interface{}, key string, def bool) bool {
	v, ok := inputs[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return def
}

// vec3Value normalizes a raw vector value. Both object form {x,y,z} and
// 3-element array form are accepted; missing or non-numeric components
// fall back to the matching component of def.
func vec3Value(v interface{}, def Vec3) (Vec3, bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		return Vec3{
			X: numberValue(val["x"], def.X),
			Y: numberValue(val["y"], def.Y),
			Z: numberValue(val["z"], def.Z),
		}, true
	case []interface{}:
		out := def
		if len(val) > 0 {
			out.X = numberValue(val[0], def.X)
		}
		if len(val) > 1 {
			out.Y = numberValue(val[1], def.Y)
		}
		if len(val) > 2 {
			out.Z = numberValue(val[2], def.Z)
		}
		return out, true
	}
	return def, false
}

// vec3Field reads a vector input. The editor emits either a single
// composite value under key, or per-axis scalars keyX/keyY/keyZ.
func vec3Field(inputs map[string]interface{}, key string, def Vec3) Vec3 {
	if v, ok := inputs[key]; ok {
		if vec, ok := vec3Value(v, def); ok {
			return vec
		}
	}
	return Vec3{
		X: numField(inputs, key+"X", def.X),
		Y: numField(inputs, key+"Y", def.Y),
		Z: numField(inputs, key+"Z", def.Z),
	}
}

// scaleField reads a scale input, which may be a uniform scalar, a
// composite vector, or absent.
func scaleField(inputs map[string]interface{}, key string, def Vec3) Vec3 {
	v, ok := inputs[key]
	if !ok {
		return vec3Field(inputs, key, def)
	}
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		vec, _ := vec3Value(v, def)
		return vec
	default:
		// Uniform scalar; non-numeric input keeps the default.
		if f := numberValue(v, 0); f != 0 {
			return Vec3{X: f, Y: f, Z: f}
		}
		return def
	}
}

func colorField(inputs map[string]interface{}, key, def string) string {
	return strField(inputs, key, def)
}

func lowerField(inputs map[string]interface{}, key, def string) string {
	return strings.ToLower(strField(inputs, key, def))
}

// objectValue normalizes a field that may arrive as a parsed object or a
// JSON-encoded string. Malformed JSON reports ok=false; the caller
// defaults instead of failing the node.
func objectValue(v interface{}) (map[string]interface{}, bool) {
	switch val := v.(type) {
	case map[string]interface{}:
		return val, true
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, false
		}
		var out map[string]interface{}
		if err := json.Unmarshal([]byte(val), &out); err != nil {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

// stringList normalizes a tags-style input: an array of strings or a
// comma-separated string.
func stringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
