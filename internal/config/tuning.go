package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// getFloatMap reads recommender overrides either as a nested table (config file)
// or as "name=value,name=value" (env or flag).
func getFloatMap(v *viper.Viper, key string) (map[string]float64, error) {
	out := map[string]float64{}
	if !v.IsSet(key) {
		return out, nil
	}

	switch typed := v.Get(key).(type) {
	case map[string]interface{}:
		for name, raw := range typed {
			f, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", key, name, err)
			}
			out[name] = f
		}
	case map[string]string:
		for name, raw := range typed {
			f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", key, name, err)
			}
			out[name] = f
		}
	case string:
		for name, raw := range parseStringMap(typed) {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", key, name, err)
			}
			out[name] = f
		}
	default:
		return nil, fmt.Errorf("%s: unsupported value %T", key, typed)
	}
	return out, nil
}

func toFloat(raw interface{}) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("not a number: %v", raw)
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
