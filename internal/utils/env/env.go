package env

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseSpecs parses `KEY=VALUE` entries and `KEY` entries, the latter take the value
// from the current process environment.
func ParseSpecs(specs []string) (map[string]string, error) {
	env := make(map[string]string, len(specs))

	for _, spec := range specs {
		if spec == "" {
			return nil, fmt.Errorf("environment variable spec cannot be empty")
		}

		if key, value, ok := strings.Cut(spec, "="); ok {
			if !isValidKey(key) {
				return nil, fmt.Errorf("invalid environment variable key %q", key)
			}

			env[key] = value
			continue
		}

		if !isValidKey(spec) {
			return nil, fmt.Errorf("invalid environment variable key %q", spec)
		}

		value, ok := os.LookupEnv(spec)
		if !ok {
			return nil, fmt.Errorf("environment variable %q is not set", spec)
		}

		env[spec] = value
	}

	return env, nil
}

// Merge merges the envs, later ones override previous ones. Returns nil when
// there is nothing to merge.
func Merge(envs ...map[string]string) map[string]string {
	var merged map[string]string
	for _, env := range envs {
		for k, v := range env {
			if merged == nil {
				merged = map[string]string{}
			}
			merged[k] = v
		}
	}

	return merged
}

// List returns the env as `KEY=VALUE` entries sorted by key.
func List(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := make([]string, 0, len(keys))
	for _, k := range keys {
		res = append(res, k+"="+env[k])
	}
	return res
}

func isValidKey(k string) bool {
	return envKeyRegexp.MatchString(k)
}
