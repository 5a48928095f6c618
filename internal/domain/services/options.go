package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ochairo/tinsrecipe/internal/domain/entities"
)

// ParseBool accepts the boolean spellings used in recipes and profiles
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// ParseOptions validates raw option values and fills missing options from
// defaults. Unknown keys and non-boolean values are rejected.
func ParseOptions(values map[string]string, defaults entities.OptionSet) (entities.OptionSet, error) {
	opts := defaults

	// Sorted so the first offending key reported is stable
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := values[key]
		if !entities.IsKnownOption(key) {
			return entities.OptionSet{}, &entities.InvalidOptionError{Key: key, Value: value, Reason: "unrecognized option"}
		}
		b, ok := ParseBool(value)
		if !ok {
			return entities.OptionSet{}, &entities.InvalidOptionError{Key: key, Value: value, Reason: "value must be a boolean"}
		}
		opts = opts.With(entities.OptionName(key), b)
	}

	return opts, nil
}

// ParseOptionAssignments splits key=value assignments, as given with -o on
// the command line, into a map. Later assignments win. A key may carry a
// package scope (libtins:shared=False); the scope must name pkg.
func ParseOptionAssignments(pkg string, assignments []string) (map[string]string, error) {
	values := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key, value, found := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, &entities.InvalidOptionError{Key: a, Reason: "expected key=value"}
		}
		if scope, name, scoped := strings.Cut(key, ":"); scoped {
			if scope != pkg {
				return nil, &entities.InvalidOptionError{Key: a, Reason: "option scoped to another package"}
			}
			key = name
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}

// OptionValues converts decoded option values to text. Only booleans and
// strings are accepted; a number such as 1 is an error rather than true.
func OptionValues(in map[string]interface{}) (map[string]string, error) {
	if len(in) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(in))
	for _, k := range keys {
		switch v := in[k].(type) {
		case bool:
			out[k] = strconv.FormatBool(v)
		case string:
			out[k] = v
		case nil:
			return nil, &entities.InvalidOptionError{Key: k, Reason: "missing value"}
		default:
			return nil, &entities.InvalidOptionError{Key: k, Value: fmt.Sprint(v), Reason: fmt.Sprintf("value must be a boolean or string, got %T", v)}
		}
	}
	return out, nil
}

// RecipeDefaults returns the built-in defaults overridden by a recipe's
// default_options table.
func RecipeDefaults(recipe *entities.Recipe) (entities.OptionSet, error) {
	if recipe == nil || len(recipe.DefaultOptions) == 0 {
		return entities.DefaultOptionSet(), nil
	}
	return ParseOptions(recipe.DefaultOptions, entities.DefaultOptionSet())
}
