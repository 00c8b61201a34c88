package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/source-licenser/pkg/jsondoc"
)

// Sentinel errors raised while applying actions.
var (
	// ErrBinaryContent is returned when a text action meets a binary file.
	ErrBinaryContent = errors.New("binary content")

	// ErrNotObject is returned when a JSON document root is not an object.
	ErrNotObject = errors.New("document root is not an object")
)

// Settings holds the per-action properties from configuration. Object
// values are *jsondoc.Object; plain map[string]any values are accepted too.
type Settings map[string]any

// ValidationError reports action settings that are missing or malformed.
type ValidationError struct {
	Action     string
	Properties []string
	// Expect describes the required shape; empty means the properties are missing.
	Expect string
}

func (e *ValidationError) Error() string {
	noun := "property"
	if len(e.Properties) > 1 {
		noun = "properties"
	}

	msg := fmt.Sprintf("action '%s' expects %s '%s'", e.Action, noun, strings.Join(e.Properties, "', '"))
	if e.Expect != "" {
		msg += " to be " + e.Expect
	}

	return msg
}

// ParseError reports a file whose content could not be interpreted.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// requireStrings returns the named non-blank string properties, reporting
// every missing one at once.
func (s Settings) requireStrings(action string, keys ...string) ([]string, error) {
	values := make([]string, len(keys))

	var missing []string

	for i, key := range keys {
		value, ok, err := s.optionalString(action, key)
		if err != nil {
			return nil, err
		}

		if !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, key)

			continue
		}

		values[i] = value
	}

	if len(missing) > 0 {
		return nil, &ValidationError{Action: action, Properties: missing}
	}

	return values, nil
}

func (s Settings) optionalString(action, key string) (string, bool, error) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return "", false, nil
	}

	value, isString := raw.(string)
	if !isString {
		return "", false, &ValidationError{Action: action, Properties: []string{key}, Expect: "a string"}
	}

	return value, true, nil
}

func (s Settings) optionalBool(action, key string) (bool, error) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return false, nil
	}

	value, isBool := raw.(bool)
	if !isBool {
		return false, &ValidationError{Action: action, Properties: []string{key}, Expect: "a boolean"}
	}

	return value, nil
}

func (s Settings) optionalObject(action, key string) (*jsondoc.Object, error) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return nil, nil
	}

	if obj, isObject := raw.(*jsondoc.Object); isObject {
		return obj, nil
	}

	if plain, isMap := raw.(map[string]any); isMap {
		converted, convErr := jsondoc.FromValue(plain)
		if convErr != nil {
			return nil, fmt.Errorf("action '%s' property '%s': %w", action, key, convErr)
		}

		obj, isObject := converted.(*jsondoc.Object)
		if isObject {
			return obj, nil
		}
	}

	return nil, &ValidationError{Action: action, Properties: []string{key}, Expect: "an object"}
}

// license resolves the license text, preferring a per-action override.
func (s Settings) license(action string, env Env) (string, error) {
	override, ok, err := s.optionalString(action, "license")
	if err != nil {
		return "", err
	}

	if ok && strings.TrimSpace(override) != "" {
		return override, nil
	}

	if strings.TrimSpace(env.DefaultLicense) == "" {
		return "", &ValidationError{Action: action, Properties: []string{"license"}}
	}

	return env.DefaultLicense, nil
}
