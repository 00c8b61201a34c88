package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/source-licenser/pkg/actions"
	"github.com/Sumatoshi-tech/source-licenser/pkg/jsondoc"
)

// envPrefix is the environment variable prefix for source-licenser settings.
const envPrefix = "SOURCE_LICENSER"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

//go:embed schema.json
var schemaJSON string

// orderedSections holds the parts of the file that viper would lowercase
// or reorder.
type orderedSections struct {
	License struct {
		Substitutions map[string]string `yaml:"substitutions"`
	} `yaml:"license"`
	Files yaml.Node `yaml:"files"`
}

// LoadConfig loads the configuration file at path, applies environment
// overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return nil, fmt.Errorf("read config: %w", readErr)
	}

	var root yaml.Node

	parseErr := yaml.Unmarshal(data, &root)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfig, path, parseErr)
	}

	raw := map[string]any{}
	sections := orderedSections{}

	if root.Kind != 0 {
		decodeErr := root.Decode(&raw)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, decodeErr)
		}

		schemaErr := validateSchema(raw)
		if schemaErr != nil {
			return nil, schemaErr
		}

		decodeErr = root.Decode(&sections)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, decodeErr)
		}
	}

	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	mergeErr := viperCfg.MergeConfigMap(scalarSections(raw))
	if mergeErr != nil {
		return nil, fmt.Errorf("read config: %w", mergeErr)
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	files, filesErr := decodeFileSpecs(&sections.Files)
	if filesErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, filesErr)
	}

	cfg.Files = files
	cfg.License.Substitutions = sections.License.Substitutions

	absPath, absErr := filepath.Abs(path)
	if absErr != nil {
		return nil, fmt.Errorf("resolve config path: %w", absErr)
	}

	cfg.Dir = filepath.Dir(absPath)

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("license.content", "")
	viperCfg.SetDefault("license.file", "")
	viperCfg.SetDefault("ignores", []string{})

	viperCfg.SetDefault("walk.workers", DefaultWalkWorkers)
	viperCfg.SetDefault("walk.max_file_size", DefaultWalkMaxFileSize)
	viperCfg.SetDefault("walk.skip_vendor", false)
	viperCfg.SetDefault("walk.respect_gitignore", false)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.json", false)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
}

func validateSchema(raw map[string]any) error {
	result, validateErr := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(raw),
	)
	if validateErr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, validateErr)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(violations, "; "))
}

// scalarSections returns raw without the sections decoded from YAML nodes.
func scalarSections(raw map[string]any) map[string]any {
	out := maps.Clone(raw)
	delete(out, "files")

	if lic, ok := out["license"].(map[string]any); ok {
		lic = maps.Clone(lic)
		delete(lic, "substitutions")
		out["license"] = lic
	}

	return out
}

func decodeFileSpecs(node *yaml.Node) ([]FileSpec, error) {
	node = resolveAlias(node)
	if node.Kind == 0 {
		return nil, nil
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: files must be a mapping", node.Line)
	}

	specs := make([]FileSpec, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		spec := FileSpec{Pattern: node.Content[i].Value}

		actionsNode := resolveAlias(node.Content[i+1])
		if actionsNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: actions for %q must be a mapping", actionsNode.Line, spec.Pattern)
		}

		for j := 0; j+1 < len(actionsNode.Content); j += 2 {
			kind := actionsNode.Content[j].Value

			settings, enabled, err := decodeSettings(actionsNode.Content[j+1])
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", spec.Pattern, kind, err)
			}

			if enabled {
				spec.Actions = append(spec.Actions, ActionSpec{Kind: kind, Settings: settings})
			}
		}

		specs = append(specs, spec)
	}

	return specs, nil
}

// decodeSettings turns an action value into settings. true and null mean
// empty settings; false disables the action.
func decodeSettings(node *yaml.Node) (actions.Settings, bool, error) {
	node = resolveAlias(node)

	if node.Kind == yaml.ScalarNode {
		switch node.Tag {
		case "!!null":
			return actions.Settings{}, true, nil
		case "!!bool":
			var enabled bool

			decodeErr := node.Decode(&enabled)
			if decodeErr != nil {
				return nil, false, decodeErr
			}

			return actions.Settings{}, enabled, nil
		}
	}

	value, err := jsondoc.FromYAML(node)
	if err != nil {
		return nil, false, err
	}

	obj, ok := value.(*jsondoc.Object)
	if !ok {
		return nil, false, fmt.Errorf("line %d: settings must be a mapping or a boolean", node.Line)
	}

	settings := make(actions.Settings, obj.Len())

	for _, key := range obj.Keys() {
		settings[key], _ = obj.Get(key)
	}

	return settings, true, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}

	return node
}
