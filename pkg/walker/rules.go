package walker

import (
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/source-licenser/pkg/actions"
	"github.com/Sumatoshi-tech/source-licenser/pkg/config"
)

// Rule binds a path suffix to the prepared actions run on matching files.
type Rule struct {
	Pattern string
	Actions []actions.Action
}

// BuildRules prepares every configured action. Any invalid action settings
// fail the whole build so that no file is touched.
func BuildRules(specs []config.FileSpec, env actions.Env) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))

	for _, spec := range specs {
		rule := Rule{Pattern: spec.Pattern, Actions: make([]actions.Action, 0, len(spec.Actions))}

		for _, actionSpec := range spec.Actions {
			action, err := actions.New(actionSpec.Kind, actionSpec.Settings, env)
			if err != nil {
				return nil, fmt.Errorf("files %q: %w", spec.Pattern, err)
			}

			rule.Actions = append(rule.Actions, action)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// matchRule returns the first rule whose pattern ends the slash-separated path.
func matchRule(rules []Rule, slashPath string) (Rule, bool) {
	for _, rule := range rules {
		if strings.HasSuffix(slashPath, rule.Pattern) {
			return rule, true
		}
	}

	return Rule{}, false
}
