package chainflow

import (
	"strconv"

	"github.com/pkg/errors"
)

// DecodeConfig turns the structured configuration document of a chain
// definition into the typed configuration for the given pattern.
//
// Absent optional fields decode to empty or neutral values; only
// structurally wrong shapes (a list where a map is required, a
// non-numeric weight) are errors. The dispatcher converts decode errors
// into unsuccessful results rather than propagating them.
func DecodeConfig(pattern Pattern, raw map[string]any) (PatternConfig, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	switch pattern {
	case ConditionalChaining:
		return decodeConditional(raw)
	case SequentialDependency:
		return decodeSequential(raw)
	case ResultBasedRouting:
		return decodeRouting(raw)
	case AccumulativeChaining:
		return decodeAccumulative(raw)
	case ComplexWorkflow:
		return decodeWorkflow(raw)
	case FluentBuilder:
		return decodeFluent(raw)
	default:
		return nil, errors.Errorf("unsupported pattern %q", pattern)
	}
}

func decodeConditional(raw map[string]any) (*ConditionalChainingConfig, error) {
	cfg := &ConditionalChainingConfig{}

	trigger, ok, err := mapField(raw, "trigger-rule")
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := decodeRule(trigger)
		if err != nil {
			return nil, errors.Wrap(err, "trigger-rule")
		}
		cfg.TriggerRule = &r
	}

	if cfg.OnTrigger, err = ruleListField(raw, "on-trigger"); err != nil {
		return nil, err
	}
	if cfg.OnNoTrigger, err = ruleListField(raw, "on-no-trigger"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeSequential(raw map[string]any) (*SequentialDependencyConfig, error) {
	cfg := &SequentialDependencyConfig{}

	items, _, err := listField(raw, "stages")
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("stages[%d]: expected a map, got %T", i, item)
		}
		st := Stage{}
		if st.Order, err = intField(m, "order", i); err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
		rm, ok, err := mapField(m, "rule")
		if err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
		if ok {
			if st.Rule, err = decodeRule(rm); err != nil {
				return nil, errors.Wrapf(err, "stages[%d]", i)
			}
		}
		if st.DependsOn, err = stringListField(m, "depends-on"); err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
		st.DependencyCondition = stringField(m, "dependency-condition", "")
		st.OutputVariable = stringField(m, "output-variable", "")
		cfg.Stages = append(cfg.Stages, st)
	}
	return cfg, nil
}

func decodeRouting(raw map[string]any) (*ResultRoutingConfig, error) {
	cfg := &ResultRoutingConfig{Routes: map[string][]Rule{}}

	router, ok, err := mapField(raw, "router-rule")
	if err != nil {
		return nil, err
	}
	if ok {
		if cfg.RouterRule, err = decodeRule(router); err != nil {
			return nil, errors.Wrap(err, "router-rule")
		}
		cfg.OutputVariable = stringField(router, "output-variable", "")
	}

	routes, ok, err := mapField(raw, "routes")
	if err != nil {
		return nil, err
	}
	if !ok {
		return cfg, nil
	}
	for key, v := range routes {
		// A route is either a rule list directly, or a map carrying
		// a "rules" list.
		switch rv := v.(type) {
		case []any:
			rules, err := decodeRuleList(rv)
			if err != nil {
				return nil, errors.Wrapf(err, "routes[%s]", key)
			}
			cfg.Routes[key] = rules
		case map[string]any:
			items, _, err := listField(rv, "rules")
			if err != nil {
				return nil, errors.Wrapf(err, "routes[%s]", key)
			}
			rules, err := decodeRuleList(items)
			if err != nil {
				return nil, errors.Wrapf(err, "routes[%s]", key)
			}
			cfg.Routes[key] = rules
		case nil:
			cfg.Routes[key] = nil
		default:
			return nil, errors.Errorf("routes[%s]: expected a rule list, got %T", key, v)
		}
	}
	return cfg, nil
}

func decodeAccumulative(raw map[string]any) (*AccumulativeConfig, error) {
	cfg := &AccumulativeConfig{
		AccumulatorVariable: stringField(raw, "accumulator-variable", "totalScore"),
	}
	if cfg.AccumulatorVariable == "" {
		// An unnamed accumulator would poison every downstream
		// expression; fall back to the conventional name instead
		// of skipping.
		cfg.AccumulatorVariable = "totalScore"
	}

	var err error
	if cfg.InitialValue, err = floatField(raw, "initial-value", 0); err != nil {
		return nil, err
	}

	items, _, err := listField(raw, "accumulation-rules")
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("accumulation-rules[%d]: expected a map, got %T", i, item)
		}
		ar := AccumulationRule{}

		// The rule fields may be nested under "rule" or written inline
		// next to the weight, as the original chain documents do.
		if rm, ok, err := mapField(m, "rule"); err != nil {
			return nil, errors.Wrapf(err, "accumulation-rules[%d]", i)
		} else if ok {
			if ar.Rule, err = decodeRule(rm); err != nil {
				return nil, errors.Wrapf(err, "accumulation-rules[%d]", i)
			}
		} else if ar.Rule, err = decodeRule(m); err != nil {
			return nil, errors.Wrapf(err, "accumulation-rules[%d]", i)
		}

		if ar.Weight, err = floatField(m, "weight", 1); err != nil {
			return nil, errors.Wrapf(err, "accumulation-rules[%d]", i)
		}
		ar.Priority = stringField(m, "priority", "")
		ar.AccumulationExpression = stringField(m, "accumulation-expression", "")
		cfg.Rules = append(cfg.Rules, ar)
	}

	if sel, ok, err := mapField(raw, "rule-selection"); err != nil {
		return nil, err
	} else if ok {
		rs := &RuleSelection{
			Strategy:            stringField(sel, "strategy", SelectAll),
			MinPriority:         stringField(sel, "min-priority", "LOW"),
			ThresholdExpression: stringField(sel, "threshold-expression", ""),
		}
		if rs.WeightThreshold, err = floatField(sel, "weight-threshold", 0); err != nil {
			return nil, errors.Wrap(err, "rule-selection")
		}
		if rs.MaxRules, err = intField(sel, "max-rules", 0); err != nil {
			return nil, errors.Wrap(err, "rule-selection")
		}
		cfg.Selection = rs
	}

	final, ok, err := mapField(raw, "final-decision-rule")
	if err != nil {
		return nil, err
	}
	if ok {
		r, err := decodeRule(final)
		if err != nil {
			return nil, errors.Wrap(err, "final-decision-rule")
		}
		cfg.FinalDecisionRule = &r
	}
	return cfg, nil
}

func decodeWorkflow(raw map[string]any) (*ComplexWorkflowConfig, error) {
	cfg := &ComplexWorkflowConfig{}

	items, _, err := listField(raw, "stages")
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("stages[%d]: expected a map, got %T", i, item)
		}
		st := WorkflowStage{
			ID:        stringField(m, "id", stringField(m, "stage", "")),
			Condition: stringField(m, "condition", ""),
		}
		if st.Order, err = intField(m, "order", i); err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
		rm, ok, err := mapField(m, "rule")
		if err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
		if ok {
			if st.Rule, err = decodeRule(rm); err != nil {
				return nil, errors.Wrapf(err, "stages[%d]", i)
			}
		}
		if st.DependsOn, err = stringListField(m, "depends-on"); err != nil {
			return nil, errors.Wrapf(err, "stages[%d]", i)
		}
		st.OutputVariable = stringField(m, "output-variable", "")
		if st.ID == "" {
			st.ID = st.Rule.ID
		}
		cfg.Stages = append(cfg.Stages, st)
	}
	return cfg, nil
}

func decodeFluent(raw map[string]any) (*FluentBuilderConfig, error) {
	cfg := &FluentBuilderConfig{}

	root, ok, err := mapField(raw, "root-rule")
	if err != nil {
		return nil, err
	}
	if !ok {
		return cfg, nil
	}
	if cfg.Root, err = decodeTreeNode(root); err != nil {
		return nil, errors.Wrap(err, "root-rule")
	}
	return cfg, nil
}

func decodeTreeNode(m map[string]any) (*TreeNode, error) {
	rule, err := decodeRule(m)
	if err != nil {
		return nil, err
	}
	node := &TreeNode{Rule: rule}

	if child, ok, err := mapField(m, "on-success"); err != nil {
		return nil, err
	} else if ok {
		if node.OnSuccess, err = decodeTreeNode(child); err != nil {
			return nil, errors.Wrap(err, "on-success")
		}
	}
	if child, ok, err := mapField(m, "on-failure"); err != nil {
		return nil, err
	} else if ok {
		if node.OnFailure, err = decodeTreeNode(child); err != nil {
			return nil, errors.Wrap(err, "on-failure")
		}
	}
	return node, nil
}

func decodeRule(m map[string]any) (Rule, error) {
	return Rule{
		ID:        stringField(m, "id", ""),
		Condition: stringField(m, "condition", ""),
		Message:   stringField(m, "message", ""),
	}, nil
}

func decodeRuleList(items []any) ([]Rule, error) {
	var rules []Rule
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Errorf("rule %d: expected a map, got %T", i, item)
		}
		r, err := decodeRule(m)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d", i)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// Field accessors. Absent keys return the default with no error; keys
// present with the wrong shape are structural errors.

func stringField(m map[string]any, key, def string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func mapField(m map[string]any, key string) (map[string]any, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	mv, ok := v.(map[string]any)
	if !ok {
		return nil, false, errors.Errorf("%s: expected a map, got %T", key, v)
	}
	return mv, true, nil
}

func listField(m map[string]any, key string) ([]any, bool, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	lv, ok := v.([]any)
	if !ok {
		return nil, false, errors.Errorf("%s: expected a list, got %T", key, v)
	}
	return lv, true, nil
}

func ruleListField(m map[string]any, key string) ([]Rule, error) {
	items, ok, err := listField(m, key)
	if err != nil || !ok {
		return nil, err
	}
	rules, err := decodeRuleList(items)
	if err != nil {
		return nil, errors.Wrap(err, key)
	}
	return rules, nil
}

func stringListField(m map[string]any, key string) ([]string, error) {
	items, ok, err := listField(m, key)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("%s[%d]: expected a string, got %T", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func floatField(m map[string]any, key string, def float64) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, errors.Errorf("%s: expected a number, got %T", key, v)
	}
	return f, nil
}

func intField(m map[string]any, key string, def int) (int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return def, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, errors.Errorf("%s: expected an integer, got %T", key, v)
	}
	return int(f), nil
}

// toFloat widens any numeric value, bools as 1/0, and numeric strings,
// the way the accumulator arithmetic expects.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
