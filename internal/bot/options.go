package bot

import (
	"fmt"
)

// OptionType discriminates the widget an option renders as.
type OptionType string

const (
	OptionSlider     OptionType = "slider"
	OptionCheckboxes OptionType = "checkboxes"
	OptionDropdown   OptionType = "dropdown"
	OptionText       OptionType = "text"
)

// Option is one entry in a script's configuration schema.
type Option struct {
	Key   string
	Title string
	Type  OptionType

	// Slider bounds.
	Min, Max int
	// Checkbox / dropdown choices.
	Values []string
	// Text hint.
	Placeholder string
}

// OptionsBuilder collects a script's configuration schema. Scripts add
// options in CreateOptions; view layers render the schema and hand a
// value map back for validation.
type OptionsBuilder struct {
	opts  []Option
	byKey map[string]int
}

// NewOptionsBuilder returns an empty schema.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{byKey: make(map[string]int)}
}

func (ob *OptionsBuilder) add(o Option) {
	if _, dup := ob.byKey[o.Key]; dup {
		// A duplicate key is a script bug; last writer wins.
		ob.opts[ob.byKey[o.Key]] = o
		return
	}
	ob.byKey[o.Key] = len(ob.opts)
	ob.opts = append(ob.opts, o)
}

// AddSlider declares an integer option constrained to [min, max].
func (ob *OptionsBuilder) AddSlider(key, title string, min, max int) {
	ob.add(Option{Key: key, Title: title, Type: OptionSlider, Min: min, Max: max})
}

// AddCheckboxes declares a multi-select option over fixed values.
func (ob *OptionsBuilder) AddCheckboxes(key, title string, values []string) {
	ob.add(Option{Key: key, Title: title, Type: OptionCheckboxes, Values: values})
}

// AddDropdown declares a single-select option over fixed values.
func (ob *OptionsBuilder) AddDropdown(key, title string, values []string) {
	ob.add(Option{Key: key, Title: title, Type: OptionDropdown, Values: values})
}

// AddText declares a free-form string option.
func (ob *OptionsBuilder) AddText(key, title, placeholder string) {
	ob.add(Option{Key: key, Title: title, Type: OptionText, Placeholder: placeholder})
}

// Options returns the declared schema in declaration order.
func (ob *OptionsBuilder) Options() []Option {
	out := make([]Option, len(ob.opts))
	copy(out, ob.opts)
	return out
}

// Validate checks a saved value map against the schema: every key must be
// declared and every value must fit its option's type and constraints.
func (ob *OptionsBuilder) Validate(values map[string]any) error {
	for key, val := range values {
		idx, ok := ob.byKey[key]
		if !ok {
			return fmt.Errorf("unknown option %q", key)
		}
		opt := ob.opts[idx]

		switch opt.Type {
		case OptionSlider:
			n, ok := asInt(val)
			if !ok {
				return fmt.Errorf("option %q: expected a number, got %T", key, val)
			}
			if n < opt.Min || n > opt.Max {
				return fmt.Errorf("option %q: %d outside [%d, %d]", key, n, opt.Min, opt.Max)
			}
		case OptionCheckboxes:
			selected, ok := asStrings(val)
			if !ok {
				return fmt.Errorf("option %q: expected a string list, got %T", key, val)
			}
			for _, s := range selected {
				if !contains(opt.Values, s) {
					return fmt.Errorf("option %q: %q is not an allowed value", key, s)
				}
			}
		case OptionDropdown:
			s, ok := val.(string)
			if !ok {
				return fmt.Errorf("option %q: expected a string, got %T", key, val)
			}
			if !contains(opt.Values, s) {
				return fmt.Errorf("option %q: %q is not an allowed value", key, s)
			}
		case OptionText:
			if _, ok := val.(string); !ok {
				return fmt.Errorf("option %q: expected a string, got %T", key, val)
			}
		}
	}
	return nil
}

// asInt accepts the numeric shapes a JSON decoder or a native caller
// produces.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
