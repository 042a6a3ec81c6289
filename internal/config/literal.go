package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Literal is a scalar that may be written as a string, a number or a boolean.
// It always holds the textual form.
type Literal string

func (l *Literal) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case string:
		*l = Literal(t)
	case int64:
		*l = Literal(strconv.FormatInt(t, 10))
	case float64:
		*l = Literal(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*l = Literal(strconv.FormatBool(t))
	default:
		return fmt.Errorf("unsupported literal %T", v)
	}
	return nil
}

func (l *Literal) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: literal must be a scalar", n.Line)
	}
	*l = Literal(n.Value)
	return nil
}

// Number is a float that also accepts integer TOML values.
type Number float64

func (n *Number) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case int64:
		*n = Number(t)
	case float64:
		*n = Number(t)
	default:
		return fmt.Errorf("unsupported number %T", v)
	}
	return nil
}

// Float returns nil for an absent number.
func (n *Number) Float() *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}
