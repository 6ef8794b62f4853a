package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"voxelfield/internal/density"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultResolution is used when the file omits resolution
	DefaultResolution = 40
	// DefaultRate is used when the file omits rate (recomputes per second)
	DefaultRate = 20.0
)

var (
	// ErrUnknownPause is returned for pause predicate names nobody registered.
	ErrUnknownPause = errors.New("config: unknown pause predicate")
	// ErrInvalidParam is returned for params that are neither numbers nor booleans.
	ErrInvalidParam = errors.New("config: params must be numbers or booleans")
)

var validate = validator.New()

// File is the on-disk scene description
type File struct {
	Resolution int            `yaml:"resolution" validate:"gte=2,lte=512"`
	Rate       float64        `yaml:"rate" validate:"gt=0"`
	Density    string         `yaml:"density" validate:"required"`
	Pause      PauseSpec      `yaml:"pause"`
	Params     map[string]any `yaml:"params"`
	LogLevel   string         `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns a File holding only defaults
func Default() File {
	return File{
		Resolution: DefaultResolution,
		Rate:       DefaultRate,
		LogLevel:   "info",
	}
}

// Load reads and validates a scene file
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("could not read scene file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a scene document over the defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	f := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("parse scene: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate checks field constraints and param types
func (f File) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid scene: %w", err)
	}
	if _, _, err := f.SplitParams(); err != nil {
		return err
	}
	return nil
}

// SplitParams separates numeric (slider) params from boolean (checkbox) ones
func (f File) SplitParams() (map[string]float64, map[string]bool, error) {
	sliders := make(map[string]float64)
	checks := make(map[string]bool)
	for k, v := range f.Params {
		switch x := v.(type) {
		case int:
			sliders[k] = float64(x)
		case float64:
			sliders[k] = x
		case bool:
			checks[k] = x
		default:
			return nil, nil, fmt.Errorf("%w: %q is %T", ErrInvalidParam, k, v)
		}
	}
	return sliders, checks, nil
}

// PauseSpec is the pause key as written in the file: omitted, a boolean, or
// the name of a predicate ("param:<checkbox>" or one the host registers).
type PauseSpec struct {
	Set       bool
	Value     bool
	Predicate string
}

// UnmarshalYAML implements yaml.Unmarshaler
func (p *PauseSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.ShortTag() {
	case "!!null":
		*p = PauseSpec{}
		return nil
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err != nil {
			return err
		}
		*p = PauseSpec{Set: true, Value: v}
		return nil
	case "!!str":
		name := strings.TrimSpace(node.Value)
		if name == "" {
			return fmt.Errorf("line %d: pause predicate name is empty", node.Line)
		}
		*p = PauseSpec{Set: true, Predicate: name}
		return nil
	default:
		return fmt.Errorf("line %d: pause must be a boolean or a predicate name", node.Line)
	}
}

// Resolve turns the pause key into a Pause. Host predicates are looked up by name;
// "param:<name>" reads a checkbox param from env on every evaluation.
func (p PauseSpec) Resolve(predicates map[string]func() bool, env *density.Env) (Pause, error) {
	if !p.Set {
		return Pause{}, nil
	}
	if p.Predicate == "" {
		return FixedPause(p.Value), nil
	}
	if name, ok := strings.CutPrefix(p.Predicate, "param:"); ok && name != "" {
		return DynamicPause(func() bool { return env.Checkbox(name, false) }), nil
	}
	if fn, ok := predicates[p.Predicate]; ok && fn != nil {
		return DynamicPause(fn), nil
	}
	return Pause{}, fmt.Errorf("%w: %q", ErrUnknownPause, p.Predicate)
}
