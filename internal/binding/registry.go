// Package binding maps parameter-panel controls to scene mutations.
//
// Every control has a string id and a typed callback. Dispatch coerces the raw panel value to the
// control's type, clamps it into range and runs the callback synchronously. The registry is owned by
// the scene goroutine and is not safe for concurrent use.
package binding

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"go.uber.org/zap"
)

var (
	ErrUnknownControl   = errors.New("binding: unknown control")
	ErrDuplicateControl = errors.New("binding: duplicate control id")
	ErrInvalidValue     = errors.New("binding: invalid value")
	ErrGeometrySwap     = errors.New("binding: geometry swap failed")
)

type Kind int

const (
	Float Kind = iota
	Int
	Bool
	Color
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Color:
		return "color"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Control describes one panel widget. Min and Max bound Float and Int controls when Max > Min.
type Control struct {
	ID      string
	Label   string
	Group   string
	Kind    Kind
	Min     float64
	Max     float64
	Step    float64
	Default Value
}

// Value is a coerced control value; only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Float float64
	Int   int
	Bool  bool
	Color uint32
}

func FloatValue(v float64) Value { return Value{Kind: Float, Float: v} }
func IntValue(v int) Value       { return Value{Kind: Int, Int: v} }
func BoolValue(v bool) Value     { return Value{Kind: Bool, Bool: v} }
func ColorValue(v uint32) Value  { return Value{Kind: Color, Color: v} }

func (v Value) String() string {
	switch v.Kind {
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case Int:
		return strconv.Itoa(v.Int)
	case Bool:
		return strconv.FormatBool(v.Bool)
	case Color:
		return fmt.Sprintf("#%06x", v.Color)
	}
	return "?"
}

type binding struct {
	control Control
	apply   func(Value) error
	value   Value
}

type Registry struct {
	bindings map[string]*binding
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]*binding)}
}

// Bind registers a control. The callback receives values already coerced and clamped.
func (r *Registry) Bind(c Control, onChange func(Value) error) error {
	if c.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidValue)
	}
	if _, ok := r.bindings[c.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateControl, c.ID)
	}
	c.Default.Kind = c.Kind
	r.bindings[c.ID] = &binding{control: c, apply: onChange, value: c.Default}
	r.order = append(r.order, c.ID)
	return nil
}

func (r *Registry) BindFloat(c Control, onChange func(float64) error) error {
	c.Kind = Float
	return r.Bind(c, func(v Value) error { return onChange(v.Float) })
}

func (r *Registry) BindInt(c Control, onChange func(int) error) error {
	c.Kind = Int
	return r.Bind(c, func(v Value) error { return onChange(v.Int) })
}

func (r *Registry) BindBool(c Control, onChange func(bool) error) error {
	c.Kind = Bool
	return r.Bind(c, func(v Value) error { return onChange(v.Bool) })
}

func (r *Registry) BindColor(c Control, onChange func(uint32) error) error {
	c.Kind = Color
	return r.Bind(c, func(v Value) error { return onChange(v.Color) })
}

// Dispatch applies one change event. It returns after the mutation completed; the value is recorded
// only if the callback succeeded, or if it failed with renderer.ErrDisposeFailed after the new geometry
// was bound.
func (r *Registry) Dispatch(id string, raw interface{}) error {
	b, ok := r.bindings[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, id)
	}
	v, err := coerce(b.control, raw)
	if err != nil {
		logger.Log.Warn("Rejected control value", zap.String("control", id), zap.Any("value", raw), zap.Error(err))
		return err
	}
	if err := b.apply(v); err != nil {
		if errors.Is(err, renderer.ErrDisposeFailed) {
			b.value = v
			logger.Log.Warn("Control applied, old geometry not released", zap.String("control", id), zap.Stringer("value", v), zap.Error(err))
			return fmt.Errorf("control %q: %w", id, err)
		}
		logger.Log.Error("Control update failed", zap.String("control", id), zap.Stringer("value", v), zap.Error(err))
		return fmt.Errorf("control %q: %w", id, err)
	}
	b.value = v
	logger.Log.Debug("Control applied", zap.String("control", id), zap.Stringer("value", v))
	return nil
}

// Controls lists the registered controls in registration order.
func (r *Registry) Controls() []Control {
	out := make([]Control, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bindings[id].control)
	}
	return out
}

func (r *Registry) Control(id string) (Control, bool) {
	b, ok := r.bindings[id]
	if !ok {
		return Control{}, false
	}
	return b.control, true
}

// Value returns the last applied value of a control, or its default.
func (r *Registry) Value(id string) (Value, bool) {
	b, ok := r.bindings[id]
	if !ok {
		return Value{}, false
	}
	return b.value, true
}

func coerce(c Control, raw interface{}) (Value, error) {
	switch c.Kind {
	case Float:
		f, err := toFloat(raw)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(clampRange(f, c)), nil
	case Int:
		f, err := toFloat(raw)
		if err != nil {
			return Value{}, err
		}
		return IntValue(int(math.Round(clampRange(f, c)))), nil
	case Bool:
		b, err := toBool(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	case Color:
		col, err := toColor(raw)
		if err != nil {
			return Value{}, err
		}
		return ColorValue(col), nil
	}
	return Value{}, fmt.Errorf("%w: control kind %v", ErrInvalidValue, c.Kind)
}

func clampRange(f float64, c Control) float64 {
	if c.Max <= c.Min {
		return f
	}
	return math.Max(c.Min, math.Min(c.Max, f))
}

func toFloat(raw interface{}) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, raw)
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("%w: NaN", ErrInvalidValue)
	}
	return f, nil
}

func toBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%w: %q is not a bool", ErrInvalidValue, v)
		}
		return b, nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %T is not a bool", ErrInvalidValue, raw)
	}
	return f != 0, nil
}

// toColor accepts 0xRRGGBB integers and "#rrggbb", "0xrrggbb" or "rrggbb" strings.
func toColor(raw interface{}) (uint32, error) {
	var c uint64
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimPrefix(s, "#")
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		parsed, err := strconv.ParseUint(s, 16, 32)
		if err != nil || len(s) != 6 {
			return 0, fmt.Errorf("%w: %q is not a #rrggbb color", ErrInvalidValue, v)
		}
		c = parsed
	default:
		f, err := toFloat(raw)
		if err != nil || f < 0 || f != math.Trunc(f) {
			return 0, fmt.Errorf("%w: %v is not a color", ErrInvalidValue, raw)
		}
		c = uint64(f)
	}
	if c > 0xffffff {
		return 0, fmt.Errorf("%w: color 0x%x out of range", ErrInvalidValue, c)
	}
	return uint32(c), nil
}
