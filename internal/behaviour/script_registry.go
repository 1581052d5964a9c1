package behaviour

import (
	"errors"
	"fmt"
	"sort"

	"LiveScene/internal/renderer"
)

var ErrUnknownScript = errors.New("unknown behaviour")

// ScriptConstructor builds a behaviour acting on the given objects.
type ScriptConstructor func(objects []*renderer.Model) Behaviour

// Scripts maps behaviour names, as used in configuration files, to constructors.
type Scripts struct {
	constructors map[string]ScriptConstructor
}

func NewScripts() *Scripts {
	return &Scripts{constructors: make(map[string]ScriptConstructor)}
}

// DefaultScripts knows every behaviour in this package.
func DefaultScripts() *Scripts {
	s := NewScripts()
	s.Register("spin", func(objects []*renderer.Model) Behaviour { return NewSpin(objects) })
	return s
}

func (s *Scripts) Register(name string, constructor ScriptConstructor) {
	s.constructors[name] = constructor
}

func (s *Scripts) Names() []string {
	names := make([]string, 0, len(s.constructors))
	for name := range s.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scripts) Create(name string, objects []*renderer.Model) (Behaviour, error) {
	constructor, ok := s.constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}
	return constructor(objects), nil
}
