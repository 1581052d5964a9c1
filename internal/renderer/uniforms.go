package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms is a CPU-side uniform set. Backends upload every entry by name each frame; the set keeps
// insertion order so uploads are deterministic.
type Uniforms struct {
	values map[string]interface{}
	names  []string
}

func NewUniforms() *Uniforms {
	return &Uniforms{values: make(map[string]interface{})}
}

func (u *Uniforms) set(name string, v interface{}) {
	if _, ok := u.values[name]; !ok {
		u.names = append(u.names, name)
	}
	u.values[name] = v
}

func (u *Uniforms) SetFloat(name string, v float32)     { u.set(name, v) }
func (u *Uniforms) SetVec3(name string, v mgl32.Vec3)   { u.set(name, v) }
func (u *Uniforms) SetInt(name string, v int32)         { u.set(name, v) }
func (u *Uniforms) SetBool(name string, v bool)         { u.set(name, v) }
func (u *Uniforms) Get(name string) (interface{}, bool) { v, ok := u.values[name]; return v, ok }

func (u *Uniforms) Float(name string) (float32, bool) {
	v, ok := u.values[name].(float32)
	return v, ok
}

func (u *Uniforms) Vec3(name string) (mgl32.Vec3, bool) {
	v, ok := u.values[name].(mgl32.Vec3)
	return v, ok
}

// Names returns the uniform names in the order they were first set.
func (u *Uniforms) Names() []string {
	out := make([]string, len(u.names))
	copy(out, u.names)
	return out
}

func (u *Uniforms) Len() int { return len(u.names) }
