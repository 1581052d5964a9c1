package binding

import (
	"errors"
	"fmt"

	"LiveScene/internal/geometry"
	"LiveScene/internal/logger"
	"LiveScene/internal/renderer"

	"go.uber.org/zap"
)

// Rebuild regenerates an object's geometry from next and swaps it in. A record equal to the current one
// after clamping is a no-op. If the new geometry cannot be uploaded the old handle stays bound and the
// object's record is left unchanged. If only the release of the old handle fails, the edit is applied
// and the returned error wraps renderer.ErrDisposeFailed.
func Rebuild(scene *renderer.Scene, id string, next geometry.Params) error {
	m := scene.Object(id)
	if m == nil {
		return fmt.Errorf("%w: %q", renderer.ErrUnknownObject, id)
	}
	next = geometry.Clamp(next)
	if next == m.Params {
		return nil
	}

	h, err := scene.CreateGeometry(geometry.Build(next.Kind(), next))
	if err != nil {
		logger.Log.Error("Geometry upload failed, keeping previous geometry", zap.String("object", id), zap.Error(err))
		return fmt.Errorf("%w: object %q: %w", ErrGeometrySwap, id, err)
	}

	m.Params = next
	if err := scene.ReplaceGeometry(id, h); err != nil {
		if errors.Is(err, renderer.ErrDisposeFailed) {
			// the new handle is bound, so the edit stands
			return fmt.Errorf("object %q: %w", id, err)
		}
		return fmt.Errorf("%w: object %q: %w", ErrGeometrySwap, id, err)
	}
	logger.Log.Debug("Geometry rebuilt", zap.String("object", id), zap.Int("vertices", h.Vertices), zap.Int("triangles", h.Triangles))
	return nil
}

// editParams rebuilds object id after applying edit to its current record of type P.
func editParams[P geometry.Params](scene *renderer.Scene, id string, edit func(*P)) error {
	m := scene.Object(id)
	if m == nil {
		return fmt.Errorf("%w: %q", renderer.ErrUnknownObject, id)
	}
	p, ok := m.Params.(P)
	if !ok {
		return fmt.Errorf("%w: object %q holds %T", ErrInvalidValue, id, m.Params)
	}
	edit(&p)
	return Rebuild(scene, id, p)
}

func floatParam[P geometry.Params](r *Registry, scene *renderer.Scene, id, field, label string, def, lo, hi float64, set func(*P, float32)) error {
	c := Control{ID: id + "." + field, Label: label, Group: id, Min: lo, Max: hi, Step: (hi - lo) / 100, Default: FloatValue(def)}
	return r.BindFloat(c, func(v float64) error {
		return editParams(scene, id, func(p *P) { set(p, float32(v)) })
	})
}

func intParam[P geometry.Params](r *Registry, scene *renderer.Scene, id, field, label string, def, lo, hi int, set func(*P, int)) error {
	c := Control{ID: id + "." + field, Label: label, Group: id, Min: float64(lo), Max: float64(hi), Step: 1, Default: IntValue(def)}
	return r.BindInt(c, func(v int) error {
		return editParams(scene, id, func(p *P) { set(p, v) })
	})
}

// BindBox registers the box dimension and segment controls of object id.
func BindBox(r *Registry, scene *renderer.Scene, id string) error {
	p, ok := paramsOf[geometry.BoxParams](scene, id)
	if !ok {
		return fmt.Errorf("%w: %q is not a box", renderer.ErrUnknownObject, id)
	}
	return firstErr(
		floatParam(r, scene, id, "boxWidth", "Width", float64(p.Width), 0.1, 10, func(p *geometry.BoxParams, v float32) { p.Width = v }),
		floatParam(r, scene, id, "boxHeight", "Height", float64(p.Height), 0.1, 10, func(p *geometry.BoxParams, v float32) { p.Height = v }),
		floatParam(r, scene, id, "boxDepth", "Depth", float64(p.Depth), 0.1, 10, func(p *geometry.BoxParams, v float32) { p.Depth = v }),
		intParam(r, scene, id, "widthSegments", "Width segments", p.WidthSegments, 1, 32, func(p *geometry.BoxParams, v int) { p.WidthSegments = v }),
		intParam(r, scene, id, "heightSegments", "Height segments", p.HeightSegments, 1, 32, func(p *geometry.BoxParams, v int) { p.HeightSegments = v }),
		intParam(r, scene, id, "depthSegments", "Depth segments", p.DepthSegments, 1, 32, func(p *geometry.BoxParams, v int) { p.DepthSegments = v }),
	)
}

func BindSphere(r *Registry, scene *renderer.Scene, id string) error {
	p, ok := paramsOf[geometry.SphereParams](scene, id)
	if !ok {
		return fmt.Errorf("%w: %q is not a sphere", renderer.ErrUnknownObject, id)
	}
	return firstErr(
		floatParam(r, scene, id, "radius", "Radius", float64(p.Radius), 0.1, 5, func(p *geometry.SphereParams, v float32) { p.Radius = v }),
		intParam(r, scene, id, "widthSegments", "Width segments", p.WidthSegments, 3, 64, func(p *geometry.SphereParams, v int) { p.WidthSegments = v }),
		intParam(r, scene, id, "heightSegments", "Height segments", p.HeightSegments, 2, 64, func(p *geometry.SphereParams, v int) { p.HeightSegments = v }),
	)
}

func BindPlane(r *Registry, scene *renderer.Scene, id string) error {
	p, ok := paramsOf[geometry.PlaneParams](scene, id)
	if !ok {
		return fmt.Errorf("%w: %q is not a plane", renderer.ErrUnknownObject, id)
	}
	return firstErr(
		floatParam(r, scene, id, "width", "Width", float64(p.Width), 1, 200, func(p *geometry.PlaneParams, v float32) { p.Width = v }),
		floatParam(r, scene, id, "depth", "Depth", float64(p.Depth), 1, 200, func(p *geometry.PlaneParams, v float32) { p.Depth = v }),
		intParam(r, scene, id, "widthSegments", "Width segments", p.WidthSegments, 1, 128, func(p *geometry.PlaneParams, v int) { p.WidthSegments = v }),
		intParam(r, scene, id, "depthSegments", "Depth segments", p.DepthSegments, 1, 128, func(p *geometry.PlaneParams, v int) { p.DepthSegments = v }),
	)
}

func BindTerrain(r *Registry, scene *renderer.Scene, id string) error {
	p, ok := paramsOf[geometry.TerrainParams](scene, id)
	if !ok {
		return fmt.Errorf("%w: %q is not a terrain", renderer.ErrUnknownObject, id)
	}
	return firstErr(
		floatParam(r, scene, id, "width", "Width", float64(p.Plane.Width), 1, 200, func(p *geometry.TerrainParams, v float32) { p.Plane.Width = v }),
		floatParam(r, scene, id, "depth", "Depth", float64(p.Plane.Depth), 1, 200, func(p *geometry.TerrainParams, v float32) { p.Plane.Depth = v }),
		intParam(r, scene, id, "segments", "Segments", p.Plane.WidthSegments, 1, 128, func(p *geometry.TerrainParams, v int) {
			p.Plane.WidthSegments, p.Plane.DepthSegments = v, v
		}),
		floatParam(r, scene, id, "amplitude", "Amplitude", float64(p.Amplitude), 0, 10, func(p *geometry.TerrainParams, v float32) { p.Amplitude = v }),
		floatParam(r, scene, id, "frequency", "Frequency", float64(p.Frequency), 0.01, 1, func(p *geometry.TerrainParams, v float32) { p.Frequency = v }),
		intParam(r, scene, id, "seed", "Seed", int(p.Seed), 0, 9999, func(p *geometry.TerrainParams, v int) { p.Seed = int64(v) }),
	)
}

// BindMaterial registers color, visibility, wireframe, opacity, metalness and roughness of object id.
// These mutate the model directly and never touch its geometry.
func BindMaterial(r *Registry, scene *renderer.Scene, id string) error {
	m := scene.Object(id)
	if m == nil {
		return fmt.Errorf("%w: %q", renderer.ErrUnknownObject, id)
	}
	mat := m.Material
	return firstErr(
		r.BindColor(Control{ID: id + ".color", Label: "Color", Group: id, Default: ColorValue(uint32(m.ColorHex()))}, func(c uint32) error {
			m.SetColorHex(uint(c))
			return nil
		}),
		r.BindBool(Control{ID: id + ".visible", Label: "Visible", Group: id, Default: BoolValue(m.Visible)}, func(v bool) error {
			m.Visible = v
			return nil
		}),
		r.BindBool(Control{ID: id + ".wireframe", Label: "Wireframe", Group: id, Default: BoolValue(mat.Wireframe)}, func(v bool) error {
			m.Material.Wireframe = v
			return nil
		}),
		r.BindFloat(Control{ID: id + ".opacity", Label: "Opacity", Group: id, Min: 0, Max: 1, Step: 0.01, Default: FloatValue(float64(mat.Alpha))}, func(v float64) error {
			m.SetAlpha(float32(v))
			return nil
		}),
		r.BindFloat(Control{ID: id + ".metalness", Label: "Metalness", Group: id, Min: 0, Max: 1, Step: 0.01, Default: FloatValue(float64(mat.Metallic))}, func(v float64) error {
			m.SetMaterialPBR(float32(v), m.Material.Roughness)
			return nil
		}),
		r.BindFloat(Control{ID: id + ".roughness", Label: "Roughness", Group: id, Min: 0, Max: 1, Step: 0.01, Default: FloatValue(float64(mat.Roughness))}, func(v float64) error {
			m.SetMaterialPBR(m.Material.Metallic, float32(v))
			return nil
		}),
	)
}

func paramsOf[P geometry.Params](scene *renderer.Scene, id string) (P, bool) {
	var zero P
	m := scene.Object(id)
	if m == nil {
		return zero, false
	}
	p, ok := m.Params.(P)
	return p, ok
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
