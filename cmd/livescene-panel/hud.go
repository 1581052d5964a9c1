package main

import (
	"fmt"
	"time"

	"LiveScene/internal/engine"
	"LiveScene/internal/renderer"
)

// hud writes frame statistics into the software backend's overlay once per rendered tick.
type hud struct {
	session *engine.Session
	backend *renderer.SoftwareBackend

	last   time.Time
	frames uint64
	fps    float64
}

func newHUD(session *engine.Session, backend *renderer.SoftwareBackend) *hud {
	return &hud{session: session, backend: backend, last: time.Now()}
}

func (h *hud) update() {
	frames := h.session.Loop.Frames()
	if elapsed := time.Since(h.last); elapsed >= time.Second {
		h.fps = float64(frames-h.frames) / elapsed.Seconds()
		h.frames = frames
		h.last = time.Now()
	}
	elev := h.session.Environment.Parameters().Elevation
	h.backend.SetOverlay(
		fmt.Sprintf("%.0f fps", h.fps),
		fmt.Sprintf("control: %s", h.session.Arbiter.State()),
		fmt.Sprintf("sun: %.1f deg", elev),
	)
}
