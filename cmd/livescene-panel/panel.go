package main

import (
	"fmt"
	"strings"
	"sync/atomic"

	"LiveScene/internal/binding"
	"LiveScene/internal/engine"
	"LiveScene/internal/logger"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// panel is one widget per registry control, grouped in an accordion by control group.
type panel struct {
	session *engine.Session
	queue   *engine.EventQueue
	status  *widget.Label

	accordion *widget.Accordion
	setters   map[string]func(binding.Value)
	// syncing is set while sync moves widgets; their change callbacks must not post edits back.
	syncing atomic.Bool
}

func newPanel(session *engine.Session, queue *engine.EventQueue, status *widget.Label) *panel {
	p := &panel{
		session:   session,
		queue:     queue,
		status:    status,
		accordion: widget.NewAccordion(),
		setters:   make(map[string]func(binding.Value)),
	}

	groups := map[string]*fyne.Container{}
	for _, c := range session.Registry.Controls() {
		box, ok := groups[c.Group]
		if !ok {
			box = container.NewVBox()
			groups[c.Group] = box
			p.accordion.Append(widget.NewAccordionItem(c.Group, box))
		}
		v, _ := session.Registry.Value(c.ID)
		box.Add(p.control(c, v))
	}
	if len(p.accordion.Items) > 0 {
		p.accordion.Open(0)
	}
	return p
}

func (p *panel) object() fyne.CanvasObject {
	return container.NewVScroll(p.accordion)
}

// dispatch applies an edit on the session goroutine and reports rejections in the status line.
func (p *panel) dispatch(id string, value interface{}) {
	if p.syncing.Load() {
		return
	}
	err := p.queue.Post(func() {
		if err := p.session.Dispatch(id, value); err != nil {
			logger.Log.Warn("Edit rejected", zap.String("control", id), zap.Error(err))
			p.status.SetText(err.Error())
			return
		}
		v, _ := p.session.Registry.Value(id)
		p.status.SetText(fmt.Sprintf("%s = %s", id, v))
	})
	if err != nil {
		logger.Log.Debug("Edit dropped", zap.String("control", id), zap.Error(err))
	}
}

func (p *panel) control(c binding.Control, v binding.Value) fyne.CanvasObject {
	switch c.Kind {
	case binding.Bool:
		check := widget.NewCheck(c.Label, nil)
		check.SetChecked(v.Bool)
		check.OnChanged = func(b bool) { p.dispatch(c.ID, b) }
		p.setters[c.ID] = func(v binding.Value) { check.SetChecked(v.Bool) }
		return check

	case binding.Color:
		entry := widget.NewEntry()
		entry.SetText(v.String())
		entry.OnSubmitted = func(s string) { p.dispatch(c.ID, strings.TrimSpace(s)) }
		p.setters[c.ID] = func(v binding.Value) { entry.SetText(v.String()) }
		return container.NewBorder(nil, nil, widget.NewLabel(c.Label), nil, entry)

	default:
		slider := widget.NewSlider(c.Min, c.Max)
		slider.Step = c.Step
		if c.Kind == binding.Int {
			slider.Step = 1
		}
		value := widget.NewLabel(v.String())
		current := v.Float
		if c.Kind == binding.Int {
			current = float64(v.Int)
		}
		slider.SetValue(current)
		slider.OnChanged = func(f float64) {
			value.SetText(formatSlider(c.Kind, f))
			p.dispatch(c.ID, f)
		}
		p.setters[c.ID] = func(v binding.Value) {
			if v.Kind == binding.Int {
				slider.SetValue(float64(v.Int))
				return
			}
			slider.SetValue(v.Float)
		}
		return container.NewBorder(nil, nil, widget.NewLabel(c.Label), value, slider)
	}
}

// sync moves every widget to the registry's current value, after edits that did not come from the panel.
// It runs on the session goroutine, so the widgets' callbacks are muted meanwhile.
func (p *panel) sync() {
	p.syncing.Store(true)
	defer p.syncing.Store(false)
	for id, set := range p.setters {
		if v, ok := p.session.Registry.Value(id); ok {
			set(v)
		}
	}
}

func formatSlider(kind binding.Kind, f float64) string {
	if kind == binding.Int {
		return fmt.Sprintf("%d", int(f+0.5))
	}
	return fmt.Sprintf("%.3g", f)
}
