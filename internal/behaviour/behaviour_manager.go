package behaviour

import (
	"time"
)

// Behaviour is per-frame scene logic driven by the frame loop.
type Behaviour interface {
	Start()
	Update(dt time.Duration)
}

type behaviourWrapper struct {
	behaviour Behaviour
	started   bool
}

// Manager runs behaviours in registration order. Start is called once, right before the first Update.
type Manager struct {
	behaviours []behaviourWrapper
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(b Behaviour) {
	m.behaviours = append(m.behaviours, behaviourWrapper{behaviour: b})
}

func (m *Manager) Remove(b Behaviour) {
	for i := range m.behaviours {
		if m.behaviours[i].behaviour == b {
			m.behaviours = append(m.behaviours[:i], m.behaviours[i+1:]...)
			return
		}
	}
}

// Clear removes all behaviours from the manager
func (m *Manager) Clear() {
	m.behaviours = m.behaviours[:0]
}

func (m *Manager) Len() int { return len(m.behaviours) }

func (m *Manager) UpdateAll(dt time.Duration) {
	for i := range m.behaviours {
		if !m.behaviours[i].started {
			m.behaviours[i].behaviour.Start()
			m.behaviours[i].started = true
		}
		m.behaviours[i].behaviour.Update(dt)
	}
}
