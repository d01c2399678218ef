// Package shell hosts CoreLab sub-applications behind a tab navigation.
package shell

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rcliao/corelab/internal/model"
)

// App is a sub-application the shell can host.
type App interface {
	Info() model.AppInfo
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
}

// InputCapturer is implemented by apps that own text fields. While
// CapturesInput reports true the shell passes app-switching keys through.
type InputCapturer interface {
	CapturesInput() bool
}

// Registry keeps the registered apps in registration order.
type Registry struct {
	mu   sync.RWMutex
	apps []App
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds app. Registering an id twice is an error.
func (r *Registry) Register(app App) error {
	id := app.Info().ID
	if id == "" {
		return fmt.Errorf("register app: empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(id) >= 0 {
		return fmt.Errorf("app %q already registered", id)
	}
	r.apps = append(r.apps, app)
	return nil
}

// Get returns the app registered under id.
func (r *Registry) Get(id string) (App, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.apps[i], true
	}
	return nil, false
}

// List returns the descriptions of all registered apps.
func (r *Registry) List() []model.AppInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]model.AppInfo, len(r.apps))
	for i, a := range r.apps {
		infos[i] = a.Info()
	}
	return infos
}

// Unregister removes the app registered under id and returns it.
func (r *Registry) Unregister(id string) (App, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return nil, false
	}
	app := r.apps[i]
	r.apps = append(r.apps[:i:i], r.apps[i+1:]...)
	return app, true
}

// Len returns the number of registered apps.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

func (r *Registry) index(id string) int {
	for i, a := range r.apps {
		if a.Info().ID == id {
			return i
		}
	}
	return -1
}
