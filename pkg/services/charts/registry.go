package charts

import (
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"gonum.org/v1/plot/vg"
)

// Size is the canvas of one chart.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// Pixels reports the PNG dimensions of the canvas.
func (s Size) Pixels() (int, int) {
	return int(s.Width.Dots(dpi)), int(s.Height.Dots(dpi))
}

// RenderFunc draws one chart request as a PNG image
type RenderFunc func(req domain.ChartRequest, size Size) ([]byte, error)

// Registry maps chart kinds to their renderers
type Registry interface {
	// Register adds a renderer for a chart kind
	Register(kind domain.ChartKind, fn RenderFunc) error
	// Render draws the request with the renderer registered for its kind
	Render(req domain.ChartRequest, size Size) ([]byte, error)
	// Kinds returns the registered chart kinds
	Kinds() []domain.ChartKind
}

type registry struct {
	mu        sync.RWMutex
	renderers map[domain.ChartKind]RenderFunc
}

// NewRegistry creates an empty renderer registry
func NewRegistry() Registry {
	return &registry{
		renderers: make(map[domain.ChartKind]RenderFunc),
	}
}

// DefaultRegistry returns a registry with every built-in chart kind.
func DefaultRegistry() Registry {
	r := NewRegistry()
	builtins := map[domain.ChartKind]RenderFunc{
		domain.ChartBar:           renderBar,
		domain.ChartHorizontalBar: renderHorizontalBar,
		domain.ChartLine:          renderLine,
		domain.ChartPie:           renderPie,
		domain.ChartStackedBar:    renderStackedBar,
		domain.ChartFacetGrid:     renderFacetGrid,
	}
	for kind, fn := range builtins {
		// kinds are unique map keys, so registration cannot collide
		_ = r.Register(kind, fn)
	}
	return r
}

func (r *registry) Register(kind domain.ChartKind, fn RenderFunc) error {
	if kind == "" {
		return fmt.Errorf("chart kind cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("renderer cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[kind]; exists {
		return fmt.Errorf("chart kind %q is already registered", kind)
	}

	r.renderers[kind] = fn
	return nil
}

func (r *registry) Render(req domain.ChartRequest, size Size) ([]byte, error) {
	r.mu.RLock()
	fn, exists := r.renderers[req.Kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("chart kind %q is not registered", req.Kind)
	}

	return fn(req, size)
}

func (r *registry) Kinds() []domain.ChartKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.ChartKind, 0, len(r.renderers))
	for kind := range r.renderers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
