// Package render writes resolved animation values onto an element.
//
// It is the last step of a frame: animations produce a [State] of style
// values and custom properties, and [HTML] applies it.
package render

import (
	"maps"
	"slices"
	"sync"
)

// Style maps style property names to resolved values.
type Style map[string]string

// State holds the values resolved for one element in one frame.
type State struct {
	// Style holds regular style properties.
	Style Style

	// Vars holds custom named properties (for example "--accent").
	Vars map[string]string
}

// Styler is an element whose presentation can be written to.
type Styler interface {
	SetStyle(name, value string)
	SetProperty(name, value string)
}

// Projector supplies layout-derived style overrides, computed from the
// element's declared style.
type Projector interface {
	ProjectionStyles(styleProp Style) Style
}

// HTML applies st to el. Regular style values are written first, then the
// projector's overrides (when proj is non-nil), then custom properties.
// Within each pass, keys are written in sorted order.
func HTML(el Styler, st State, styleProp Style, proj Projector) {
	for _, k := range slices.Sorted(maps.Keys(st.Style)) {
		el.SetStyle(k, st.Style[k])
	}

	if proj != nil {
		overrides := proj.ProjectionStyles(styleProp)
		for _, k := range slices.Sorted(maps.Keys(overrides)) {
			el.SetStyle(k, overrides[k])
		}
	}

	for _, k := range slices.Sorted(maps.Keys(st.Vars)) {
		el.SetProperty(k, st.Vars[k])
	}
}

// Element is an in-memory [Styler]. The zero value is ready to use and it
// is safe for concurrent use.
type Element struct {
	mu    sync.Mutex
	style Style
	props map[string]string
}

// SetStyle implements Styler.
func (e *Element) SetStyle(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.style == nil {
		e.style = make(Style)
	}
	e.style[name] = value
}

// SetProperty implements Styler.
func (e *Element) SetProperty(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.props == nil {
		e.props = make(map[string]string)
	}
	e.props[name] = value
}

// Style returns a copy of the element's style values.
func (e *Element) Style() Style {
	e.mu.Lock()
	defer e.mu.Unlock()

	return maps.Clone(e.style)
}

// Properties returns a copy of the element's custom properties.
func (e *Element) Properties() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return maps.Clone(e.props)
}

// Property returns the value of a custom property and whether it is set.
func (e *Element) Property(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.props[name]
	return v, ok
}
