// Package module holds the module contract and the bootstrap registry used to
// look up another module's ports by name
package module

import (
	"reflect"
	"sync"

	phttp "immiwatch/internal/platform/net/http"
)

// Module mounts routes and exposes a port bundle for cross wiring
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

var registry sync.Map // name -> ports

// Register records ports under name, replacing any earlier entry
func Register(name string, ports any) { registry.Store(name, ports) }

// PortsAs returns the ports registered under name when they are a T
func PortsAs[T any](name string) (T, bool) {
	v, ok := registry.Load(name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Reset empties the registry between tests
func Reset() { registry.Clear() }

// PortsOf finds a T in m.Ports(): the bundle itself or one of its exported
// struct fields
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if t, ok := p.(T); ok {
		return t, true
	}
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range v.NumField() {
		if !v.Type().Field(i).IsExported() {
			continue
		}
		if t, ok := v.Field(i).Interface().(T); ok {
			return t, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for bootstrap code, where a missing port is a bug
func MustPortsOf[T any](m Module) T {
	t, ok := PortsOf[T](m)
	if !ok {
		panic("module " + m.Name() + ": requested port not found")
	}
	return t
}
