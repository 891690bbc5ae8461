// Package reflectid implements identity.Source on top of the reflect
// package, with reflect.Type as the handle.
package reflectid

import (
	"reflect"

	"github.com/mkorolik/typematch/identity"
	"github.com/mkorolik/typematch/internal/util"
)

// source is stateless; reflect.Type values are canonical per type, so
// handle equality is plain interface comparison.
type source struct{}

// New returns a Source backed by the reflect package.
// Category handles are reflect.Type values; interface categories match every
// implementing type, concrete categories match assignable types (including
// the type itself).
func New() identity.Source[reflect.Type] { return source{} }

func (source) TypeOf(v any) (reflect.Type, bool) {
	t := reflect.TypeOf(v)
	return t, t != nil
}

// Hash mixes the type descriptor's pointer identity through FNV-1a.
// reflect interns type descriptors, so the pointer is stable and unique for
// the life of the process.
func (source) Hash(t reflect.Type) uint64 {
	return util.Fnv64aUint64(uint64(reflect.ValueOf(t).Pointer()))
}

func (source) AssignableTo(concrete, category reflect.Type) bool {
	return concrete.AssignableTo(category)
}

// Alive always reports true: Go never unloads type metadata.
func (source) Alive(reflect.Type) bool { return true }

// InterfaceType returns the reflect.Type of the interface type parameter I.
// Handy when building category lists, since reflect.TypeOf on an interface
// value yields the dynamic type, not the interface itself.
func InterfaceType[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}
