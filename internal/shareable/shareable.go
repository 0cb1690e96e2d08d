// File: internal/shareable/shareable.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reflective deep shareability predicate.

package shareable

import (
	"reflect"
	"unsafe"

	"github.com/momentics/atomcell/api"
)

// maxDepth bounds the walk; deeper values are treated as not shareable.
const maxDepth = 64

var (
	shareableType   = reflect.TypeOf((*api.Shareable)(nil)).Elem()
	shareableByType = reflect.TypeOf((*api.ShareableBy)(nil)).Elem()
)

// Leaf lets a host object model judge values before the reflective walk.
// handled false defers to the walk.
type Leaf func(v any) (ok, handled bool)

// Is reports whether v may be observed from several domains at once.
//
// nil, booleans, numbers and strings are shareable. Arrays, structs and
// interfaces are shareable when everything they contain is. Non-nil pointers,
// slices, maps, channels and funcs are not, unless the value implements
// api.ShareableBy or api.Shareable, whose answer wins. Methods are honoured
// on values held in unexported fields too.
func Is(v any) bool {
	return With(v, nil)
}

// With is Is with leaf consulted on every value reached by the walk, and
// handed to api.ShareableBy containers as their element predicate.
func With(v any, leaf Leaf) bool {
	if v == nil {
		return true
	}
	w := walker{leaf: leaf}
	return w.walk(addressable(reflect.ValueOf(v)), 0)
}

type walker struct {
	leaf Leaf
}

func (w walker) elem(v any) bool {
	return With(v, w.leaf)
}

func (w walker) walk(rv reflect.Value, depth int) bool {
	if depth > maxDepth {
		return false
	}
	rv = exported(rv)
	if w.leaf != nil && rv.CanInterface() {
		if ok, handled := w.leaf(rv.Interface()); handled {
			return ok
		}
	}
	if rv.CanInterface() {
		t := rv.Type()
		nilPtr := rv.Kind() == reflect.Pointer && rv.IsNil()
		switch {
		case t.Implements(shareableByType):
			if nilPtr {
				return true
			}
			return rv.Interface().(api.ShareableBy).ShareableBy(w.elem)
		case t.Implements(shareableType):
			if nilPtr {
				return true
			}
			return rv.Interface().(api.Shareable).Shareable()
		}
	}
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !w.walk(rv.Index(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if !w.walk(rv.Field(i), depth+1) {
				return false
			}
		}
		return true
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return w.walk(addressable(rv.Elem()), depth+1)
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// addressable copies rv into fresh storage so fields reached from it can be
// exposed with exported.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() || !rv.CanInterface() {
		return rv
	}
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	return cp
}

// exported clears the read-only flag reflect sets on values reached through
// unexported fields. The walk only reads, so the methods it calls see the
// same data they would through an exported field.
func exported(rv reflect.Value) reflect.Value {
	if rv.CanInterface() || !rv.CanAddr() {
		return rv
	}
	return reflect.NewAt(rv.Type(), unsafe.Pointer(rv.UnsafeAddr())).Elem()
}
