package cacheaside

import "reflect"

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// isNil reports whether v is a nil pointer, map, slice, interface, func or chan.
func isNil[V any](v V) bool {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// isZero reports whether v is the zero value of V.
func isZero[V any](v V) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
