package node

import (
	"reflect"
	"runtime"
	"strconv"
	"strings"
)

// NextID returns base if it is free, otherwise the first free id of
// base_1, base_2, and so on. taken reports whether an id is in use.
func NextID(taken func(id string) bool, base string) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// FuncName derives a readable name for fn: the function's own name for
// functions and methods, or the dynamic type name for a Callable.
func FuncName(fn any) string {
	if c, ok := fn.(Callable); ok {
		return typeName(reflect.TypeOf(c))
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return typeName(reflect.TypeOf(fn))
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "func"
	}
	name := rf.Name()
	name = strings.ReplaceAll(name, "[...]", "")
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "func"
	}
	return name
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
