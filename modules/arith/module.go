// Package arith registers numeric node functions for graph files. Values
// arrive untyped from HCL, so every function accepts any number kind and
// flattens nested lists.
package arith

import (
	"fmt"
	"reflect"

	"github.com/vk/dagstream/internal/node"
	"github.com/vk/dagstream/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the arithmetic functions.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("sum", Sum)
	r.RegisterFunc("add", Add)
	r.RegisterFunc("offset", Offset)
	r.RegisterFunc("scale", Scale)
}

// Sum adds every number in values, descending into lists.
func Sum(values ...any) (any, error) {
	var acc accumulator
	for _, v := range values {
		if err := acc.add(v); err != nil {
			return nil, err
		}
	}
	return acc.result(), nil
}

// Add returns a + b.
func Add(a, b any) (any, error) {
	return Sum(a, b)
}

// Offset adds off to every element of vals.
func Offset(vals any, off any) ([]any, error) {
	rv := reflect.ValueOf(vals)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("offset: expected a list, got %T", vals)
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		v, err := Add(rv.Index(i).Interface(), off)
		if err != nil {
			return nil, fmt.Errorf("offset: element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Scale multiplies x by the "factor" keyword argument, 1 when absent.
func Scale(kw node.Kwargs, x any) (any, error) {
	factor, ok := kw["factor"]
	if !ok {
		factor = 1
	}
	fx, xInt, err := number(x)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	ff, fInt, err := number(factor)
	if err != nil {
		return nil, fmt.Errorf("scale: factor: %w", err)
	}
	if xInt && fInt {
		return int(fx * ff), nil
	}
	return fx * ff, nil
}

type accumulator struct {
	total   float64
	isFloat bool
}

func (a *accumulator) add(v any) error {
	rv := reflect.ValueOf(v)
	if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		for i := 0; i < rv.Len(); i++ {
			if err := a.add(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	}
	f, isInt, err := number(v)
	if err != nil {
		return err
	}
	a.total += f
	a.isFloat = a.isFloat || !isInt
	return nil
}

func (a *accumulator) result() any {
	if a.isFloat {
		return a.total
	}
	return int(a.total)
}

// number converts any Go number to float64 and reports whether it was an
// integer kind.
func number(v any) (float64, bool, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), false, nil
	default:
		return 0, false, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}
