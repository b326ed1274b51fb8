package node

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	// ErrInvalidFunction is returned by New when the wrapped value cannot be
	// invoked as a node function.
	ErrInvalidFunction = errors.New("invalid node function")
	// ErrArguments is returned when the supplied arguments do not fit the
	// function's signature.
	ErrArguments = errors.New("arguments do not match function signature")
	// ErrPanic wraps a panic raised by a node function.
	ErrPanic = errors.New("node function panicked")
)

// Kwargs holds keyword arguments passed to every node of a run. A function
// receives them by declaring a Kwargs parameter.
type Kwargs map[string]any

// Callable is implemented by values that want full control over how they
// are invoked. Its dynamic type name is used as the node's base name.
type Callable interface {
	Call(ctx context.Context, args []any, kwargs Kwargs) (any, error)
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	kwargsType  = reflect.TypeOf(Kwargs(nil))
)

// invoker calls a function through reflection. Accepted shapes:
//
//	func([ctx context.Context,] [kw Kwargs,] args...) [T] [error]
//
// Positional parameters may be variadic.
type invoker struct {
	callable Callable

	fn          reflect.Value
	takesCtx    bool
	takesKwargs bool
	// params are the positional parameter types.
	params   []reflect.Type
	variadic bool
	hasValue bool
	hasErr   bool
}

func newInvoker(fn any) (*invoker, error) {
	if c, ok := fn.(Callable); ok {
		return &invoker{callable: c}, nil
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidFunction)
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrInvalidFunction, t)
	}
	if v.IsNil() {
		return nil, fmt.Errorf("%w: nil %s", ErrInvalidFunction, t)
	}

	iv := &invoker{fn: v, variadic: t.IsVariadic()}
	i := 0
	if i < t.NumIn() && t.In(i) == contextType {
		iv.takesCtx = true
		i++
	}
	if i < t.NumIn() && t.In(i) == kwargsType {
		iv.takesKwargs = true
		i++
	}
	for ; i < t.NumIn(); i++ {
		iv.params = append(iv.params, t.In(i))
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			iv.hasErr = true
		} else {
			iv.hasValue = true
		}
	case 2:
		if t.Out(1) != errorType {
			return nil, fmt.Errorf("%w: second result of %s must be error", ErrInvalidFunction, t)
		}
		iv.hasValue, iv.hasErr = true, true
	default:
		return nil, fmt.Errorf("%w: %s returns more than two values", ErrInvalidFunction, t)
	}
	return iv, nil
}

func (iv *invoker) call(ctx context.Context, args []any, kwargs Kwargs) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if iv.callable != nil {
		return iv.callable.Call(ctx, args, kwargs)
	}

	in, err := iv.buildArgs(ctx, args, kwargs)
	if err != nil {
		return nil, err
	}
	out := iv.fn.Call(in)

	if iv.hasErr {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
	}
	if iv.hasValue {
		result = out[0].Interface()
	}
	return result, err
}

func (iv *invoker) buildArgs(ctx context.Context, args []any, kwargs Kwargs) ([]reflect.Value, error) {
	if len(kwargs) > 0 && !iv.takesKwargs {
		return nil, fmt.Errorf("%w: function does not accept keyword arguments", ErrArguments)
	}

	fixed := len(iv.params)
	if iv.variadic {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: want at least %d positional arguments, got %d", ErrArguments, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: want %d positional arguments, got %d", ErrArguments, fixed, len(args))
	}

	in := make([]reflect.Value, 0, len(args)+2)
	if iv.takesCtx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	if iv.takesKwargs {
		if kwargs == nil {
			kwargs = Kwargs{}
		}
		in = append(in, reflect.ValueOf(kwargs))
	}
	for i, a := range args {
		want := iv.variadicElem(i)
		v, err := convertArg(a, want)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d: %v", ErrArguments, i, err)
		}
		in = append(in, v)
	}
	return in, nil
}

// variadicElem returns the expected type of positional argument i.
func (iv *invoker) variadicElem(i int) reflect.Type {
	last := len(iv.params) - 1
	if iv.variadic && i >= last {
		return iv.params[last].Elem()
	}
	return iv.params[i]
}

// convertArg adapts a dynamically typed value to the parameter type want.
// nil becomes the zero value and numeric kinds are converted, element-wise
// inside slices. Numeric conversions that lose information fail.
func convertArg(a any, want reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(want), nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(want.Kind()) {
		return convertNumber(v, want)
	}
	if v.Kind() == reflect.Slice && want.Kind() == reflect.Slice {
		out := reflect.MakeSlice(want, v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := convertArg(v.Index(i).Interface(), want.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), want)
}

// convertNumber converts between numeric kinds. Integer targets go through
// cty, which rejects fractions, negative unsigned values and overflow.
func convertNumber(v reflect.Value, want reflect.Type) (reflect.Value, error) {
	if isFloat(want.Kind()) {
		if isFloat(v.Kind()) {
			if f := v.Float(); !math.IsInf(f, 0) && reflect.Zero(want).OverflowFloat(f) {
				return reflect.Value{}, fmt.Errorf("cannot use %v as %s: value out of range", f, want)
			}
		}
		return v.Convert(want), nil
	}
	if isFloat(v.Kind()) && math.IsNaN(v.Float()) {
		return reflect.Value{}, fmt.Errorf("cannot use NaN as %s", want)
	}

	num, err := gocty.ToCtyValue(v.Interface(), cty.Number)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %v as %s: %w", v.Interface(), want, err)
	}
	out := reflect.New(want)
	if err := gocty.FromCtyValue(num, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %v as %s: %w", v.Interface(), want, err)
	}
	return out.Elem(), nil
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
