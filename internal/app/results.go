package app

import (
	"fmt"
	"math"
	"reflect"

	"github.com/vk/dagstream/internal/executor"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// encodeResults renders the result map as JSON. Values with no JSON shape
// fall back to their fmt representation.
func encodeResults(results executor.Results) ([]byte, error) {
	attrs := make(map[string]cty.Value, len(results))
	for id, v := range results {
		attrs[id] = toCty(v)
	}
	obj := cty.ObjectVal(attrs)
	return ctyjson.SimpleJSONValue{Value: obj}.MarshalJSON()
}

// toCty converts an arbitrary node result into a cty.Value.
func toCty(v any) cty.Value {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if rv.Kind() == reflect.Float64 || rv.Kind() == reflect.Float32 {
			if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
				return cty.StringVal(fmt.Sprint(v))
			}
		}
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.StringVal(fmt.Sprint(v))
		}
		val, err := gocty.ToCtyValue(v, ty)
		if err != nil {
			return cty.StringVal(fmt.Sprint(v))
		}
		return val
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		elems := make([]cty.Value, rv.Len())
		for i := range elems {
			elems[i] = toCty(rv.Index(i).Interface())
		}
		return cty.TupleVal(elems)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return cty.StringVal(fmt.Sprint(v))
		}
		attrs := make(map[string]cty.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			attrs[iter.Key().String()] = toCty(iter.Value().Interface())
		}
		return cty.ObjectVal(attrs)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType)
		}
		return toCty(rv.Elem().Interface())
	default:
		return cty.StringVal(fmt.Sprint(v))
	}
}
