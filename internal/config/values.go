package config

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// toValue converts a native Go value, as produced by the format decoders or
// passed by callers, into a cty.Value. A nil input becomes an untyped null.
func toValue(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int8:
		return cty.NumberIntVal(int64(x)), nil
	case int16:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint8:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint16:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint32:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case float32:
		return floatValue(float64(x))
	case float64:
		return floatValue(x)
	case json.Number:
		return cty.ParseNumberVal(x.String())
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			ev, err := toValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			ev, err := toValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("attribute %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type for %T: %w", v, err)
	}
	return gocty.ToCtyValue(v, ty)
}

func floatValue(f float64) (cty.Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cty.NilVal, fmt.Errorf("number %v is not finite", f)
	}
	return cty.NumberFloatVal(f), nil
}

// convertTo coerces v to ty. Nulls keep their nullness but take the target type.
func convertTo(v cty.Value, ty cty.Type) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(ty), nil
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("value is not fully known")
	}
	if path, ok := stringIntoScalar(v, ty, ""); ok {
		return cty.NilVal, fmt.Errorf("cannot use string%s as %s", path, ty.FriendlyName())
	}
	out, err := convert.Convert(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot use %s as %s: %w", v.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return out, nil
}

// stringIntoScalar reports whether converting v to ty would parse a string
// into a number or bool anywhere in the value, and where.
func stringIntoScalar(v cty.Value, ty cty.Type, path string) (string, bool) {
	if v.IsNull() || !v.IsKnown() || ty == cty.DynamicPseudoType {
		return "", false
	}
	vt := v.Type()
	switch {
	case vt == cty.String:
		if ty == cty.Number || ty == cty.Bool {
			return path, true
		}
	case ty.IsListType() || ty.IsSetType() || ty.IsMapType():
		if !vt.IsCollectionType() && !vt.IsTupleType() && !vt.IsObjectType() {
			return "", false
		}
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			elemPath := path
			if !vt.IsSetType() {
				elemPath += elementPath(k)
			}
			if p, ok := stringIntoScalar(e, ty.ElementType(), elemPath); ok {
				return p, true
			}
		}
	case ty.IsObjectType():
		if !vt.IsObjectType() && !vt.IsMapType() {
			return "", false
		}
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			name := k.AsString()
			if !ty.HasAttribute(name) {
				continue
			}
			if p, ok := stringIntoScalar(e, ty.AttributeType(name), path+"."+name); ok {
				return p, true
			}
		}
	case ty.IsTupleType():
		if !vt.IsTupleType() && !vt.IsListType() {
			return "", false
		}
		elems := ty.TupleElementTypes()
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			i, _ := k.AsBigFloat().Int64()
			if int(i) >= len(elems) {
				break
			}
			if p, ok := stringIntoScalar(e, elems[i], path+elementPath(k)); ok {
				return p, true
			}
		}
	}
	return "", false
}

func elementPath(k cty.Value) string {
	if k.Type() == cty.String {
		return "[" + strconv.Quote(k.AsString()) + "]"
	}
	return "[" + k.AsBigFloat().Text('f', -1) + "]"
}

// native converts a cty.Value into plain Go data: nil, string, bool, int64
// for whole numbers that fit, float64 otherwise, []any and map[string]any.
func native(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty == cty.Number:
		return nativeNumber(v.AsBigFloat())
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, native(ev))
		}
		return out
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = native(ev)
		}
		return out
	}
	return v.GoString()
}

func nativeNumber(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
	}
	f, _ := bf.Float64()
	return f
}

// formatValue renders v for Render: quoted strings, plain numbers and bools,
// JSON for collections.
func formatValue(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	switch ty := v.Type(); {
	case ty == cty.String:
		return strconv.Quote(v.AsString())
	case ty == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case ty == cty.Bool:
		return strconv.FormatBool(v.True())
	}
	if b, err := ctyjson.Marshal(v, v.Type()); err == nil {
		return string(b)
	}
	return v.GoString()
}

// intValue reads a whole number out of v.
func intValue(v cty.Value) (int64, error) {
	var i int64
	if err := gocty.FromCtyValue(v, &i); err != nil {
		return 0, err
	}
	return i, nil
}
