package osd

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/gridlink/gridlink/internal/protocol/protoerr"
)

// SerializeJSON renders v as conventional JSON with two extensions over the
// plain mapping: binary becomes a base64 string, and UUID and Date become
// their string renderings. Non-finite reals become null, which JSON cannot
// carry otherwise.
func SerializeJSON(v Value) ([]byte, error) {
	tree := jsonTree(v)
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, protoerr.Malformed("json llsd: %v", err)
	}
	return out, nil
}

func jsonTree(v Value) any {
	switch v.t {
	case TypeNull:
		return nil
	case TypeBool:
		return v.b
	case TypeInt:
		return v.i
	case TypeReal:
		if math.IsNaN(v.r) || math.IsInf(v.r, 0) {
			return nil
		}
		return v.r
	case TypeString, TypeUUID, TypeDate, TypeURI, TypeBinary:
		return v.AsString()
	case TypeArray:
		out := make([]any, len(v.a))
		for i, e := range v.a {
			out[i] = jsonTree(e)
		}
		return out
	case TypeMap:
		out := make(map[string]any, len(v.m))
		for k, e := range v.m {
			out[k] = jsonTree(e)
		}
		return out
	default:
		return nil
	}
}

// ParseJSON decodes JSON into a value tree. Numbers without a fraction or
// exponent become Int; everything else numeric becomes Real. Strings stay
// strings: the JSON mapping is lossy for UUID, Date, URI, and Binary, and
// consumers coerce via the As* conversions.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return Value{}, protoerr.Malformed("json llsd: %v", err)
	}
	return fromJSONTree(tree), nil
}

func fromJSONTree(tree any) Value {
	switch t := tree.(type) {
	case nil:
		return Null()
	case bool:
		return FromBool(t)
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := t.Int64(); err == nil {
				return FromLong(i)
			}
		}
		f, _ := t.Float64()
		return FromReal(f)
	case string:
		return FromString(t)
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = fromJSONTree(e)
		}
		return FromArray(arr)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = fromJSONTree(e)
		}
		return FromMap(m)
	default:
		return Null()
	}
}
