package nbt

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/vberlier/nbtlib/nbterr"
)

// ToJSON projects t into plain Go values (map[string]interface{},
// []interface{}, string, float64/json.Number, bool-less numerics) the
// way the teacher's NBT.DeepCopy/json round trip does, generalized
// from its single boxed struct to the typed Tag variants.
//
// Long and LongArray values are projected as json.Number rather than
// float64: encoding/json's decoder would otherwise silently truncate
// a 64-bit value to float64's 53 bits of integer precision on the way
// back in. The teacher guards against exactly this with
// json.NewDecoder(...).UseNumber() in its UnmarshalJSON; ToJSON/FromJSON
// carry the same technique forward for the new Tag model.
func ToJSON(t Tag) interface{} {
	switch v := t.(type) {
	case Byte:
		return int64(v)
	case Short:
		return int64(v)
	case Int:
		return int64(v)
	case Long:
		return json.Number(strconv.FormatInt(int64(v), 10))
	case Float:
		return float64(v)
	case Double:
		return float64(v)
	case String:
		return string(v)
	case ByteArray:
		out := make([]interface{}, len(v))
		for i, b := range v {
			out[i] = int64(b)
		}
		return out
	case IntArray:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out
	case LongArray:
		out := make([]interface{}, len(v))
		for i, x := range v {
			out[i] = json.Number(strconv.FormatInt(x, 10))
		}
		return out
	case List:
		out := make([]interface{}, len(v.Elements))
		for i, e := range v.Elements {
			out[i] = ToJSON(e)
		}
		return out
	case *Compound:
		out := make(map[string]interface{}, v.Len())
		v.Range(func(name string, tag Tag) bool {
			out[name] = ToJSON(tag)
			return true
		})
		return out
	case End:
		return nil
	default:
		return nil
	}
}

// MarshalJSON renders t as a JSON document using a decoder configured
// with UseNumber, so a subsequent Marshal of ToJSON's result does not
// lose precision on Long-backed json.Number values.
func MarshalJSON(t Tag) ([]byte, error) {
	return json.Marshal(ToJSON(t))
}

// FromJSON converts a plain Go value (as produced by a
// json.Decoder with UseNumber enabled) back into a Tag tree, inferring
// NBT types the way spec's schema-less JSON import does: integers
// become Int, json.Number/float64 with a fractional part or out-of-int64-range
// magnitude become Double, and maps/slices become Compound/List.
func FromJSON(v interface{}) (Tag, error) {
	switch x := v.(type) {
	case nil:
		return End{}, nil
	case bool:
		if x {
			return Byte(1), nil
		}
		return Byte(0), nil
	case string:
		return String(x), nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			if n >= -2147483648 && n <= 2147483647 {
				return Int(int32(n)), nil
			}
			return Long(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, nbterr.ErrInvalidType
		}
		return Double(f), nil
	case float64:
		return Double(x), nil
	case []interface{}:
		elems := make([]Tag, len(x))
		elemType := TagEnd
		for i, e := range x {
			tag, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			elems[i] = tag
			if i == 0 {
				elemType = tag.ID()
			}
		}
		return List{ElemType: elemType, Elements: elems}, nil
	case map[string]interface{}:
		c := NewCompound()
		for k, e := range x {
			tag, err := FromJSON(e)
			if err != nil {
				return nil, err
			}
			c.Set(k, tag)
		}
		return c, nil
	default:
		return nil, nbterr.ErrInvalidType
	}
}

// DecodeJSON parses a JSON document into a Tag tree, configuring the
// decoder with UseNumber so integer precision above 2^53 survives the
// round trip — the same safeguard the teacher's UnmarshalJSON applies.
func DecodeJSON(data []byte) (Tag, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return FromJSON(v)
}
