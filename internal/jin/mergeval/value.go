// Package mergeval defines the common abstract value the merge engine
// merges structured formats through (§4.3, §9 "Dynamic dispatch": a
// tagged variant, not a polymorphic hierarchy).
package mergeval

// Kind tags the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is Null | Bool | Number | String | Array<Value> | Object. Number
// is kept as a string of its original textual form rather than float64
// so that formatting (trailing zeros, integer vs. float) survives an
// untouched round trip when a value merely passes through unmerged.
// TOML numbers are rebuilt from the decoded int64/float64 instead:
// integers and floats stay distinct, but a float's original spelling
// is not kept (1.50 comes back as 1.5).
type Value struct {
	Kind   Kind
	Bool   bool
	Number string
	String string
	Array  []Value
	Object *Object
}

// Object is an ordered mapping of string keys to Values. Base key order
// is preserved through merges; overlay keys not present in base are
// appended, matching RFC 7396-flavored deep merge (spec.md §4.3).
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: map[string]Value{}}
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or overwrites key. New keys are appended to the key
// order; existing keys keep their position.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key, if present.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys in the object.
func (o *Object) Len() int { return len(o.keys) }

// Clone deep-copies the object.
func (o *Object) Clone() *Object {
	cp := NewObject()
	for _, k := range o.keys {
		cp.Set(k, o.values[k].Clone())
	}
	return cp
}

// Clone deep-copies v.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindArray:
		arr := make([]Value, len(v.Array))
		for i, e := range v.Array {
			arr[i] = e.Clone()
		}
		return Value{Kind: KindArray, Array: arr}
	case KindObject:
		if v.Object == nil {
			return Value{Kind: KindObject, Object: NewObject()}
		}
		return Value{Kind: KindObject, Object: v.Object.Clone()}
	default:
		return v
	}
}

// Null, Bool, Number, String, Array, and Obj are convenience constructors.
func Null() Value               { return Value{Kind: KindNull} }
func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Number(n string) Value     { return Value{Kind: KindNumber, Number: n} }
func String(s string) Value     { return Value{Kind: KindString, String: s} }
func Array(items ...Value) Value { return Value{Kind: KindArray, Array: items} }
func Obj(o *Object) Value       { return Value{Kind: KindObject, Object: o} }

// Equal reports deep structural equality between a and b.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindString:
		return a.String == b.String
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ak, bk := a.Object.Keys(), b.Object.Keys()
		if len(ak) != len(bk) {
			return false
		}
		for _, k := range ak {
			av, _ := a.Object.Get(k)
			bv, ok := b.Object.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
