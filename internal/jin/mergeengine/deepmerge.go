package mergeengine

import "github.com/jinvcs/jin/internal/jin/mergeval"

// DefaultKeyFields is the key-field list tried, in order, to unify
// keyed arrays when the store config does not override it.
var DefaultKeyFields = []string{"id", "name"}

// DeepMerge folds overlay onto base per spec.md §4.3:
//  1. overlay Null deletes the key (RFC 7396-flavored null-deletion).
//  2. both objects recurse key-by-key, preserving base key order and
//     appending new overlay keys.
//  3. both arrays go through keyed-array merge.
//  4. otherwise overlay wins outright (layer precedence).
func DeepMerge(base, overlay mergeval.Value, keyFields []string) mergeval.Value {
	if overlay.Kind == mergeval.KindNull {
		return overlay // caller handles deletion by key; at top level Null just replaces
	}
	if base.Kind == mergeval.KindObject && overlay.Kind == mergeval.KindObject {
		return mergeObjects(base, overlay, keyFields)
	}
	if base.Kind == mergeval.KindArray && overlay.Kind == mergeval.KindArray {
		return mergeArrays(base, overlay, keyFields)
	}
	return overlay.Clone()
}

func mergeObjects(base, overlay mergeval.Value, keyFields []string) mergeval.Value {
	result := mergeval.NewObject()
	for _, k := range base.Object.Keys() {
		bv, _ := base.Object.Get(k)
		ov, hasOverlay := overlay.Object.Get(k)
		if !hasOverlay {
			result.Set(k, bv.Clone())
			continue
		}
		if ov.Kind == mergeval.KindNull {
			continue // RFC 7396 null-deletion: key absent from result
		}
		result.Set(k, DeepMerge(bv, ov, keyFields))
	}
	for _, k := range overlay.Object.Keys() {
		if _, inBase := base.Object.Get(k); inBase {
			continue // already handled above
		}
		ov, _ := overlay.Object.Get(k)
		if ov.Kind == mergeval.KindNull {
			continue // deleting a key that was never present is a no-op
		}
		result.Set(k, ov.Clone())
	}
	return mergeval.Obj(result)
}

// keyFieldValue returns the first configured key field present on v
// (v must be an object), and which field matched.
func keyFieldValue(v mergeval.Value, keyFields []string) (field string, key mergeval.Value, ok bool) {
	if v.Kind != mergeval.KindObject {
		return "", mergeval.Value{}, false
	}
	for _, f := range keyFields {
		if val, present := v.Object.Get(f); present {
			return f, val, true
		}
	}
	return "", mergeval.Value{}, false
}

// allKeyed reports whether every element of arr is an object carrying
// at least one of keyFields.
func allKeyed(arr []mergeval.Value, keyFields []string) bool {
	if len(arr) == 0 {
		return false
	}
	for _, e := range arr {
		if _, _, ok := keyFieldValue(e, keyFields); !ok {
			return false
		}
	}
	return true
}

// mergeArrays implements keyed-array merge (spec.md §4.3). If every
// element of both arrays is a keyed object, elements are unified by
// key; otherwise (including an empty overlay array) the overlay array
// replaces the base array wholesale — an empty overlay is a replace,
// never a no-op.
func mergeArrays(base, overlay mergeval.Value, keyFields []string) mergeval.Value {
	if !allKeyed(base.Array, keyFields) || !allKeyed(overlay.Array, keyFields) {
		return overlay.Clone()
	}

	type keyedEntry struct {
		field string
		key   mergeval.Value
		value mergeval.Value
	}
	baseEntries := make([]keyedEntry, len(base.Array))
	for i, e := range base.Array {
		f, k, _ := keyFieldValue(e, keyFields)
		baseEntries[i] = keyedEntry{field: f, key: k, value: e}
	}

	matched := make([]bool, len(baseEntries))
	result := make([]mergeval.Value, len(baseEntries))
	for i, be := range baseEntries {
		result[i] = be.value.Clone()
	}

	var appended []mergeval.Value
	for _, oe := range overlay.Array {
		of, okey, _ := keyFieldValue(oe, keyFields)
		found := -1
		for i, be := range baseEntries {
			if matched[i] {
				continue
			}
			if be.field == of && mergeval.Equal(be.key, okey) {
				found = i
				break
			}
		}
		if found >= 0 {
			matched[found] = true
			result[found] = DeepMerge(baseEntries[found].value, oe, keyFields)
			continue
		}
		appended = append(appended, oe.Clone())
	}
	result = append(result, appended...)
	return mergeval.Value{Kind: mergeval.KindArray, Array: result}
}
