package merge

import "encoding/json"

// ConflictSeparator joins two scalar values that landed on the same key.
// Merged output is surfaced for review, not resolved automatically, so the
// separator stays greppable.
const ConflictSeparator = "--|--"

// Merge folds fragments left to right into a single mapping. An empty input
// yields an empty mapping, a single fragment is returned as-is, and later
// fragments never erase earlier values. Non-mapping fragments are collected
// under the "_values" key so malformed model output still survives the fold.
func Merge(fragments []*Value) *Value {
	result := NewMapping()
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		result = mergeInto(result, fragment)
	}
	return result
}

// MergeRaw decodes raw JSON fragments and merges them, skipping fragments
// that fail to decode. It returns the merged document and the number of
// fragments that contributed.
func MergeRaw(fragments [][]byte) (*Value, int) {
	values := make([]*Value, 0, len(fragments))
	for _, raw := range fragments {
		val, err := Decode(raw)
		if err != nil {
			continue
		}
		values = append(values, val)
	}
	return Merge(values), len(values)
}

func mergeInto(base, incoming *Value) *Value {
	if incoming.Kind != KindMapping {
		appendLoose(base, incoming)
		return base
	}

	for _, pair := range incoming.Mapping {
		existing := base.Get(pair.Key)
		if existing == nil {
			base.Set(pair.Key, pair.Value)
			continue
		}
		base.Set(pair.Key, mergeValues(existing, pair.Value))
	}
	return base
}

func mergeValues(a, b *Value) *Value {
	switch {
	case a.Kind == KindMapping && b.Kind == KindMapping:
		return mergeInto(a, b)
	case a.Kind == KindSequence && b.Kind == KindSequence:
		a.Sequence = append(a.Sequence, b.Sequence...)
		return a
	case a.Kind == KindScalar && b.Kind == KindScalar:
		return concatScalars(a, b)
	default:
		// Mixed kinds cannot be unified structurally; keep both as text.
		return concatScalars(flatten(a), flatten(b))
	}
}

// concatScalars joins two scalars into one string with the conflict
// separator. Identical values are still joined; surfacing the duplicate is
// cheaper than deciding which occurrence to trust.
func concatScalars(a, b *Value) *Value {
	joined := a.scalarText() + ConflictSeparator + b.scalarText()
	raw, _ := json.Marshal(joined)
	return NewScalar(raw)
}

// flatten renders a non-scalar value as a JSON text scalar so it can take
// part in a string concatenation.
func flatten(v *Value) *Value {
	if v.Kind == KindScalar {
		return v
	}
	encoded, err := v.Encode()
	if err != nil {
		return NewScalar(json.RawMessage(`""`))
	}
	raw, _ := json.Marshal(string(encoded))
	return NewScalar(raw)
}

// appendLoose files a non-mapping fragment under the "_values" sequence.
func appendLoose(base, incoming *Value) {
	const looseKey = "_values"

	bucket := base.Get(looseKey)
	if bucket == nil || bucket.Kind != KindSequence {
		bucket = &Value{Kind: KindSequence}
		base.Set(looseKey, bucket)
	}
	if incoming.Kind == KindSequence {
		bucket.Sequence = append(bucket.Sequence, incoming.Sequence...)
		return
	}
	bucket.Sequence = append(bucket.Sequence, incoming)
}
