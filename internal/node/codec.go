package node

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Decode copies a cty value into a native Go value. Capsule values are
// unwrapped into a pointer or value of the encapsulated type.
func Decode(v cty.Value, target any) error {
	if v.Type().IsCapsuleType() {
		return decodeCapsule(v, target)
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return fmt.Errorf("decoding %s value: %w", v.Type().FriendlyName(), err)
	}
	return nil
}

// Encode wraps a native Go value as a cty value of the given type.
func Encode(val any, ty cty.Type) (cty.Value, error) {
	if ty.IsCapsuleType() {
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Ptr || rv.IsNil() || !rv.Type().Elem().AssignableTo(ty.EncapsulatedType()) {
			return cty.NilVal, fmt.Errorf("encoding %T as %s: expected *%s", val, ty.FriendlyName(), ty.EncapsulatedType())
		}
		return cty.CapsuleVal(ty, val), nil
	}
	v, err := gocty.ToCtyValue(val, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("encoding %T as %s: %w", val, ty.FriendlyName(), err)
	}
	return v, nil
}

// Capsule returns the encapsulated pointer of v as *T.
func Capsule[T any](v cty.Value) (*T, error) {
	if !v.Type().IsCapsuleType() {
		return nil, fmt.Errorf("expected a capsule value, got %s", v.Type().FriendlyName())
	}
	if !v.IsKnown() || v.IsNull() {
		return nil, fmt.Errorf("%s value is null or unknown", v.Type().FriendlyName())
	}
	p, ok := v.EncapsulatedValue().(*T)
	if !ok {
		return nil, fmt.Errorf("%s value does not hold a %T", v.Type().FriendlyName(), new(T))
	}
	return p, nil
}

func decodeCapsule(v cty.Value, target any) error {
	if !v.IsKnown() || v.IsNull() {
		return fmt.Errorf("%s value is null or unknown", v.Type().FriendlyName())
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return fmt.Errorf("decoding %s value: %w", v.Type().FriendlyName(), err)
	}
	return nil
}
