package schema

import (
	"fmt"
	"math"
	"reflect"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "[string]").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

type numberType struct{}

func (numberType) Name() string { return "number" }

func (numberType) Validate(value any) error {
	if _, ok := toFloat(value); !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	return nil
}

type finiteType struct{}

func (finiteType) Name() string { return "number" }

func (finiteType) Validate(value any) error {
	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected finite number, got %v", f)
	}
	return nil
}

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elem.Name())
}

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// String validates string values.
func String() Type { return stringType{} }

// Number validates any numeric value.
func Number() Type { return numberType{} }

// FiniteNumber validates numeric values that are neither NaN nor infinite.
func FiniteNumber() Type { return finiteType{} }

// Bool validates boolean values.
func Bool() Type { return boolType{} }

// Slice validates slices whose every element matches elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
