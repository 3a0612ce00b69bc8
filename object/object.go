// Package object defines the runtime values manipulated by the tiervm
// engine: a closed set of tagged variants for integers, floats, and strings.
// Values are copied by the operand stack and never aliased.
package object

// Type identifies a value variant.
type Type string

const (
	INT    Type = "int"
	FLOAT  Type = "float"
	STRING Type = "string"
)

// Object is a value held on the operand stack, in memory, or in locals.
type Object interface {
	// Type returns the value's variant tag.
	Type() Type

	// Inspect returns a printable representation of the value. Strings are
	// quoted; use the concrete type's Value method for the raw form.
	Inspect() string

	// Equals reports exact equality with another value, with numeric
	// promotion between ints and floats.
	Equals(other Object) bool
}

// IsNumeric reports whether the value is an int or a float.
func IsNumeric(obj Object) bool {
	switch obj.(type) {
	case *Int, *Float:
		return true
	}
	return false
}

// IsZero reports whether the value is numeric zero. Non-numeric values are
// never zero, which makes them truthy for conditional jumps.
func IsZero(obj Object) bool {
	switch obj := obj.(type) {
	case *Int:
		return obj.value == 0
	case *Float:
		return obj.value == 0
	}
	return false
}
