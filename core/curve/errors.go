package curve

import "errors"

var (
	// ErrNotOnCurve is returned when x³+αx+β has no square root in the field.
	ErrNotOnCurve = errors.New("no point on the curve with the given x coordinate")
	// ErrTwoTorsion is returned when doubling a point whose y coordinate is zero.
	ErrTwoTorsion = errors.New("tangent is vertical at a point of order two")
	// ErrZeroDivisor is returned when a slope or projective division hits zero.
	ErrZeroDivisor = errors.New("division by zero")
)

// ArithmeticError reports which curve operation failed and why.
type ArithmeticError struct {
	Op  string
	Err error
}

func (e *ArithmeticError) Error() string {
	return "curve: " + e.Op + ": " + e.Err.Error()
}

func (e *ArithmeticError) Unwrap() error {
	return e.Err
}

func arithmeticError(op string, err error) error {
	return &ArithmeticError{Op: op, Err: err}
}
