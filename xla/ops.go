package xla

/*
#include "xla_rs.h"
*/
import "C"

// This file holds the element-wise operations: the binary ones broadcast their operands implicitly
// following the XLA rules, and their operands must be created by the same builder.

func binaryOp(opName string, x, y *Op, fn func(x, y C.xla_op) C.xla_op) (*Op, error) {
	b, err := checkOps(opName, x, y)
	if err != nil {
		return nil, err
	}
	return b.newOp(fn(x.cOp, y.cOp), opName)
}

func unaryOp(opName string, x *Op, fn func(x C.xla_op) C.xla_op) (*Op, error) {
	b, err := checkOps(opName, x)
	if err != nil {
		return nil, err
	}
	return b.newOp(fn(x.cOp), opName)
}

// Add returns the element-wise sum x+y.
func Add(x, y *Op) (*Op, error) {
	return binaryOp("Add", x, y, func(x, y C.xla_op) C.xla_op { return C.op_add(x, y) })
}

// Sub returns the element-wise difference x-y.
func Sub(x, y *Op) (*Op, error) {
	return binaryOp("Sub", x, y, func(x, y C.xla_op) C.xla_op { return C.op_sub(x, y) })
}

// Mul returns the element-wise product x*y.
func Mul(x, y *Op) (*Op, error) {
	return binaryOp("Mul", x, y, func(x, y C.xla_op) C.xla_op { return C.op_mul(x, y) })
}

// Div returns the element-wise quotient x/y. For integers it truncates towards zero.
func Div(x, y *Op) (*Op, error) {
	return binaryOp("Div", x, y, func(x, y C.xla_op) C.xla_op { return C.op_div(x, y) })
}

// Rem returns the element-wise remainder of x/y, with the sign of x.
func Rem(x, y *Op) (*Op, error) {
	return binaryOp("Rem", x, y, func(x, y C.xla_op) C.xla_op { return C.op_rem(x, y) })
}

// Max returns the element-wise maximum of x and y.
func Max(x, y *Op) (*Op, error) {
	return binaryOp("Max", x, y, func(x, y C.xla_op) C.xla_op { return C.op_max(x, y) })
}

// Min returns the element-wise minimum of x and y.
func Min(x, y *Op) (*Op, error) {
	return binaryOp("Min", x, y, func(x, y C.xla_op) C.xla_op { return C.op_min(x, y) })
}

// Pow returns the element-wise x^y.
func Pow(x, y *Op) (*Op, error) {
	return binaryOp("Pow", x, y, func(x, y C.xla_op) C.xla_op { return C.op_pow(x, y) })
}

// Atan2 returns the element-wise arc tangent of x/y, using the signs of both to pick the quadrant.
func Atan2(x, y *Op) (*Op, error) {
	return binaryOp("Atan2", x, y, func(x, y C.xla_op) C.xla_op { return C.op_atan2(x, y) })
}

// And returns the element-wise logical (or bitwise for integers) x AND y.
func And(x, y *Op) (*Op, error) {
	return binaryOp("And", x, y, func(x, y C.xla_op) C.xla_op { return C.op_and(x, y) })
}

// Or returns the element-wise logical (or bitwise for integers) x OR y.
func Or(x, y *Op) (*Op, error) {
	return binaryOp("Or", x, y, func(x, y C.xla_op) C.xla_op { return C.op_or(x, y) })
}

// Xor returns the element-wise logical (or bitwise for integers) x XOR y.
func Xor(x, y *Op) (*Op, error) {
	return binaryOp("Xor", x, y, func(x, y C.xla_op) C.xla_op { return C.op_xor(x, y) })
}

// Eq returns the element-wise x == y, as Bool.
func Eq(x, y *Op) (*Op, error) {
	return binaryOp("Eq", x, y, func(x, y C.xla_op) C.xla_op { return C.op_eq(x, y) })
}

// Ne returns the element-wise x != y, as Bool.
func Ne(x, y *Op) (*Op, error) {
	return binaryOp("Ne", x, y, func(x, y C.xla_op) C.xla_op { return C.op_ne(x, y) })
}

// Ge returns the element-wise x >= y, as Bool.
func Ge(x, y *Op) (*Op, error) {
	return binaryOp("Ge", x, y, func(x, y C.xla_op) C.xla_op { return C.op_ge(x, y) })
}

// Gt returns the element-wise x > y, as Bool.
func Gt(x, y *Op) (*Op, error) {
	return binaryOp("Gt", x, y, func(x, y C.xla_op) C.xla_op { return C.op_gt(x, y) })
}

// Le returns the element-wise x <= y, as Bool.
func Le(x, y *Op) (*Op, error) {
	return binaryOp("Le", x, y, func(x, y C.xla_op) C.xla_op { return C.op_le(x, y) })
}

// Lt returns the element-wise x < y, as Bool.
func Lt(x, y *Op) (*Op, error) {
	return binaryOp("Lt", x, y, func(x, y C.xla_op) C.xla_op { return C.op_lt(x, y) })
}

// ShiftLeft shifts the bits of x left by y.
func ShiftLeft(x, y *Op) (*Op, error) {
	return binaryOp("ShiftLeft", x, y, func(x, y C.xla_op) C.xla_op { return C.op_shift_left(x, y) })
}

// ShiftRightArithmetic shifts the bits of x right by y, extending the sign bit.
func ShiftRightArithmetic(x, y *Op) (*Op, error) {
	return binaryOp("ShiftRightArithmetic", x, y, func(x, y C.xla_op) C.xla_op { return C.op_shift_right_arith(x, y) })
}

// ShiftRightLogical shifts the bits of x right by y, filling with zeros.
func ShiftRightLogical(x, y *Op) (*Op, error) {
	return binaryOp("ShiftRightLogical", x, y, func(x, y C.xla_op) C.xla_op { return C.op_shift_right_logic(x, y) })
}

// Not returns the element-wise logical (or bitwise for integers) negation.
func Not(x *Op) (*Op, error) {
	return unaryOp("Not", x, func(x C.xla_op) C.xla_op { return C.op_not(x) })
}

// Abs returns the element-wise absolute value.
func Abs(x *Op) (*Op, error) {
	return unaryOp("Abs", x, func(x C.xla_op) C.xla_op { return C.op_abs(x) })
}

// Exp returns the element-wise e^x.
func Exp(x *Op) (*Op, error) {
	return unaryOp("Exp", x, func(x C.xla_op) C.xla_op { return C.op_exp(x) })
}

// Expm1 returns the element-wise e^x - 1, accurate for x close to 0.
func Expm1(x *Op) (*Op, error) {
	return unaryOp("Expm1", x, func(x C.xla_op) C.xla_op { return C.op_expm1(x) })
}

func Floor(x *Op) (*Op, error) {
	return unaryOp("Floor", x, func(x C.xla_op) C.xla_op { return C.op_floor(x) })
}

func Ceil(x *Op) (*Op, error) {
	return unaryOp("Ceil", x, func(x C.xla_op) C.xla_op { return C.op_ceil(x) })
}

// Round rounds to the nearest integer, with halves rounded away from zero.
func Round(x *Op) (*Op, error) {
	return unaryOp("Round", x, func(x C.xla_op) C.xla_op { return C.op_round(x) })
}

// Log returns the element-wise natural logarithm.
func Log(x *Op) (*Op, error) {
	return unaryOp("Log", x, func(x C.xla_op) C.xla_op { return C.op_log(x) })
}

// Log1p returns the element-wise log(1+x), accurate for x close to 0.
func Log1p(x *Op) (*Op, error) {
	return unaryOp("Log1p", x, func(x C.xla_op) C.xla_op { return C.op_log1p(x) })
}

// Logistic returns the element-wise 1/(1+exp(-x)), also known as sigmoid.
func Logistic(x *Op) (*Op, error) {
	return unaryOp("Logistic", x, func(x C.xla_op) C.xla_op { return C.op_logistic(x) })
}

// Sign returns -1, 0 or 1 depending on the sign of x, element-wise.
func Sign(x *Op) (*Op, error) {
	return unaryOp("Sign", x, func(x C.xla_op) C.xla_op { return C.op_sign(x) })
}

func Cos(x *Op) (*Op, error) {
	return unaryOp("Cos", x, func(x C.xla_op) C.xla_op { return C.op_cos(x) })
}

func Sin(x *Op) (*Op, error) {
	return unaryOp("Sin", x, func(x C.xla_op) C.xla_op { return C.op_sin(x) })
}

func Tanh(x *Op) (*Op, error) {
	return unaryOp("Tanh", x, func(x C.xla_op) C.xla_op { return C.op_tanh(x) })
}

// Real returns the real part of a complex number, or x itself for real numbers.
func Real(x *Op) (*Op, error) {
	return unaryOp("Real", x, func(x C.xla_op) C.xla_op { return C.op_real(x) })
}

// Imag returns the imaginary part of a complex number, or zero for real numbers.
func Imag(x *Op) (*Op, error) {
	return unaryOp("Imag", x, func(x C.xla_op) C.xla_op { return C.op_imag(x) })
}

// Conj returns the complex conjugate.
func Conj(x *Op) (*Op, error) {
	return unaryOp("Conj", x, func(x C.xla_op) C.xla_op { return C.op_conj(x) })
}

func Square(x *Op) (*Op, error) {
	return unaryOp("Square", x, func(x C.xla_op) C.xla_op { return C.op_square(x) })
}

func Sqrt(x *Op) (*Op, error) {
	return unaryOp("Sqrt", x, func(x C.xla_op) C.xla_op { return C.op_sqrt(x) })
}

// Rsqrt returns the element-wise 1/sqrt(x).
func Rsqrt(x *Op) (*Op, error) {
	return unaryOp("Rsqrt", x, func(x C.xla_op) C.xla_op { return C.op_rsqrt(x) })
}

// Cbrt returns the element-wise cubic root.
func Cbrt(x *Op) (*Op, error) {
	return unaryOp("Cbrt", x, func(x C.xla_op) C.xla_op { return C.op_cbrt(x) })
}

// IsFinite returns, as Bool, whether x is neither infinite nor NaN, element-wise.
func IsFinite(x *Op) (*Op, error) {
	return unaryOp("IsFinite", x, func(x C.xla_op) C.xla_op { return C.op_is_finite(x) })
}

// Neg returns the element-wise -x.
func Neg(x *Op) (*Op, error) {
	return unaryOp("Neg", x, func(x C.xla_op) C.xla_op { return C.op_neg(x) })
}

// Erf returns the element-wise Gauss error function.
func Erf(x *Op) (*Op, error) {
	return unaryOp("Erf", x, func(x C.xla_op) C.xla_op { return C.op_erf(x) })
}

// Copy returns a copy of x.
func Copy(x *Op) (*Op, error) {
	return unaryOp("Copy", x, func(x C.xla_op) C.xla_op { return C.op_copy(x) })
}

// ZerosLike returns zeros with the same shape as x.
func ZerosLike(x *Op) (*Op, error) {
	return unaryOp("ZerosLike", x, func(x C.xla_op) C.xla_op { return C.op_zeros_like(x) })
}
