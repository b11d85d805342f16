package xla

/*
#include "xla_rs.h"
*/
import "C"
import (
	"fmt"

	"github.com/pkg/errors"
)

// Dot returns the product of lhs and rhs: the dot product for two vectors, a matrix-vector product,
// or a matrix multiplication for two matrices.
func Dot(lhs, rhs *Op) (*Op, error) {
	return binaryOp("Dot", lhs, rhs, func(x, y C.xla_op) C.xla_op { return C.op_dot(x, y) })
}

// DotGeneral is the generalized dot product: it multiplies and sums over the contracting axes, and it
// treats the batch axes as independent (they must have the same size on both sides).
//
// The output has the batch axes first, then the remaining axes of lhs, then the remaining axes of rhs.
func DotGeneral(lhs *Op, lhsContractingAxes, lhsBatchAxes []int64, rhs *Op, rhsContractingAxes, rhsBatchAxes []int64) (*Op, error) {
	b, err := checkOps("DotGeneral", lhs, rhs)
	if err != nil {
		return nil, err
	}
	if len(lhsContractingAxes) != len(rhsContractingAxes) || len(lhsBatchAxes) != len(rhsBatchAxes) {
		return nil, errors.Errorf("DotGeneral: contracting axes (%v, %v) and batch axes (%v, %v) must have the same lengths for lhs and rhs",
			lhsContractingAxes, rhsContractingAxes, lhsBatchAxes, rhsBatchAxes)
	}
	cLhsContracting, numLhsContracting := cInt64Array(lhsContractingAxes)
	defer cFree(cLhsContracting)
	cRhsContracting, numRhsContracting := cInt64Array(rhsContractingAxes)
	defer cFree(cRhsContracting)
	cLhsBatch, numLhsBatch := cInt64Array(lhsBatchAxes)
	defer cFree(cLhsBatch)
	cRhsBatch, numRhsBatch := cInt64Array(rhsBatchAxes)
	defer cFree(cRhsBatch)
	cOp := C.op_dot_general(lhs.cOp, rhs.cOp,
		cLhsContracting, numLhsContracting, cRhsContracting, numRhsContracting,
		cLhsBatch, numLhsBatch, cRhsBatch, numRhsBatch)
	return b.newOp(cOp, "DotGeneral")
}

// MatMul is a matrix multiplication with leading batch axes, using DotGeneral.
//
// All axes but the last two are batch axes, and both operands must have the same number of them.
// It contracts the last axis of lhs with the second to last axis of rhs (or its only axis, if rhs is a vector).
func MatMul(lhs, rhs *Op) (*Op, error) {
	if _, err := checkOps("MatMul", lhs, rhs); err != nil {
		return nil, err
	}
	lhsRank, err := lhs.Rank()
	if err != nil {
		return nil, errors.WithMessage(err, "MatMul: lhs")
	}
	rhsRank, err := rhs.Rank()
	if err != nil {
		return nil, errors.WithMessage(err, "MatMul: rhs")
	}
	if lhsRank < 1 || rhsRank < 1 {
		return nil, errors.Errorf("MatMul is not supported for scalars, got lhs.rank=%d and rhs.rank=%d", lhsRank, rhsRank)
	}
	lhsBatchRank := max(lhsRank-2, 0)
	rhsBatchRank := max(rhsRank-2, 0)
	if lhsBatchRank != rhsBatchRank {
		return nil, errors.Errorf("MatMul: different number of batch axes for lhs (%d) and rhs (%d)", lhsBatchRank, rhsBatchRank)
	}
	batchAxes := make([]int64, lhsBatchRank)
	for ii := range batchAxes {
		batchAxes[ii] = int64(ii)
	}
	rhsContracting := int64(rhsRank - 1)
	if rhsRank > 1 {
		rhsContracting--
	}
	return DotGeneral(lhs, []int64{int64(lhsRank - 1)}, batchAxes, rhs, []int64{rhsContracting}, batchAxes)
}

// TransposeType defines how the matrix a is used in TriangularSolve.
type TransposeType int

const (
	// NoTranspose uses a as is.
	NoTranspose TransposeType = 1

	// TransposeA uses the transpose of a.
	TransposeA TransposeType = 2

	// AdjointA uses the conjugate transpose of a.
	AdjointA TransposeType = 3
)

// String implements fmt.Stringer.
func (t TransposeType) String() string {
	switch t {
	case NoTranspose:
		return "NoTranspose"
	case TransposeA:
		return "TransposeA"
	case AdjointA:
		return "AdjointA"
	}
	return fmt.Sprintf("TransposeType(%d)", int(t))
}

// TriangularSolve solves the systems of linear equations with a triangular coefficient matrix a, by
// forward or back substitution.
//
// If leftSide is true it solves op(a) * x = b, otherwise x * op(a) = b, where op(a) is given by transposeA.
// lower selects which triangle of a is used, and unitDiagonal assumes the diagonal elements of a are 1
// (they are not read). Leading axes are batch axes.
func TriangularSolve(a, b *Op, leftSide, lower, unitDiagonal bool, transposeA TransposeType) (*Op, error) {
	builder, err := checkOps("TriangularSolve", a, b)
	if err != nil {
		return nil, err
	}
	if transposeA < NoTranspose || transposeA > AdjointA {
		return nil, errors.Errorf("TriangularSolve: invalid transposeA %s", transposeA)
	}
	cOp := C.op_triangular_solve(a.cOp, b.cOp, C.bool(leftSide), C.bool(lower), C.bool(unitDiagonal), C.int(transposeA))
	return builder.newOp(cOp, "TriangularSolve")
}

// Cholesky returns the Cholesky decomposition of the symmetric positive definite matrix a: the lower (or
// upper, if lower is false) triangular l such that a = l * l^T. Leading axes are batch axes.
func Cholesky(a *Op, lower bool) (*Op, error) {
	b, err := checkOps("Cholesky", a)
	if err != nil {
		return nil, err
	}
	return b.newOp(C.op_cholesky(a.cOp, C.bool(lower)), "Cholesky")
}
