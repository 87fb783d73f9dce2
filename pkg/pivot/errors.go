package pivot

import "github.com/cockroachdb/errors"

var (
	ErrInvalidPivotSpec          = errors.New("pivot: invalid pivot spec")
	ErrFrozenValueLengthMismatch = errors.New("pivot: frozen value length mismatch")
	ErrIndexOutOfRange           = errors.New("pivot: index out of range")
	ErrInvalidRelation           = errors.New("pivot: invalid relation")
)
