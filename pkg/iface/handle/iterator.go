package handle

import (
	"io"
	"pivot/pkg/iface"
)

type Iterator interface {
	io.Closer
	Valid() bool
	Next()
}

// CellIt walks the cells of a grid window row by row.
type CellIt interface {
	Iterator
	Position() (row, column int)
	GetCell() iface.Cell
	Err() error
}
