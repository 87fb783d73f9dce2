package common

import "encoding/binary"

const componentSize = 9

// Encode returns a compact binary form of t usable as a map key: a uint16
// arity followed by a resolved flag and a big endian value per component.
func (t Tuple) Encode() string {
	buf := make([]byte, 2+len(t)*componentSize)
	binary.BigEndian.PutUint16(buf, uint16(len(t)))
	off := 2
	for _, c := range t {
		if c.resolved {
			buf[off] = 1
		}
		binary.BigEndian.PutUint64(buf[off+1:], uint64(c.value))
		off += componentSize
	}
	return string(buf)
}
