package max170xx

// TableLen is the number of entries in a characterization table.
const TableLen = 64

// Table is the 64-entry OCV-to-capacity model loaded by SetTable.
type Table [TableLen]uint16

// Bytes returns the burst frame: the table base address followed by every
// entry big-endian, in order.
func (t *Table) Bytes() []byte {
	b := make([]byte, 1+2*TableLen)
	b[0] = regTableBase
	for i, v := range t {
		b[1+2*i] = byte(v >> 8)
		b[2+2*i] = byte(v)
	}
	return b
}
