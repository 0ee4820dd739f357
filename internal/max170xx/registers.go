package max170xx

// Addr is the 7-bit I2C address shared by every supported gauge.
const Addr = 0x36

// Register addresses. Each names the high byte of a big-endian 16-bit
// register; the low byte lives at the next address.
const (
	RegVCELL   byte = 0x02
	RegSOC     byte = 0x04
	RegMODE    byte = 0x06
	RegVERSION byte = 0x08
	RegCONFIG  byte = 0x0C
	RegCRATE   byte = 0x16
	RegCOMMAND byte = 0xFE
)

// Command payloads.
const (
	CmdQuickStart uint16 = 0x4000
	CmdResetA     uint16 = 0x0054 // MAX17043/MAX17044
	CmdResetB     uint16 = 0x5400 // MAX17048/MAX17049/MAX17058/MAX17059
)

// Table access. The unlock/lock handshake works on single bytes.
const (
	regTableUnlock1 byte = 0x3F
	regTableUnlock2 byte = 0x3E
	regTableBase    byte = 0x40

	tableKey1 byte = 0x57
	tableKey2 byte = 0x4A
)
