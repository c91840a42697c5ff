package eve

import "encoding/binary"

// header builds the three address bytes of a memory transaction. Bit 7 of the
// first byte marks a write.
func header(addr uint32, write bool) [3]byte {
	h := [3]byte{byte(addr>>16) & 0x3F, byte(addr >> 8), byte(addr)}
	if write {
		h[0] |= 0x80
	}
	return h
}

// regAccess reports whether a direct memory transaction may run now.
func (e *Engine) regAccess() bool {
	if e.burst {
		e.setMisuse(ErrBurstActive)
		return false
	}
	e.waitFlush()
	if e.open {
		e.EndCommand()
	}
	return true
}

func (e *Engine) read(addr uint32, n int) []byte {
	if !e.regAccess() {
		return make([]byte, n)
	}
	h := header(addr, false)
	// header, one dummy byte, then the data clocked out by the chip
	w := make([]byte, 4+n)
	copy(w, h[:])
	r := make([]byte, len(w))
	e.transaction(w, r)
	return r[4:]
}

func (e *Engine) write(addr uint32, data []byte) {
	if !e.regAccess() {
		return
	}
	h := header(addr, true)
	w := make([]byte, 0, 3+len(data))
	w = append(w, h[:]...)
	w = append(w, data...)
	e.transaction(w, nil)
}

func (e *Engine) Read8(addr uint32) uint8 {
	return e.read(addr, 1)[0]
}

func (e *Engine) Read16(addr uint32) uint16 {
	return binary.LittleEndian.Uint16(e.read(addr, 2))
}

func (e *Engine) Read32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(e.read(addr, 4))
}

func (e *Engine) Write8(addr uint32, v uint8) {
	e.write(addr, []byte{v})
}

func (e *Engine) Write16(addr uint32, v uint16) {
	e.write(addr, binary.LittleEndian.AppendUint16(nil, v))
}

func (e *Engine) Write32(addr uint32, v uint32) {
	e.write(addr, binary.LittleEndian.AppendUint32(nil, v))
}

// WriteBuffer writes data to consecutive chip addresses in one transaction.
func (e *Engine) WriteBuffer(addr uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	e.write(addr, data)
}

// ReadBuffer fills buf from consecutive chip addresses in one transaction.
func (e *Engine) ReadBuffer(addr uint32, buf []byte) {
	if len(buf) == 0 {
		return
	}
	copy(buf, e.read(addr, len(buf)))
}

// HostCommand sends a three byte host command (power modes, clock setup).
func (e *Engine) HostCommand(cmd, param uint8) {
	if !e.regAccess() {
		return
	}
	e.transaction([]byte{cmd, param, 0}, nil)
}

// ChipID reads the chip identification word from ROM, e.g. 0x00011208 for
// an FT812 or 0x00011708 for a BT817.
func (e *Engine) ChipID() uint32 {
	return e.Read32(ROM_CHIPID)
}
