package eve

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"
)

// txn is one chip-select framed transaction as seen by the chip.
type txn struct {
	data []byte
	read bool
}

func (t txn) addr() uint32 {
	return uint32(t.data[0]&0x3F)<<16 | uint32(t.data[1])<<8 | uint32(t.data[2])
}

// fakeChip is an in-memory EVE: it decodes transaction headers, keeps a
// sparse memory map, appends FIFO writes to the RAM_CMD ring and answers
// status registers from scripted queues.
type fakeChip struct {
	mu sync.Mutex

	mem      map[uint32]byte
	selected bool
	cur      []byte
	curRead  bool
	txns     []txn
	host     [][3]byte
	pd       []bool
	reads    []uint32
	wp       uint16

	space       []uint16
	regID       []uint8
	cpureset    []uint8
	flashStatus []uint8

	// results fills in the result words of a coprocessor command written in
	// one FIFO transaction. It receives the words after the opcode.
	results map[uint32]func(args []uint32) []uint32

	txErr error
	// gate, when set, holds every Tx until it is closed.
	gate chan struct{}
	// strict fails Tx calls made without chip select.
	strict bool
}

func newFakeChip() *fakeChip {
	return &fakeChip{
		mem:     make(map[uint32]byte),
		results: make(map[uint32]func([]uint32) []uint32),
		strict:  true,
	}
}

var errNotSelected = errors.New("fake: tx without chip select")

func (c *fakeChip) Select() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = true
	c.cur = nil
	c.curRead = false
	return nil
}

func (c *fakeChip) Deselect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.selected {
		return nil
	}
	c.selected = false
	t := txn{data: c.cur, read: c.curRead}
	c.cur = nil
	if len(t.data) == 0 {
		return nil
	}
	c.txns = append(c.txns, t)
	if t.read {
		return nil
	}
	if len(t.data) == 3 && t.data[0]&0x80 == 0 {
		c.host = append(c.host, [3]byte(t.data))
		return nil
	}
	if t.data[0]&0xC0 != 0x80 {
		return nil
	}
	addr, payload := t.addr(), t.data[3:]
	if addr == REG_CMDB_WRITE {
		c.fifoWrite(payload)
		return nil
	}
	for i, b := range payload {
		c.mem[addr+uint32(i)] = b
	}
	if addr == REG_CMD_WRITE && len(payload) >= 2 {
		c.wp = binary.LittleEndian.Uint16(payload) & fifoMask
	}
	return nil
}

func (c *fakeChip) Tx(w, r []byte) error {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.txErr != nil {
		return c.txErr
	}
	if c.strict && !c.selected {
		return errNotSelected
	}
	c.cur = append(c.cur, w...)
	if r == nil {
		return nil
	}
	c.curRead = true
	addr := uint32(w[0]&0x3F)<<16 | uint32(w[1])<<8 | uint32(w[2])
	c.reads = append(c.reads, addr)
	c.onRead(addr)
	for k := 4; k < len(r); k++ {
		r[k] = c.mem[addr+uint32(k-4)]
	}
	return nil
}

func (c *fakeChip) PowerDown(assert bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pd = append(c.pd, assert)
	return nil
}

func (c *fakeChip) onRead(addr uint32) {
	switch addr {
	case REG_CMDB_SPACE:
		v := FIFOEmpty
		if len(c.space) > 0 {
			v, c.space = c.space[0], c.space[1:]
		}
		c.put16(addr, v)
	case REG_ID:
		v := regIDValue
		if len(c.regID) > 0 {
			v, c.regID = c.regID[0], c.regID[1:]
		}
		c.mem[addr] = v
	case REG_CPURESET:
		if len(c.cpureset) > 0 {
			c.mem[addr], c.cpureset = c.cpureset[0], c.cpureset[1:]
		}
	case REG_FLASH_STATUS:
		if len(c.flashStatus) > 0 {
			c.mem[addr], c.flashStatus = c.flashStatus[0], c.flashStatus[1:]
		}
	}
}

func (c *fakeChip) fifoWrite(data []byte) {
	if len(data) >= 4 {
		op := binary.LittleEndian.Uint32(data)
		if fn, ok := c.results[op]; ok {
			var args []uint32
			for i := 4; i+4 <= len(data); i += 4 {
				args = append(args, binary.LittleEndian.Uint32(data[i:]))
			}
			res := fn(args)
			data = append([]byte(nil), data...)
			off := len(data) - 4*len(res)
			for i, v := range res {
				binary.LittleEndian.PutUint32(data[off+4*i:], v)
			}
		}
	}
	for _, b := range data {
		c.mem[RAM_CMD+uint32(c.wp)] = b
		c.wp = (c.wp + 1) & fifoMask
	}
	c.put16(REG_CMD_WRITE, c.wp)
}

func (c *fakeChip) put16(addr uint32, v uint16) {
	c.mem[addr] = byte(v)
	c.mem[addr+1] = byte(v >> 8)
}

func (c *fakeChip) get16(addr uint32) uint16 {
	return uint16(c.mem[addr]) | uint16(c.mem[addr+1])<<8
}

func (c *fakeChip) get32(addr uint32) uint32 {
	return uint32(c.get16(addr)) | uint32(c.get16(addr+2))<<16
}

// writes returns the register writes in order, excluding FIFO writes.
func (c *fakeChip) writes() []txn {
	var out []txn
	for _, t := range c.txns {
		if t.read || len(t.data) <= 3 || t.addr() == REG_CMDB_WRITE {
			continue
		}
		out = append(out, t)
	}
	return out
}

// fifo returns the concatenated payload of all FIFO write transactions.
func (c *fakeChip) fifo() []byte {
	var out []byte
	for _, t := range c.txns {
		if !t.read && len(t.data) > 3 && t.addr() == REG_CMDB_WRITE {
			out = append(out, t.data[3:]...)
		}
	}
	return out
}

func (c *fakeChip) countReads(addr uint32) int {
	n := 0
	for _, a := range c.reads {
		if a == addr {
			n++
		}
	}
	return n
}

type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) { c.sleeps = append(c.sleeps, d) }

func (c *fakeClock) total() time.Duration {
	var t time.Duration
	for _, d := range c.sleeps {
		t += d
	}
	return t
}

func newTestEngine(t *testing.T, opt Options) (*Engine, *fakeChip, *fakeClock) {
	t.Helper()
	chip := newFakeChip()
	clk := &fakeClock{}
	opt.Clock = clk
	return New(chip, opt), chip, clk
}

func le32(vs ...uint32) []byte {
	var b []byte
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}
