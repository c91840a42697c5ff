// Package eve drives FTDI/Bridgetek EVE graphics coprocessors (FT81x, BT815/6,
// BT817/8) over SPI. It owns the wire framing of register accesses, the
// coprocessor command FIFO in both immediate and burst mode, fault recovery of
// the coprocessor and the power-up sequence of the chip.
//
// An Engine is not safe for concurrent use. All calls for one chip must come
// from a single goroutine or be serialized by the caller.
package eve

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Transport is the SPI link to one chip. Select and Deselect drive the chip
// select line; everything passed to Tx between them belongs to a single
// transaction. PowerDown drives the PD_N pin (assert = chip held in power
// down).
type Transport interface {
	Select() error
	Deselect() error
	Tx(w, r []byte) error
	PowerDown(assert bool) error
}

// Clock provides the delays of the busy loops so tests do not depend on wall
// time.
type Clock interface {
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Generation selects the command set and init details of the chip family.
type Generation uint8

const (
	Gen2 Generation = 2 // FT810..FT813
	Gen3 Generation = 3 // BT815, BT816
	Gen4 Generation = 4 // BT817, BT818
)

func (g Generation) String() string {
	switch g {
	case Gen2:
		return "FT81x"
	case Gen3:
		return "BT815/6"
	case Gen4:
		return "BT817/8"
	default:
		return fmt.Sprintf("gen%d", uint8(g))
	}
}

// Status is the coarse state reported by BusyQuery.
type Status uint8

const (
	StatusOK Status = iota
	StatusBusy
	StatusHalfEmpty
	StatusFaultRecovered
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBusy:
		return "busy"
	case StatusHalfEmpty:
		return "half-empty"
	case StatusFaultRecovered:
		return "fault-recovered"
	default:
		return "unknown"
	}
}

var (
	ErrRegIDTimeout = errors.New("eve: chip did not report REG_ID 0x7C")
	ErrResetTimeout = errors.New("eve: chip units did not leave reset")
	ErrBurstActive  = errors.New("eve: operation not allowed during a burst")
	ErrNotFraming   = errors.New("eve: no command or burst open")
	ErrUnsupported  = errors.New("eve: command not supported by this chip generation")
)

// Options configures an Engine.
type Options struct {
	Generation Generation
	Display    Timing

	// ExternalClock selects CLKEXT instead of the internal oscillator.
	ExternalClock bool
	// SoftReset sends RST_PULSE after the power down pulse.
	SoftReset bool
	// TouchGT911 switches the touch engine to a Goodix GT911 controller.
	// FT81x needs the vendor patch in GT911Patch for that.
	TouchGT911 bool
	GT911Patch []byte

	// BufferedBurst stages bursts in memory and sends them from a
	// background goroutine in one transaction when EndBurst is called.
	BufferedBurst bool

	Clock Clock
	// Log receives debug events (fault recoveries, init progress). Nil
	// disables them.
	Log func(msg string, kv ...any)
}

// Timing holds the panel timing and the values written during init.
type Timing struct {
	HSize, VSize   uint16
	HCycle, VCycle uint16
	HOffset        uint16
	VOffset        uint16
	HSync0, HSync1 uint16
	VSync0, VSync1 uint16
	PCLK           uint8
	PCLKPol        uint8
	Swizzle        uint8
	CSpread        uint8

	// PCLKFreq, when non-zero on BT817/8, programs REG_PCLK_FREQ and runs
	// the pixel clock from the PLL (REG_PCLK=1).
	PCLKFreq uint16
	PCLK2X   bool

	// Rotate is written to REG_ROTATE when set.
	Rotate *uint8
	// OutBits overrides REG_OUTBITS for panels with fewer than 8 bits per
	// color. Zero keeps the reset value.
	OutBits uint16

	TouchRZThresh uint16
	Backlight     uint8
	BacklightFreq uint16
}

// cmdHeader is the write header for REG_CMDB_WRITE (0x302578 | write bit).
var cmdHeader = [3]byte{0xB0, 0x25, 0x78}

// Engine is the command and register interface to one EVE chip.
type Engine struct {
	t   Transport
	opt Options
	clk Clock

	burst bool
	// open is set between BeginCommand and EndCommand.
	open  bool
	stage []byte
	// inflight is non-nil while a buffered burst is being sent.
	inflight chan error

	faultRecovered bool
	recoveries     uint64

	// err is the first transport failure. It ends the wait loops.
	err error
	// misuse is the first call made in the wrong mode or for the wrong
	// chip. Nothing was sent for it, so the wait loops ignore it.
	misuse error
}

// New returns an Engine talking to t. Init must be called before the chip is
// used.
func New(t Transport, opt Options) *Engine {
	if opt.Generation == 0 {
		opt.Generation = Gen2
	}
	if opt.Display.TouchRZThresh == 0 {
		opt.Display.TouchRZThresh = 1200
	}
	clk := opt.Clock
	if clk == nil {
		clk = wallClock{}
	}
	return &Engine{t: t, opt: opt, clk: clk}
}

func (e *Engine) Generation() Generation { return e.opt.Generation }

// Err returns the first transport error seen by the engine, or else the first
// usage error. Register accesses do not return errors individually; check Err
// after a sequence of them.
func (e *Engine) Err() error {
	if e.err != nil {
		return e.err
	}
	return e.misuse
}

// ClearErr forgets both sticky errors.
func (e *Engine) ClearErr() {
	e.err = nil
	e.misuse = nil
}

func (e *Engine) setErr(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

func (e *Engine) setMisuse(err error) {
	if e.misuse == nil {
		e.misuse = err
	}
}

func (e *Engine) debug(msg string, kv ...any) {
	if e.opt.Log != nil {
		e.opt.Log(msg, kv...)
	}
}

// Recoveries reports how many coprocessor fault recoveries ran so far.
func (e *Engine) Recoveries() uint64 { return e.recoveries }

// InBurst reports whether a burst is open.
func (e *Engine) InBurst() bool { return e.burst }

// Advance moves a RAM_CMD offset by n bytes (n may be negative) and wraps it
// to the 4096 byte ring.
func Advance(o uint16, n int) uint16 {
	return uint16((int(o) + n) & fifoMask)
}

// BusyQuery reads REG_CMDB_SPACE once and interprets it. A fault signature
// (low two bits set) takes priority over everything else: the coprocessor is
// reset and StatusFaultRecovered is returned. While a buffered burst is still
// being sent, or a burst is open, it reports StatusBusy without touching the
// bus.
func (e *Engine) BusyQuery() Status {
	if e.inflight != nil {
		select {
		case err := <-e.inflight:
			e.inflight = nil
			e.setErr(err)
		default:
			return StatusBusy
		}
	}
	if e.burst {
		return StatusBusy
	}

	space := e.Read16(REG_CMDB_SPACE)
	switch {
	case space&3 != 0:
		e.faultRecovered = true
		e.recoveries++
		e.debug("eve: coprocessor fault, recovering", "space", fmt.Sprintf("0x%03X", space), "count", e.recoveries)
		e.recoverCoprocessor()
		return StatusFaultRecovered
	case space == FIFOEmpty:
		return StatusOK
	case space > fifoHalf:
		return StatusHalfEmpty
	default:
		return StatusBusy
	}
}

// GetAndResetFaultState reports whether BusyQuery recovered from a fault since
// the last call.
func (e *Engine) GetAndResetFaultState() bool {
	f := e.faultRecovered
	e.faultRecovered = false
	return f
}

// ExecuteAndWait polls BusyQuery until the FIFO is drained. A fault recovery
// does not end the wait. There is no retry limit; the wait ends early only
// when ctx is done or the transport failed. Usage errors recorded in Err do
// not stop it.
func (e *Engine) ExecuteAndWait(ctx context.Context) error {
	if e.burst {
		return ErrBurstActive
	}
	e.waitFlush()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.err != nil {
			return e.err
		}
		if e.BusyQuery() == StatusOK {
			return e.err
		}
	}
}

// BeginCommand opens a coprocessor command outside of a burst: the FIFO write
// header followed by the opcode. Arguments are added with WriteWord and
// WriteString, and EndCommand closes the transaction. Within a burst it
// fails with ErrBurstActive and sends nothing.
func (e *Engine) BeginCommand(op uint32) error {
	if e.burst {
		return ErrBurstActive
	}
	if e.open {
		e.EndCommand()
	}
	e.waitFlush()
	b := make([]byte, 0, 7)
	b = append(b, cmdHeader[:]...)
	b = appendWord(b, op)
	e.selectChip()
	e.tx(b, nil)
	e.open = true
	return e.err
}

// EndCommand releases chip select for a command opened with BeginCommand. It
// does not wait for the coprocessor.
func (e *Engine) EndCommand() {
	if !e.open {
		return
	}
	e.open = false
	e.deselectChip()
}

// WriteWord appends one 32-bit argument to the open command or burst.
func (e *Engine) WriteWord(w uint32) {
	e.payload(appendWord(nil, w))
}

// WriteString appends a text argument to the open command or burst: at most
// MaxString bytes, cut at the first NUL, then 1 to 4 zero bytes so the FIFO
// stays 32-bit aligned.
func (e *Engine) WriteString(s string) {
	e.payload(appendString(nil, s))
}

func (e *Engine) payload(b []byte) {
	switch {
	case e.burst:
		e.burstWrite(b)
	case e.open:
		e.tx(b, nil)
	default:
		e.setMisuse(ErrNotFraming)
	}
}

// send delivers one complete command (opcode plus arguments) to the FIFO in
// the framing of the current mode.
func (e *Engine) send(cmd []byte) {
	if e.burst {
		e.burstWrite(cmd)
		return
	}
	if e.open {
		e.EndCommand()
	}
	e.waitFlush()
	b := make([]byte, 0, len(cmdHeader)+len(cmd))
	b = append(b, cmdHeader[:]...)
	b = append(b, cmd...)
	e.transaction(b, nil)
}

func (e *Engine) selectChip() {
	e.setErr(e.t.Select())
}

func (e *Engine) deselectChip() {
	e.setErr(e.t.Deselect())
}

func (e *Engine) tx(w, r []byte) {
	if err := e.t.Tx(w, r); err != nil {
		e.setErr(fmt.Errorf("eve: spi tx: %w", err))
	}
}

// transaction runs one chip-select framed transfer.
func (e *Engine) transaction(w, r []byte) {
	e.selectChip()
	e.tx(w, r)
	e.deselectChip()
}
