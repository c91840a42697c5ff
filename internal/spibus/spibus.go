// Package spibus connects an EVE chip to a host SPI port through periph.io.
// It provides the chip-select framing the eve package expects: everything
// sent between Select and Deselect reaches the chip as one transaction.
package spibus

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
)

// Options selects the SPI port and pins.
type Options struct {
	// Device is the spireg name of the port, "" for the first one.
	Device string
	// SpeedHz is the SPI clock. EVE accepts at most 11MHz until its system
	// clock is configured.
	SpeedHz int64
	// CSPin is the GPIO driving chip select. Empty uses the chip select of
	// the SPI port itself; transfers are then coalesced so that one
	// transaction is one Tx.
	CSPin string
	// PDPin is the GPIO wired to PD_N. Empty means PD_N is not connected.
	PDPin string
}

const DefaultSpeedHz = 8_000_000

var ErrNotSelected = errors.New("spibus: no transaction open")

type txConn interface {
	Tx(w, r []byte) error
}

type outPin interface {
	Out(l gpio.Level) error
}

// Bus implements eve.Transport.
type Bus struct {
	conn   txConn
	cs     outPin
	pd     outPin
	closer io.Closer

	selected bool
	// pending collects the writes of a transaction when the port drives
	// chip select itself.
	pending []byte
}

func newBus(conn txConn, cs, pd outPin) *Bus {
	return &Bus{conn: conn, cs: cs, pd: pd}
}

// Select starts a transaction.
func (b *Bus) Select() error {
	if b.selected {
		return nil
	}
	b.selected = true
	if b.cs == nil {
		b.pending = b.pending[:0]
		return nil
	}
	if err := b.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("spibus: cs low: %w", err)
	}
	return nil
}

// Deselect ends the transaction. With hardware chip select the collected
// bytes are sent here.
func (b *Bus) Deselect() error {
	if !b.selected {
		return nil
	}
	b.selected = false
	if b.cs != nil {
		if err := b.cs.Out(gpio.High); err != nil {
			return fmt.Errorf("spibus: cs high: %w", err)
		}
		return nil
	}
	if len(b.pending) == 0 {
		return nil
	}
	err := b.conn.Tx(b.pending, nil)
	b.pending = b.pending[:0]
	if err != nil {
		return fmt.Errorf("spibus: tx: %w", err)
	}
	return nil
}

// Tx clocks w out and, when r is not nil, the same number of bytes in. r
// must be as long as w.
func (b *Bus) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return fmt.Errorf("spibus: read buffer is %d bytes, write buffer %d", len(r), len(w))
	}
	if !b.selected {
		return ErrNotSelected
	}
	if b.cs != nil {
		if err := b.conn.Tx(w, r); err != nil {
			return fmt.Errorf("spibus: tx: %w", err)
		}
		return nil
	}
	if r == nil {
		b.pending = append(b.pending, w...)
		return nil
	}
	// a read ends the coalesced write prefix: send it all in one transfer
	// and hand back the tail
	n := len(b.pending)
	buf := append(b.pending, w...)
	rbuf := make([]byte, len(buf))
	err := b.conn.Tx(buf, rbuf)
	b.pending = buf[:0]
	if err != nil {
		return fmt.Errorf("spibus: tx: %w", err)
	}
	copy(r, rbuf[n:])
	return nil
}

// PowerDown drives PD_N low while assert is true.
func (b *Bus) PowerDown(assert bool) error {
	if b.pd == nil {
		return nil
	}
	l := gpio.High
	if assert {
		l = gpio.Low
	}
	if err := b.pd.Out(l); err != nil {
		return fmt.Errorf("spibus: pd: %w", err)
	}
	return nil
}

// Close releases the SPI port.
func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
