package spibus

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type transfer struct {
	w  []byte
	r  bool
	cs gpio.Level
}

// recConn records every transfer together with the chip select level seen
// at that moment. Reads return the written bytes plus one.
type recConn struct {
	cs  *gpiotest.Pin
	txs []transfer
	err error
}

func (c *recConn) Tx(w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	level := gpio.Low
	if c.cs != nil {
		level = c.cs.Read()
	}
	c.txs = append(c.txs, transfer{w: append([]byte(nil), w...), r: r != nil, cs: level})
	for i := range r {
		r[i] = w[i] + 1
	}
	return nil
}

func TestGPIOChipSelect(t *testing.T) {
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	conn := &recConn{cs: cs}
	b := newBus(conn, cs, nil)

	if err := b.Select(); err != nil {
		t.Fatal(err)
	}
	if cs.Read() != gpio.Low {
		t.Fatalf("cs not asserted after Select")
	}
	if err := b.Tx([]byte{0x80, 0x10, 0x00}, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Tx([]byte{1, 2}, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.Deselect(); err != nil {
		t.Fatal(err)
	}
	if cs.Read() != gpio.High {
		t.Fatalf("cs still asserted after Deselect")
	}

	if len(conn.txs) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(conn.txs))
	}
	for i, tx := range conn.txs {
		if tx.cs != gpio.Low {
			t.Errorf("transfer %d ran with cs high", i)
		}
	}
}

func TestHardwareChipSelectCoalesces(t *testing.T) {
	conn := &recConn{}
	b := newBus(conn, nil, nil)

	_ = b.Select()
	_ = b.Tx([]byte{0xB0, 0x25, 0x78}, nil)
	_ = b.Tx([]byte{1, 2, 3, 4}, nil)
	if len(conn.txs) != 0 {
		t.Fatalf("writes reached the port before Deselect")
	}
	if err := b.Deselect(); err != nil {
		t.Fatal(err)
	}

	if len(conn.txs) != 1 {
		t.Fatalf("expected one transfer, got %d", len(conn.txs))
	}
	if want := []byte{0xB0, 0x25, 0x78, 1, 2, 3, 4}; !bytes.Equal(conn.txs[0].w, want) {
		t.Errorf("expected % X, got % X", want, conn.txs[0].w)
	}
}

func TestHardwareChipSelectRead(t *testing.T) {
	conn := &recConn{}
	b := newBus(conn, nil, nil)

	_ = b.Select()
	_ = b.Tx([]byte{0x30, 0x20, 0x00, 0x00}, nil)
	r := make([]byte, 2)
	if err := b.Tx([]byte{0x10, 0x20}, r); err != nil {
		t.Fatal(err)
	}
	_ = b.Deselect()

	if len(conn.txs) != 1 {
		t.Fatalf("expected the read to share the header transfer, got %d transfers", len(conn.txs))
	}
	if want := []byte{0x30, 0x20, 0x00, 0x00, 0x10, 0x20}; !bytes.Equal(conn.txs[0].w, want) {
		t.Errorf("expected % X, got % X", want, conn.txs[0].w)
	}
	if want := []byte{0x11, 0x21}; !bytes.Equal(r, want) {
		t.Errorf("expected the tail of the transfer % X, got % X", want, r)
	}
}

func TestTxOutsideTransaction(t *testing.T) {
	b := newBus(&recConn{}, nil, nil)
	if err := b.Tx([]byte{1}, nil); !errors.Is(err, ErrNotSelected) {
		t.Errorf("expected ErrNotSelected, got %v", err)
	}
}

func TestTxReadLength(t *testing.T) {
	b := newBus(&recConn{}, nil, nil)
	_ = b.Select()
	if err := b.Tx([]byte{1, 2}, make([]byte, 1)); err == nil {
		t.Errorf("expected a length mismatch error")
	}
}

func TestTxError(t *testing.T) {
	boom := errors.New("bus fault")
	conn := &recConn{err: boom}
	b := newBus(conn, nil, nil)
	_ = b.Select()
	_ = b.Tx([]byte{1}, nil)
	if err := b.Deselect(); !errors.Is(err, boom) {
		t.Errorf("expected the port error, got %v", err)
	}
}

func TestPowerDown(t *testing.T) {
	pd := &gpiotest.Pin{N: "PD", L: gpio.High}
	b := newBus(&recConn{}, nil, pd)

	if err := b.PowerDown(true); err != nil {
		t.Fatal(err)
	}
	if pd.Read() != gpio.Low {
		t.Errorf("PD_N not driven low")
	}
	if err := b.PowerDown(false); err != nil {
		t.Fatal(err)
	}
	if pd.Read() != gpio.High {
		t.Errorf("PD_N not released")
	}

	if err := newBus(&recConn{}, nil, nil).PowerDown(true); err != nil {
		t.Errorf("unwired PD_N should be a no-op, got %v", err)
	}
}
