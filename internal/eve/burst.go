package eve

import "fmt"

// BeginBurst opens a burst: the FIFO write header is sent once and every
// command issued until EndBurst is streamed behind it without further
// framing. With Options.BufferedBurst the words are collected in memory
// instead. A buffered burst still being sent from a previous EndBurst is
// waited for first, so bursts never overlap.
//
// Register accesses and out-of-list commands are rejected while a burst is
// open.
func (e *Engine) BeginBurst() {
	e.waitFlush()
	if e.burst {
		return
	}
	if e.open {
		e.EndCommand()
	}
	e.burst = true
	if e.opt.BufferedBurst {
		e.stage = append(make([]byte, 0, FIFOSize), cmdHeader[:]...)
		return
	}
	e.selectChip()
	e.tx(cmdHeader[:], nil)
}

// EndBurst closes the burst. Unbuffered it releases chip select; buffered it
// hands the staged bytes to a goroutine and returns without waiting.
func (e *Engine) EndBurst() {
	if !e.burst {
		return
	}
	e.burst = false
	if !e.opt.BufferedBurst {
		e.deselectChip()
		return
	}
	buf := e.stage
	e.stage = nil
	done := make(chan error, 1)
	e.inflight = done
	go flushBurst(e.t, buf, done)
}

func flushBurst(t Transport, buf []byte, done chan<- error) {
	err := t.Select()
	if err == nil {
		err = t.Tx(buf, nil)
	}
	if derr := t.Deselect(); err == nil {
		err = derr
	}
	if err != nil {
		err = fmt.Errorf("eve: burst flush: %w", err)
	}
	done <- err
}

// waitFlush blocks until a buffered burst handed off by EndBurst has been
// sent.
func (e *Engine) waitFlush() {
	if e.inflight == nil {
		return
	}
	e.setErr(<-e.inflight)
	e.inflight = nil
}

func (e *Engine) burstWrite(b []byte) {
	if e.opt.BufferedBurst {
		e.stage = append(e.stage, b...)
		return
	}
	e.tx(b, nil)
}
