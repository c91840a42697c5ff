//go:build linux

package spibus

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Open initializes periph.io, connects to the SPI port in mode 0 and claims
// the chip select and power down pins.
func Open(opt Options) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("spibus: periph host init failed: %w", err)
	}

	port, err := spireg.Open(opt.Device)
	if err != nil {
		return nil, fmt.Errorf("spibus: failed to open SPI port %q: %w", opt.Device, err)
	}

	speed := opt.SpeedHz
	if speed <= 0 {
		speed = DefaultSpeedHz
	}
	conn, err := port.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("spibus: failed to connect SPI: %w", err)
	}

	cs, err := outputPin(opt.CSPin, gpio.High)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	pd, err := outputPin(opt.PDPin, gpio.High)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	b := newBus(conn, cs, pd)
	b.closer = port
	return b, nil
}

// outputPin resolves a GPIO by name and drives it to the initial level. An
// empty name returns nil.
func outputPin(name string, initial gpio.Level) (outPin, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("spibus: gpio %s not found", name)
	}
	if err := p.Out(initial); err != nil {
		return nil, fmt.Errorf("spibus: gpio %s Out failed: %w", name, err)
	}
	return p, nil
}
