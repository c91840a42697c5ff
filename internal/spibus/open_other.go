//go:build !linux

package spibus

import "fmt"

// Open always fails: SPI through periph.io is only wired up on Linux hosts.
func Open(opt Options) (*Bus, error) {
	return nil, fmt.Errorf("spibus: SPI is only available on linux")
}
