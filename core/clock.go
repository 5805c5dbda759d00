package core

// ClockConfig is a snapshot of the clock-tree state a timer needs to turn a
// target frequency into tick counts. It is produced by clock setup code and
// read-only here.
type ClockConfig struct {
	// PCLK is the peripheral bus clock in Hz.
	PCLK uint32

	// PPRE is the bus prescaler ratio: 1 when the bus clock equals the core
	// clock, larger when the bus is divided down.
	PPRE uint32
}

// TimerClock returns the frequency feeding the timer's tick input in Hz.
// When the bus prescaler divides by more than 1, the timer clock runs at
// twice the bus clock.
func (c ClockConfig) TimerClock() uint32 {
	if c.PPRE == 1 {
		return c.PCLK
	}
	return c.PCLK * 2
}
