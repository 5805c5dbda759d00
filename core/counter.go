package core

// CounterTimer is a TimerDriver for the one timer whose live counter is
// readable and whose reload field spans the full 32 bits (TIM2 on the
// STM32F303). It adds counter readout, a reconfiguration path that uses
// the wide reload field, and a stop that keeps the driver alive.
type CounterTimer struct {
	TimerDriver
	cregs CounterRegs
}

// NewCounterTimer binds the wide timer instance. Construction side effects
// match NewTimerDriver.
func NewCounterTimer(regs CounterRegs, clocks ClockConfig, bus BusPort) *CounterTimer {
	return &CounterTimer{
		TimerDriver: *NewTimerDriver(regs, clocks, bus),
		cregs:       regs,
	}
}

// Counter returns the live counter register value. It has no side effects
// and is safe to call at any time, including while the timer runs.
func (t *CounterTimer) Counter() uint32 {
	t.hw()
	return t.cregs.Counter()
}

// Reconfig reprograms the divisors for the stored target frequency using
// the full width of this instance's reload field. A 32-bit reload register
// absorbs any achievable tick budget on its own, so the prescaler search
// collapses to psc=0 and the whole budget lands in the reload value.
//
// Configure must have succeeded at least once beforehand; a never
// configured driver reports ErrInvalidFrequency.
func (t *CounterTimer) Reconfig() error {
	regs := t.hw()

	if t.freq == 0 {
		return ErrInvalidFrequency
	}

	ticks := t.clocks.TimerClock() / t.freq
	psc, arr := splitTicks(ticks, uint64(regs.ReloadMax())+1)
	if psc > prescalerMax {
		return ErrConfigOverflow
	}

	regs.WritePrescaler(uint16(psc))
	regs.WriteReload(arr)
	return nil
}

// Stop pauses counting and zeroes the counter without releasing the
// resource. Unlike Free, the driver stays usable: Start brings the timer
// back.
func (t *CounterTimer) Stop() {
	regs := t.hw()

	// pause
	regs.SetCounterEnable(false)
	// restart counter
	regs.ResetCounter()
}

// Free halts counting and returns the wide register surface, ending the
// driver's lifetime.
func (t *CounterTimer) Free() CounterRegs {
	t.TimerDriver.Free()

	regs := t.cregs
	t.cregs = nil
	return regs
}
