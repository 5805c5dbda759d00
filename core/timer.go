// Countdown timer driver for STM32F3 general-purpose and basic timers.
//
// A TimerDriver owns exactly one hardware timer instance. It converts a
// target frequency into the prescaler/auto-reload divisor pair, runs the
// countdown, and exposes a non-blocking poll for expiration. Register
// access goes through the TimerRegs interface so the five instances share
// one driver despite their different field widths.
package core

import "errors"

// Driver errors.
var (
	// ErrInvalidFrequency reports a Configure target of zero or beyond the
	// timer input clock.
	ErrInvalidFrequency = errors.New("timer: frequency outside achievable range")

	// ErrConfigOverflow reports a computed divisor that does not fit its
	// hardware field.
	ErrConfigOverflow = errors.New("timer: divisor exceeds hardware field width")

	// ErrWouldBlock is the steady-state result of polling Wait before the
	// timer expires. It is not a failure.
	ErrWouldBlock = errors.New("timer: update event not pending")
)

// Event selects which notification mode Listen enables.
type Event uint8

const (
	// EventTimeOut signals countdown completion.
	EventTimeOut Event = iota

	// EventUpdate signals the hardware update event. Its master-mode code
	// differs from EventTimeOut's, but the hardware treats both as "update
	// event is trigger output", so the two are currently equivalent in
	// effect. TODO: check the RM0316 mode table before giving them
	// genuinely distinct codes.
	EventUpdate
)

// prescalerSpan is how many input ticks one prescaler step covers: the
// 16-bit PSC field divides by psc+1, so a step absorbs up to 65536 ticks.
const prescalerSpan = 1 << 16

// prescalerMax is the largest programmable prescaler value.
const prescalerMax = 0xFFFF

// TimerDriver drives one hardware timer as a periodic countdown timer.
//
// The register handle moves into the driver at construction and back out
// at Free; no two drivers may hold the same instance. All operations are
// synchronous and never block: Wait returns ErrWouldBlock instead of
// suspending, and the caller retries.
type TimerDriver struct {
	clocks ClockConfig
	regs   TimerRegs
	freq   uint32 // last Configure target in Hz, 0 until configured
}

// NewTimerDriver binds a timer register surface to a new driver.
//
// The bus port is used once, during construction: the peripheral clock
// gate is opened first, then the reset line is pulsed. The ordering
// matters because the reset registers only take effect while the
// peripheral clock is running. The timer comes up in its power-on register
// state and the driver starts unconfigured.
func NewTimerDriver(regs TimerRegs, clocks ClockConfig, bus BusPort) *TimerDriver {
	bus.EnableClock()
	bus.AssertReset()
	bus.DeassertReset()

	return &TimerDriver{
		clocks: clocks,
		regs:   regs,
	}
}

// TargetFrequency returns the frequency passed to the last successful
// Configure, or 0 if the driver has never been configured.
func (t *TimerDriver) TargetFrequency() uint32 {
	return t.freq
}

// Configure programs the timer to expire freq times per second.
//
// The tick budget TimerClock()/freq is split across the 16-bit prescaler
// and the auto-reload field so that (psc+1)*(arr+1) covers the budget to
// within one prescaler step. All division truncates; the effective output
// frequency may sit slightly above the request and that is not an error.
//
// Nothing is written to the hardware unless both divisors validate: a
// ConfigOverflow leaves the previous divisor pair intact.
func (t *TimerDriver) Configure(freq uint32) error {
	regs := t.hw()

	timerClock := t.clocks.TimerClock()
	if freq == 0 || freq > timerClock {
		return ErrInvalidFrequency
	}

	ticks := timerClock / freq
	psc, arr := splitTicks(ticks, prescalerSpan)
	if psc > prescalerMax {
		return ErrConfigOverflow
	}
	if arr > regs.ReloadMax() {
		return ErrConfigOverflow
	}

	regs.WritePrescaler(uint16(psc))
	regs.WriteReload(arr)
	t.freq = freq
	return nil
}

// Start restarts the countdown from a zeroed counter: pause, reset the
// counter, resume. Calling Start while the timer is already running is
// allowed and begins a fresh cycle.
func (t *TimerDriver) Start() {
	regs := t.hw()

	// pause
	regs.SetCounterEnable(false)
	// restart counter
	regs.ResetCounter()
	// resume
	regs.SetCounterEnable(true)
}

// Wait polls for timer expiration without blocking. It returns
// ErrWouldBlock while no update event is pending, and nil exactly once per
// observed event, clearing the status flag on the way out.
//
// The hardware latches a single flag, so expirations between polls
// coalesce into one observable event. Wait never fails; ErrWouldBlock is
// the normal steady state of a polling loop.
func (t *TimerDriver) Wait() error {
	regs := t.hw()

	if !regs.UpdatePending() {
		return ErrWouldBlock
	}
	regs.ClearUpdate()
	return nil
}

// Listen configures the hardware to raise interrupt requests for an
// event. Interrupt dispatch itself is outside this driver; only the
// request configuration lives here.
func (t *TimerDriver) Listen(event Event) {
	regs := t.hw()

	switch event {
	case EventTimeOut:
		regs.SetMasterMode(MasterModeUpdate)
	case EventUpdate:
		regs.SetMasterMode(MasterModeUpdateAlt)
	}
	regs.SetUpdateInterrupt(true)
}

// Unlisten reverses Listen for the given event: master mode goes back to
// reset and the update interrupt is disabled, in the order mirrored from
// the corresponding Listen.
func (t *TimerDriver) Unlisten(event Event) {
	regs := t.hw()

	switch event {
	case EventTimeOut:
		regs.SetUpdateInterrupt(false)
		regs.SetMasterMode(MasterModeReset)
	case EventUpdate:
		regs.SetMasterMode(MasterModeReset)
		regs.SetUpdateInterrupt(false)
	}
}

// Free halts counting and returns the register surface to the caller,
// ending the driver's lifetime. The counter value is left in place. The
// returned handle can be rebound with NewTimerDriver; using the old driver
// after Free panics.
func (t *TimerDriver) Free() TimerRegs {
	regs := t.hw()
	t.regs = nil

	regs.SetCounterEnable(false)
	return regs
}

// hw returns the owned register surface, panicking after Free. Use after
// release is a caller bug, not a runtime condition.
func (t *TimerDriver) hw() TimerRegs {
	if t.regs == nil {
		panic("timer: driver already freed")
	}
	return t.regs
}

// splitTicks factors a tick budget into a prescaler value and a reload
// value, for a reload field spanning span ticks per prescaler step. The
// prescaler is the smallest divisor that brings the per-cycle count into
// the field; the reload value is divisor-minus-one, so (psc+1)*(arr+1)
// lands within one prescaler step of ticks.
func splitTicks(ticks uint32, span uint64) (psc, arr uint32) {
	p := uint64(ticks-1) / span
	a := uint64(ticks)/(p+1) - 1
	return uint32(p), uint32(a)
}
