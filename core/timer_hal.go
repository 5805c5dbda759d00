package core

// MasterMode is the value programmed into a timer's master-mode-selection
// field (CR2.MMS on STM32 timers). It selects what the timer drives onto
// its trigger output.
type MasterMode uint8

const (
	// MasterModeReset puts the trigger output back into reset mode.
	MasterModeReset MasterMode = 0

	// MasterModeUpdate routes the update event to the trigger output.
	MasterModeUpdate MasterMode = 1

	// MasterModeUpdateAlt is the second update-flavored mode code. On the
	// timers this package drives it behaves the same as MasterModeUpdate;
	// see the Event docs in timer.go.
	MasterModeUpdateAlt MasterMode = 2
)

// TimerRegs is the abstract register surface of one hardware timer
// instance. Core code programs timers exclusively through this interface;
// target packages supply memory-mapped implementations per instance.
type TimerRegs interface {
	// SetCounterEnable sets or clears the counter-enable control bit.
	SetCounterEnable(on bool)

	// ResetCounter zeroes the live counter register.
	ResetCounter()

	// UpdatePending reports whether the update-event status flag is set.
	UpdatePending() bool

	// ClearUpdate acknowledges the update event by clearing the status flag.
	ClearUpdate()

	// SetUpdateInterrupt sets or clears the update-interrupt-enable bit.
	SetUpdateInterrupt(on bool)

	// SetMasterMode programs the master-mode-selection field.
	SetMasterMode(mode MasterMode)

	// WritePrescaler programs the 16-bit prescaler field. The hardware
	// divides its input clock by psc+1.
	WritePrescaler(psc uint16)

	// WriteReload programs the auto-reload field. The counter completes a
	// cycle every arr+1 prescaled ticks.
	WriteReload(arr uint32)

	// ReloadMax returns the largest value the auto-reload field can hold:
	// 0xFFFF for the 16-bit instances, 0xFFFFFFFF for the wide one.
	ReloadMax() uint32
}

// CounterRegs is a TimerRegs whose live counter can also be read back.
// Only the designated wide instance (TIM2 on the STM32F303) provides it.
type CounterRegs interface {
	TimerRegs

	// Counter returns the live counter register value.
	Counter() uint32
}

// BusPort is the peripheral-bus control surface for one peripheral: its
// clock gate and reset line on the shared bus (APB1 on the STM32F303).
// The driver touches it only during construction; no port is held across
// the driver's lifetime.
type BusPort interface {
	// EnableClock opens the peripheral's clock gate.
	EnableClock()

	// AssertReset drives the peripheral's reset line active.
	AssertReset()

	// DeassertReset releases the peripheral's reset line.
	DeassertReset()
}
