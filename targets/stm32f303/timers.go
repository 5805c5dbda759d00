//go:build stm32f303

// STM32F303 register surfaces for the core timer driver.
//
// Five APB1 timer instances are exposed: TIM2 (32-bit counter/reload) and
// TIM3, TIM4, TIM6, TIM7 (16-bit). Register offsets and RCC bit positions
// follow RM0316.
package stm32f303

import (
	"runtime/volatile"
	"unsafe"

	"gotick/core"
)

// APB1 peripheral base addresses.
const (
	tim2Base = 0x40000000
	tim3Base = 0x40000400
	tim4Base = 0x40000800
	tim6Base = 0x40001000
	tim7Base = 0x40001400

	rccBase     = 0x40021000
	rccAPB1RSTR = rccBase + 0x10
	rccAPB1ENR  = rccBase + 0x1C
)

// RCC APB1 enable/reset bit positions. The enable and reset registers use
// the same bit layout, so one position serves both.
const (
	tim2Bit = 0
	tim3Bit = 1
	tim4Bit = 2
	tim6Bit = 4
	tim7Bit = 5
)

// timRegs is the register block shared by the general-purpose and basic
// timers. Fields the driver never touches are still laid out so offsets
// line up with the silicon.
type timRegs struct {
	CR1   volatile.Register32 // 0x00 control 1 (CEN)
	CR2   volatile.Register32 // 0x04 control 2 (MMS)
	SMCR  volatile.Register32 // 0x08
	DIER  volatile.Register32 // 0x0C interrupt enable (UIE)
	SR    volatile.Register32 // 0x10 status (UIF)
	EGR   volatile.Register32 // 0x14
	CCMR1 volatile.Register32 // 0x18
	CCMR2 volatile.Register32 // 0x1C
	CCER  volatile.Register32 // 0x20
	CNT   volatile.Register32 // 0x24 counter
	PSC   volatile.Register32 // 0x28 prescaler
	ARR   volatile.Register32 // 0x2C auto-reload
}

const (
	cr1CEN  = 1 << 0
	dierUIE = 1 << 0
	srUIF   = 1 << 0

	cr2MMSPos  = 4
	cr2MMSMask = 0x7 << cr2MMSPos
)

// TIM is one memory-mapped timer instance. It implements core.CounterRegs;
// the 16-bit instances are handed out as core.TimerRegs only.
type TIM struct {
	regs      *timRegs
	reloadMax uint32
}

func (t *TIM) SetCounterEnable(on bool) {
	if on {
		t.regs.CR1.SetBits(cr1CEN)
	} else {
		t.regs.CR1.ClearBits(cr1CEN)
	}
}

func (t *TIM) ResetCounter() { t.regs.CNT.Set(0) }

func (t *TIM) Counter() uint32 { return t.regs.CNT.Get() }

func (t *TIM) UpdatePending() bool { return t.regs.SR.HasBits(srUIF) }

func (t *TIM) ClearUpdate() { t.regs.SR.ClearBits(srUIF) }

func (t *TIM) SetUpdateInterrupt(on bool) {
	if on {
		t.regs.DIER.SetBits(dierUIE)
	} else {
		t.regs.DIER.ClearBits(dierUIE)
	}
}

func (t *TIM) SetMasterMode(mode core.MasterMode) {
	t.regs.CR2.ReplaceBits(uint32(mode)<<cr2MMSPos, cr2MMSMask, 0)
}

func (t *TIM) WritePrescaler(psc uint16) { t.regs.PSC.Set(uint32(psc)) }

func (t *TIM) WriteReload(arr uint32) { t.regs.ARR.Set(arr) }

func (t *TIM) ReloadMax() uint32 { return t.reloadMax }

// apb1Port is the clock gate and reset line of one APB1 peripheral.
type apb1Port struct {
	bit uint32
}

var (
	apb1enr  = (*volatile.Register32)(unsafe.Pointer(uintptr(rccAPB1ENR)))
	apb1rstr = (*volatile.Register32)(unsafe.Pointer(uintptr(rccAPB1RSTR)))
)

func (p apb1Port) EnableClock() { apb1enr.SetBits(1 << p.bit) }

func (p apb1Port) AssertReset() { apb1rstr.SetBits(1 << p.bit) }

func (p apb1Port) DeassertReset() { apb1rstr.ClearBits(1 << p.bit) }

// DefaultClocks describes the reset-state clock tree: the 8 MHz HSI feeding
// an undivided APB1. Board clock setup that reprograms the tree should
// build its own core.ClockConfig instead.
var DefaultClocks = core.ClockConfig{PCLK: 8_000_000, PPRE: 1}

var (
	tim2 = &TIM{regs: (*timRegs)(unsafe.Pointer(uintptr(tim2Base))), reloadMax: 0xFFFFFFFF}
	tim3 = &TIM{regs: (*timRegs)(unsafe.Pointer(uintptr(tim3Base))), reloadMax: 0xFFFF}
	tim4 = &TIM{regs: (*timRegs)(unsafe.Pointer(uintptr(tim4Base))), reloadMax: 0xFFFF}
	tim6 = &TIM{regs: (*timRegs)(unsafe.Pointer(uintptr(tim6Base))), reloadMax: 0xFFFF}
	tim7 = &TIM{regs: (*timRegs)(unsafe.Pointer(uintptr(tim7Base))), reloadMax: 0xFFFF}

	tim2Taken, tim3Taken, tim4Taken, tim6Taken, tim7Taken bool
)

// claim marks an instance as taken, panicking on a double take. Exclusive
// ownership then travels with the register handle: rebind the value
// returned by Free instead of taking again.
func claim(taken *bool, name string) {
	if *taken {
		panic("stm32f303: " + name + " already taken")
	}
	*taken = true
}

// TakeTIM2 claims the wide timer instance and its bus port.
func TakeTIM2() (core.CounterRegs, core.BusPort) {
	claim(&tim2Taken, "TIM2")
	return tim2, apb1Port{tim2Bit}
}

// TakeTIM3 claims TIM3 and its bus port.
func TakeTIM3() (core.TimerRegs, core.BusPort) {
	claim(&tim3Taken, "TIM3")
	return tim3, apb1Port{tim3Bit}
}

// TakeTIM4 claims TIM4 and its bus port.
func TakeTIM4() (core.TimerRegs, core.BusPort) {
	claim(&tim4Taken, "TIM4")
	return tim4, apb1Port{tim4Bit}
}

// TakeTIM6 claims TIM6 and its bus port.
func TakeTIM6() (core.TimerRegs, core.BusPort) {
	claim(&tim6Taken, "TIM6")
	return tim6, apb1Port{tim6Bit}
}

// TakeTIM7 claims TIM7 and its bus port.
func TakeTIM7() (core.TimerRegs, core.BusPort) {
	claim(&tim7Taken, "TIM7")
	return tim7, apb1Port{tim7Bit}
}
