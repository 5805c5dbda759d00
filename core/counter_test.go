package core

import (
	"errors"
	"testing"
)

func newWideTimer(clk ClockConfig) (*CounterTimer, *mockRegs) {
	regs := newMockRegs(0xFFFFFFFF)
	return NewCounterTimer(regs, clk, &mockBus{}), regs
}

func TestCounterReadout(t *testing.T) {
	drv, regs := newWideTimer(ClockConfig{PCLK: 8_000_000, PPRE: 1})

	regs.counter = 42
	if got := drv.Counter(); got != 42 {
		t.Errorf("Counter() = %d, want 42", got)
	}
	// Readout has no side effects
	if got := drv.Counter(); got != 42 {
		t.Errorf("second Counter() = %d, want 42", got)
	}
}

func TestStartThenCounterReadsZero(t *testing.T) {
	drv, regs := newWideTimer(ClockConfig{PCLK: 8_000_000, PPRE: 1})

	if err := drv.Configure(1000); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	regs.counter = 777
	drv.Start()

	if got := drv.Counter(); got != 0 {
		t.Errorf("Counter() right after Start = %d, want 0", got)
	}
}

func TestStopKeepsDriverUsable(t *testing.T) {
	drv, regs := newWideTimer(ClockConfig{PCLK: 8_000_000, PPRE: 1})

	if err := drv.Configure(1000); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	drv.Start()
	regs.counter = 500

	drv.Stop()
	if regs.enabled {
		t.Error("counter still enabled after Stop")
	}
	if regs.counter != 0 {
		t.Errorf("counter = %d after Stop, want 0", regs.counter)
	}

	// Unlike Free, the driver survives a Stop
	drv.Start()
	if !regs.enabled {
		t.Error("Start after Stop did not re-enable the counter")
	}
}

func TestReconfigUsesFullReloadWidth(t *testing.T) {
	// 36 MHz bus with a divided prescaler: the timer ticks at 72 MHz.
	drv, regs := newWideTimer(ClockConfig{PCLK: 36_000_000, PPRE: 2})

	if err := drv.Configure(1); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	// The shared path splits 72M ticks across the 16-bit prescaler.
	if regs.psc == 0 {
		t.Fatalf("Configure used no prescaler for 72M ticks")
	}

	if err := drv.Reconfig(); err != nil {
		t.Fatalf("Reconfig failed: %v", err)
	}
	if regs.psc != 0 {
		t.Errorf("Reconfig psc = %d, want 0 for a 32-bit reload field", regs.psc)
	}
	if regs.arr != 71_999_999 {
		t.Errorf("Reconfig arr = %d, want 71999999", regs.arr)
	}
}

func TestReconfigNarrowFieldMatchesConfigure(t *testing.T) {
	// With a 16-bit reload field the width-aware split degenerates to the
	// shared Configure strategy.
	regs := newMockRegs(0xFFFF)
	drv := NewCounterTimer(regs, ClockConfig{PCLK: 8_000_000, PPRE: 1}, &mockBus{})

	if err := drv.Configure(1000); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	wantPSC, wantARR := regs.psc, regs.arr

	// Scribble over the divisors, then reconfigure
	regs.psc, regs.arr = 0xAAAA, 0xBBBB
	if err := drv.Reconfig(); err != nil {
		t.Fatalf("Reconfig failed: %v", err)
	}
	if regs.psc != wantPSC || regs.arr != wantARR {
		t.Errorf("Reconfig wrote (%d, %d), Configure wrote (%d, %d)",
			regs.psc, regs.arr, wantPSC, wantARR)
	}
}

func TestReconfigBeforeConfigure(t *testing.T) {
	drv, _ := newWideTimer(ClockConfig{PCLK: 8_000_000, PPRE: 1})

	if err := drv.Reconfig(); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Reconfig on unconfigured driver = %v, want ErrInvalidFrequency", err)
	}
}

func TestCounterTimerFreeReturnsWideHandle(t *testing.T) {
	drv, regs := newWideTimer(ClockConfig{PCLK: 8_000_000, PPRE: 1})
	drv.Start()

	got := drv.Free()
	if got != CounterRegs(regs) {
		t.Error("Free did not return the bound register surface")
	}
	if regs.enabled {
		t.Error("counter still enabled after Free")
	}

	defer func() {
		if recover() == nil {
			t.Error("Counter after Free did not panic")
		}
	}()
	_ = drv.Counter()
}
