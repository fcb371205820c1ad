package engine

import (
	"context"
	"testing"
	"time"
)

func TestMockTimeProvider(t *testing.T) {
	mock := NewMockTimeProvider(testStart)

	if now := mock.Now(); !now.Equal(testStart) {
		t.Errorf("Expected initial time to be %v, got %v", testStart, now)
	}

	newTime := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.SetTime(newTime)
	mock.Advance(time.Hour)
	if now := mock.Now(); !now.Equal(newTime.Add(time.Hour)) {
		t.Errorf("Expected time to be %v after Advance, got %v", newTime.Add(time.Hour), now)
	}

	mock.Sleep(context.Background(), 30*time.Minute)
	mock.Sleep(context.Background(), -time.Second)
	if now := mock.Now(); !now.Equal(newTime.Add(90 * time.Minute)) {
		t.Errorf("Sleep must advance time, got %v", now)
	}
	if sleeps := mock.Sleeps(); len(sleeps) != 2 || sleeps[0] != 30*time.Minute {
		t.Errorf("unexpected recorded sleeps %v", sleeps)
	}
}

func TestTimeProviderSleepHonoursContext(t *testing.T) {
	p := NewTimeProvider()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := p.Now()
	p.Sleep(ctx, time.Hour)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled sleep blocked for %v", elapsed)
	}

	start = p.Now()
	p.Sleep(context.Background(), 10*time.Millisecond)
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms sleep, got %v", elapsed)
	}
}

func TestPacerKeepsFixedPeriod(t *testing.T) {
	clock := NewMockTimeProvider(testStart)
	p := NewPacer(clock, 100*time.Millisecond)
	p.Reset()

	for i := 0; i < 5; i++ {
		clock.Advance(20 * time.Millisecond)
		slept, late := p.Wait(context.Background())
		if late || slept != 80*time.Millisecond {
			t.Fatalf("tick %d: slept %v late=%v, want 80ms on time", i, slept, late)
		}
	}
	if got := clock.Now().Sub(testStart); got != 500*time.Millisecond {
		t.Errorf("five ticks took %v, want 500ms", got)
	}
}

func TestPacerCatchesUpAfterSmallOverrun(t *testing.T) {
	clock := NewMockTimeProvider(testStart)
	p := NewPacer(clock, 100*time.Millisecond)
	p.Reset()

	clock.Advance(160 * time.Millisecond)
	if slept, late := p.Wait(context.Background()); !late || slept != 0 {
		t.Fatalf("overrun tick slept %v late=%v", slept, late)
	}

	// Deadline stays on the original grid at 200ms
	if slept, _ := p.Wait(context.Background()); slept != 40*time.Millisecond {
		t.Errorf("catch-up sleep = %v, want 40ms", slept)
	}
}

func TestPacerReanchorsWhenFarBehind(t *testing.T) {
	clock := NewMockTimeProvider(testStart)
	p := NewPacer(clock, 100*time.Millisecond)
	p.Reset()

	clock.Advance(time.Second)
	if _, late := p.Wait(context.Background()); !late {
		t.Fatal("expected late tick")
	}
	if slept, late := p.Wait(context.Background()); late || slept != 100*time.Millisecond {
		t.Errorf("after re-anchor slept %v late=%v, want a full period", slept, late)
	}
	if p.Late() != 1 {
		t.Errorf("late count = %d", p.Late())
	}
}
