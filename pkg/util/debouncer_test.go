package util

import (
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	t.Run("fires after quiet period", func(t *testing.T) {
		d := NewDebouncer(50 * time.Millisecond)
		defer d.Stop()

		select {
		case <-d.C():
		case <-time.After(200 * time.Millisecond):
			t.Fatal("debouncer did not fire within expected time")
		}
	})

	t.Run("reset delays firing", func(t *testing.T) {
		d := NewDebouncer(60 * time.Millisecond)
		defer d.Stop()

		for i := 0; i < 4; i++ {
			time.Sleep(20 * time.Millisecond)
			d.Reset()
			select {
			case <-d.C():
				t.Fatal("debouncer fired while being reset")
			default:
			}
		}

		select {
		case <-d.C():
		case <-time.After(200 * time.Millisecond):
			t.Fatal("debouncer did not fire after resets stopped")
		}
	})

	t.Run("stop prevents firing", func(t *testing.T) {
		d := NewDebouncer(50 * time.Millisecond)
		d.Stop()
		d.Stop() // repeated stop is fine
		d.Reset()

		select {
		case <-d.C():
			t.Fatal("debouncer fired after stop")
		case <-time.After(120 * time.Millisecond):
		}
	})
}
