package gpio

import (
	"errors"
	"sync"
	"testing"
)

func newTestRegister(t *testing.T) *Register {
	t.Helper()
	r := NewRegister()
	pins := []PinConfig{
		{Number: 3, Kind: Analog, Direction: Output},
		{Number: 0, Kind: Analog, Direction: Input},
		{Number: 2, Kind: Digital, Direction: Input},
		{Number: 13, Kind: Digital, Direction: Output},
	}
	for _, p := range pins {
		if err := r.RegisterPin(p); err != nil {
			t.Fatalf("register pin %d: %v", p.Number, err)
		}
	}
	return r
}

func TestRegisterPinStartsAtZero(t *testing.T) {
	r := newTestRegister(t)

	v, err := r.ReadAnalogPin(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Errorf("analog value: got %d, want 0", v)
	}

	d, err := r.ReadDigitalPin(13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != Low {
		t.Errorf("digital value: got %v, want LOW", d)
	}
}

func TestRegisterPinTwice(t *testing.T) {
	r := newTestRegister(t)

	err := r.RegisterPin(PinConfig{Number: 3, Kind: Digital, Direction: Input})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("got %v, want ErrAlreadyRegistered", err)
	}
}

func TestUnregisterUnknownPin(t *testing.T) {
	r := NewRegister()
	if err := r.UnregisterPin(7); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("got %v, want ErrNotRegistered", err)
	}
}

func TestOperationsAfterUnregister(t *testing.T) {
	for _, pin := range []int{0, 2, 3, 13} {
		r := newTestRegister(t)
		if err := r.UnregisterPin(pin); err != nil {
			t.Fatalf("unregister %d: %v", pin, err)
		}

		ops := map[string]error{
			"WriteDigitalPin":    r.WriteDigitalPin(pin, High),
			"WriteAnalogPin":     r.WriteAnalogPin(pin, 1),
			"InjectAnalogValue":  r.InjectAnalogValue(pin, 1),
			"InjectDigitalValue": r.InjectDigitalValue(pin, High),
			"UnregisterPin":      r.UnregisterPin(pin),
		}
		_, ops["ReadDigitalPin"] = r.ReadDigitalPin(pin)
		_, ops["ReadAnalogPin"] = r.ReadAnalogPin(pin)

		for name, err := range ops {
			if !errors.Is(err, ErrNotRegistered) {
				t.Errorf("pin %d %s: got %v, want ErrNotRegistered", pin, name, err)
			}
		}
	}
}

func TestWriteAccessChecks(t *testing.T) {
	tests := []struct {
		name  string
		write func(r *Register) error
		want  error
	}{
		{"analog write on digital output", func(r *Register) error { return r.WriteAnalogPin(13, 10) }, ErrKindMismatch},
		{"digital write on analog output", func(r *Register) error { return r.WriteDigitalPin(3, High) }, ErrKindMismatch},
		{"digital write on digital input", func(r *Register) error { return r.WriteDigitalPin(2, High) }, ErrDirectionMismatch},
		{"analog write on analog input", func(r *Register) error { return r.WriteAnalogPin(0, 10) }, ErrDirectionMismatch},
		{"digital write on analog input", func(r *Register) error { return r.WriteDigitalPin(0, High) }, ErrDirectionMismatch},
		{"inject into analog output", func(r *Register) error { return r.InjectAnalogValue(3, 1) }, ErrDirectionMismatch},
		{"inject analog into digital input", func(r *Register) error { return r.InjectAnalogValue(2, 1) }, ErrKindMismatch},
		{"inject digital into digital output", func(r *Register) error { return r.InjectDigitalValue(13, High) }, ErrDirectionMismatch},
		{"inject digital into analog input", func(r *Register) error { return r.InjectDigitalValue(0, High) }, ErrKindMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegister(t)
			if err := tt.write(r); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadKindChecks(t *testing.T) {
	r := newTestRegister(t)

	if _, err := r.ReadDigitalPin(3); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("ReadDigitalPin on analog: got %v, want ErrKindMismatch", err)
	}
	if _, err := r.ReadAnalogPin(13); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("ReadAnalogPin on digital: got %v, want ErrKindMismatch", err)
	}

	// Direction is not checked on read.
	if _, err := r.ReadDigitalPin(2); err != nil {
		t.Errorf("ReadDigitalPin on input: %v", err)
	}
	if _, err := r.ReadDigitalPin(13); err != nil {
		t.Errorf("ReadDigitalPin on output: %v", err)
	}
	if _, err := r.ReadAnalogPin(0); err != nil {
		t.Errorf("ReadAnalogPin on input: %v", err)
	}
}

func TestInjectAnalogRoundTrip(t *testing.T) {
	r := newTestRegister(t)

	for _, v := range []uint8{0, 1, 127, 128, 254, 255} {
		if err := r.InjectAnalogValue(0, v); err != nil {
			t.Fatalf("inject %d: %v", v, err)
		}
		got, err := r.ReadAnalogPin(0)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != v {
			t.Errorf("round trip: got %d, want %d", got, v)
		}
	}
}

func TestInjectDoesNotNotify(t *testing.T) {
	r := newTestRegister(t)

	calls := 0
	r.SetWriteAnalogCallback(func(int, uint8) { calls++ })
	r.SetWriteDigitalCallback(func(int, DigitalValue) { calls++ })

	r.InjectAnalogValue(0, 200)
	r.InjectDigitalValue(2, High)

	if calls != 0 {
		t.Errorf("expected no callbacks for injection, got %d", calls)
	}

	d, _ := r.ReadDigitalPin(2)
	if d != High {
		t.Errorf("injected digital: got %v, want HIGH", d)
	}
}

func TestWriteInvokesCallback(t *testing.T) {
	r := newTestRegister(t)

	type call struct {
		pin   int
		value int
	}
	var analog, digital []call
	r.SetWriteAnalogCallback(func(pin int, v uint8) { analog = append(analog, call{pin, int(v)}) })
	r.SetWriteDigitalCallback(func(pin int, v DigitalValue) { digital = append(digital, call{pin, int(v)}) })

	if err := r.WriteAnalogPin(3, 128); err != nil {
		t.Fatalf("write analog: %v", err)
	}
	if err := r.WriteDigitalPin(13, High); err != nil {
		t.Fatalf("write digital: %v", err)
	}

	if len(analog) != 1 || analog[0] != (call{3, 128}) {
		t.Errorf("analog callbacks: got %+v", analog)
	}
	if len(digital) != 1 || digital[0] != (call{13, 1}) {
		t.Errorf("digital callbacks: got %+v", digital)
	}

	v, _ := r.ReadAnalogPin(3)
	if v != 128 {
		t.Errorf("stored analog: got %d, want 128", v)
	}
}

func TestFailedWriteDoesNotNotify(t *testing.T) {
	r := newTestRegister(t)

	calls := 0
	r.SetWriteAnalogCallback(func(int, uint8) { calls++ })

	r.WriteAnalogPin(13, 5)
	r.WriteAnalogPin(99, 5)

	if calls != 0 {
		t.Errorf("expected no callbacks for failed writes, got %d", calls)
	}
}

func TestCallbackReplacedNotAppended(t *testing.T) {
	r := newTestRegister(t)

	first, second := 0, 0
	r.SetWriteAnalogCallback(func(int, uint8) { first++ })
	r.SetWriteAnalogCallback(func(int, uint8) { second++ })
	r.WriteAnalogPin(3, 1)

	if first != 0 || second != 1 {
		t.Errorf("got first=%d second=%d, want 0 and 1", first, second)
	}

	r.SetWriteAnalogCallback(nil)
	r.WriteAnalogPin(3, 2)
	if second != 1 {
		t.Errorf("nil callback should disable notification, second=%d", second)
	}
}

func TestCallbackMayReenterRegister(t *testing.T) {
	r := newTestRegister(t)

	var seen uint8
	r.SetWriteAnalogCallback(func(pin int, _ uint8) {
		// Would deadlock if the register lock were still held.
		seen, _ = r.ReadAnalogPin(pin)
	})

	r.WriteAnalogPin(3, 77)
	if seen != 77 {
		t.Errorf("callback read: got %d, want 77", seen)
	}
}

func TestPinsSortedSnapshot(t *testing.T) {
	r := newTestRegister(t)
	r.WriteDigitalPin(13, High)

	pins := r.Pins()
	if len(pins) != 4 {
		t.Fatalf("expected 4 pins, got %d", len(pins))
	}
	want := []int{0, 2, 3, 13}
	for i, p := range pins {
		if p.Number != want[i] {
			t.Errorf("pins[%d]: got %d, want %d", i, p.Number, want[i])
		}
	}
	if pins[3].Value != 1 || pins[3].Kind != Digital || pins[3].Direction != Output {
		t.Errorf("pin 13: got %+v", pins[3])
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := newTestRegister(t)
	r.SetWriteAnalogCallback(func(int, uint8) {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				r.WriteAnalogPin(3, uint8(j))
				r.ReadAnalogPin(3)
				r.InjectAnalogValue(0, uint8(n))
				r.Pins()
			}
		}(i)
	}
	wg.Wait()
}

func TestStrings(t *testing.T) {
	if Digital.String() != "digital" || Analog.String() != "analog" {
		t.Error("unexpected Kind strings")
	}
	if Input.String() != "input" || Output.String() != "output" {
		t.Error("unexpected Direction strings")
	}
	if High.String() != "HIGH" || Low.String() != "LOW" {
		t.Error("unexpected DigitalValue strings")
	}
}
