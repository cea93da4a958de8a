package form

import "testing"

func TestRequiredString(t *testing.T) {
	v, err := RequiredString("Message name", "  EngineData  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "EngineData" {
		t.Errorf("expected trimmed value, got %q", v)
	}

	_, err = RequiredString("Message name", "   ")
	if err == nil {
		t.Fatal("expected error for blank input")
	}
	if err.Error() != "Message name is required" {
		t.Errorf("unexpected error text: %s", err.Error())
	}
}

func TestUint(t *testing.T) {
	n, err := Uint("Frame ID", "500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 500 {
		t.Errorf("expected 500, got %d", n)
	}

	if _, err := Uint("Frame ID", ""); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Uint("Frame ID", "abc"); err == nil {
		t.Error("expected error for non-numeric input")
	}
	if _, err := Uint("Frame ID", "-5"); err == nil {
		t.Error("expected error for negative input")
	}
}

func TestInt(t *testing.T) {
	n, err := Int("Start bit", "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0, got %d", n)
	}

	if _, err := Int("Start bit", "1.5"); err == nil {
		t.Error("expected error for fractional input")
	}
}

func TestFloatFallback(t *testing.T) {
	f, err := Float("Factor", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != 1 {
		t.Errorf("expected fallback 1, got %v", f)
	}

	f, err = Float("Factor", "0.25", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f != 0.25 {
		t.Errorf("expected 0.25, got %v", f)
	}

	if _, err := Float("Factor", "x", 1); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestIntOr(t *testing.T) {
	n, err := IntOr("Data length", "", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 8 {
		t.Errorf("expected fallback 8, got %d", n)
	}

	n, err = IntOr("Data length", "4", 8)
	if err != nil || n != 4 {
		t.Errorf("expected 4, got %d (err %v)", n, err)
	}
}
