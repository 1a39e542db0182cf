package lang

import "testing"

func TestName(t *testing.T) {
	if got := Name("es"); got != "Spanish" {
		t.Errorf("Name(es) = %q, want Spanish", got)
	}
	if got := Name("xx"); got != "xx" {
		t.Errorf("Name(xx) = %q, want the code back", got)
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("no codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	for _, code := range codes {
		if !Supported(code) {
			t.Errorf("Codes returned unsupported code %q", code)
		}
	}
}
