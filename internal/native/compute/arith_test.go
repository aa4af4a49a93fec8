package compute

import "testing"

func TestEvalArith(t *testing.T) {
	cases := []struct {
		expr string
		want float64
	}{
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"-5 + 3", -2},
		{"1.5 * 2", 3},
	}
	for _, c := range cases {
		got, err := evalArith(c.expr)
		if err != nil {
			t.Fatalf("evalArith(%q) error: %v", c.expr, err)
		}
		if got != c.want {
			t.Errorf("evalArith(%q) = %v, want %v", c.expr, got, c.want)
		}
	}
}

func TestEvalArithErrors(t *testing.T) {
	cases := []string{"", "1 / 0", "(1 + 2", "abc", "1 + "}
	for _, expr := range cases {
		if _, err := evalArith(expr); err == nil {
			t.Errorf("evalArith(%q) expected an error", expr)
		}
	}
}

func TestEvalArithRejectsNonArithmetic(t *testing.T) {
	// The restricted grammar must never fall back to a general evaluator:
	// anything beyond numbers/+-*//parens is a parse error, not code.
	if _, err := evalArith("system(\"rm -rf /\")"); err == nil {
		t.Fatalf("expected parser to reject non-arithmetic input")
	}
}
