package calc

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{"single number", "42", 42},
		{"decimal", "3.5", 3.5},
		{"addition", "2 + 3", 5},
		{"subtraction", "10 - 4", 6},
		{"multiplication", "6 * 7", 42},
		{"division", "9 / 2", 4.5},
		{"precedence", "2 + 3 * 4", 14},
		{"left associative division", "100 / 10 / 2", 5},
		{"left associative subtraction", "10 - 3 - 2", 5},
		{"parentheses", "(2 + 3) * 4", 20},
		{"nested parentheses", "((1 + 2) * (3 + 4))", 21},
		{"unary minus", "-5 + 3", -2},
		{"unary minus in parens", "2 * (-3)", -6},
		{"double unary", "--5", 5},
		{"unary plus", "+7", 7},
		{"whitespace heavy", "  1   +   2  ", 3},
		{"no whitespace", "1+2*3-4/2", 5},
		{"power", "2**3", 8},
		{"power right associative", "2 ** 3 ** 2", 512},
		{"power binds tighter than unary minus", "-2**2", -4},
		{"power with negative exponent", "2**-3", 0.125},
		{"power binds tighter than multiply", "2 * 3 ** 2", 18},
		{"floor division", "5 // 2", 2},
		{"floor division rounds down", "-7 // 2", -4},
		{"floor division of decimals", "7.0 // 2", 3},
		{"floor division left associative", "100 // 7 // 2", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.expr, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvaluate_InvalidCharacters(t *testing.T) {
	exprs := []string{
		"2 + x",
		"import os",
		"1 ** 2; exit()",
		"2^3",
		"1,000 + 1",
	}

	for _, expr := range exprs {
		if _, err := Evaluate(expr); !errors.Is(err, ErrInvalidCharacters) {
			t.Errorf("Evaluate(%q) error = %v, want ErrInvalidCharacters", expr, err)
		}
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	for _, expr := range []string{"1 / 0", "5 / (2 - 2)", "1 + 2 / 0", "1 // 0"} {
		if _, err := Evaluate(expr); !errors.Is(err, ErrDivisionByZero) {
			t.Errorf("Evaluate(%q) error = %v, want ErrDivisionByZero", expr, err)
		}
	}
}

func TestEvaluate_SyntaxErrors(t *testing.T) {
	exprs := []string{
		"",
		"1 +",
		"* 2",
		"(1 + 2",
		"1 + 2)",
		"1 2",
		"()",
		"1..2",
		".",
	}

	for _, expr := range exprs {
		_, err := Evaluate(expr)
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("Evaluate(%q) error = %v, want *SyntaxError", expr, err)
		}
	}
}
