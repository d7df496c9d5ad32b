package builtins

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"ore/eval"
	"ore/heap"
	"ore/parser"
	"ore/types"
)

// runPrelude evaluates a program with the full prelude installed
func runPrelude(t *testing.T, source string) (types.Result, *eval.Evaluator, *bytes.Buffer) {
	t.Helper()
	prog, err := parser.NewParser(source).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h := heap.New(0)
	e := eval.NewEvaluator(h)
	var out bytes.Buffer
	e.SetOutput(&out)
	NewRegistry().InstallInto(h, e.Global())
	return e.RunProgram(prog, types.NewContext()), e, &out
}

func preludeValue(t *testing.T, source string) string {
	t.Helper()
	result, e, _ := runPrelude(t, source)
	if !result.IsNormal() {
		t.Fatalf("expected normal result, got %s (%s)", result.Flow, e.Heap().Inspect(result.Val))
	}
	return e.Heap().Inspect(result.Val)
}

func TestRegistryContract(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Get("print"); !ok {
		t.Fatal("print should be registered")
	}
	if _, ok := r.Get("no_such_builtin"); ok {
		t.Fatal("unknown builtins should not resolve")
	}

	// Later registrations shadow earlier ones without duplicating names
	before := len(r.Names())
	r.Register("print", func(ip heap.Interp, ctx *types.Context, args []types.Value) types.Result {
		return types.Ok(types.NewNil())
	})
	if len(r.Names()) != before {
		t.Error("re-registering should not add a name")
	}
}

func TestPrintBuiltins(t *testing.T) {
	_, _, out := runPrelude(t, `print("a", 1, [2]); println(); println("next")`)
	want := "a 1 [2]\nnext\n"
	if out.String() != want {
		t.Errorf("expected %q, got %q", want, out.String())
	}
}

func TestCoreBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`return typeof(nil)`, `"nil"`},
		{`return typeof(true)`, `"boolean"`},
		{`return typeof(1)`, `"number"`},
		{`return typeof("s")`, `"string"`},
		{`return typeof([])`, `"array"`},
		{`return typeof({})`, `"object"`},
		{`return typeof(fn() nil end)`, `"function"`},
		{`return typeof(print)`, `"native"`},
		{`return str(42) .. str(nil)`, `"42nil"`},
		{`return num("3.5") * 2`, "7"},
		{`return num(8)`, "8"},
		{`return len("abcd") + len([1, 2])`, "6"},
		{`o = {b: 1, a: 2}; return keys(o)`, `["b", "a"]`},
		{`o = {k: nil}; return [contains(o, "k"), contains(o, "x")]`, "[true, false]"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := preludeValue(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestNumRejectsGarbage(t *testing.T) {
	result, e, _ := runPrelude(t, `return num("not a number")`)
	if !result.IsThrow() {
		t.Fatal("num should throw on garbage")
	}
	obj, _ := e.Heap().DerefKind(result.Val, heap.KindException)
	if obj.ExceptionKind() != types.ExcType {
		t.Errorf("expected TypeError, got %s", obj.ExceptionKind())
	}
}

func TestThrowErrorBuiltin(t *testing.T) {
	src := `try throw_error("custom failure") catch e do return e.kind .. ":" .. e.message end`
	if got := preludeValue(t, src); got != `"Error:custom failure"` {
		t.Errorf("throw_error: got %s", got)
	}
}

func TestStringBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`return upcase("mix") .. downcase("MIX")`, `"MIXmix"`},
		{`return trim("  x  ")`, `"x"`},
		{`return index("haystack", "stack")`, "3"},
		{`return index("abc", "z")`, "-1"},
		{`return explode("a,b,c", ",")`, `["a", "b", "c"]`},
		{`return implode([1, "b", nil], "-")`, `"1-b-nil"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := preludeValue(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestMathBuiltins(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`return abs(-4)`, "4"},
		{`return floor(2.9) .. "/" .. ceil(2.1)`, `"2/3"`},
		{`return round(2.5)`, "3"},
		{`return sqrt(81)`, "9"},
		{`return min(3, 1, 2)`, "1"},
		{`return max(3, 1, 2)`, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := preludeValue(t, tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestHashBuiltins(t *testing.T) {
	sum := sha256.Sum256([]byte("ore"))
	want := `"` + hex.EncodeToString(sum[:]) + `"`
	if got := preludeValue(t, `return sha256("ore")`); got != want {
		t.Errorf("sha256: expected %s, got %s", want, got)
	}

	got := preludeValue(t, `return blake2b("ore")`)
	if len(got) != 66 { // 64 hex chars plus quotes
		t.Errorf("blake2b digest length off: %s", got)
	}

	first := preludeValue(t, `return argon2("secret", "salt9999")`)
	second := preludeValue(t, `return argon2("secret", "salt9999")`)
	if first != second || len(first) != 66 {
		t.Errorf("argon2 should be deterministic 32-byte hex, got %s / %s", first, second)
	}

	if got := preludeValue(t, `return crypt_check("$6$garbage", "pw")`); got != "false" {
		t.Errorf("crypt_check with a bad hash should be false, got %s", got)
	}
}

func TestGCBuiltins(t *testing.T) {
	src := `
		for i = 0, i < 50, i = i + 1 do junk = "j" .. i end;
		swept = collect_garbage();
		s = heap_stats();
		return [swept > 0, s.collections >= 1, s.live > 0]`
	if got := preludeValue(t, src); got != "[true, true, true]" {
		t.Errorf("gc builtins: got %s", got)
	}
}

func TestLoadLibraryMissingFile(t *testing.T) {
	result, e, _ := runPrelude(t, `load_library("/nonexistent/lib.so")`)
	if !result.IsThrow() {
		t.Fatal("loading a missing library should throw")
	}
	obj, _ := e.Heap().DerefKind(result.Val, heap.KindException)
	if obj.ExceptionKind() != types.ExcFileNotFound {
		t.Errorf("expected FileNotFound, got %s", obj.ExceptionKind())
	}
}

func TestBuiltinsAreOrdinaryValues(t *testing.T) {
	src := `p = upcase; return p("x")`
	if got := preludeValue(t, src); got != `"X"` {
		t.Errorf("builtins should be first-class, got %s", got)
	}
	if !strings.Contains(preludeValue(t, `return str(print)`), "native") {
		t.Error("display of a native should say so")
	}
}
