package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/chazu/patchboard/pkg/catalog"
)

func newTestEngine() *Engine {
	return NewEngine(catalog.Default())
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := newTestEngine()

	rev, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rev == nil {
		t.Fatal("expected non-nil revision")
	}
	if rev.NodeCount() != 0 {
		t.Errorf("expected empty document, got %d nodes", rev.NodeCount())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := newTestEngine()

	rev, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rev == nil || rev.NodeCount() != 0 {
		t.Fatal("expected empty document")
	}
}

func TestEvaluatePlainExpression(t *testing.T) {
	eng := newTestEngine()

	// (+ 1 2) is valid Lisp that builds nothing.
	rev, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if rev == nil || rev.NodeCount() != 0 {
		t.Fatal("expected empty document")
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := newTestEngine()

	rev, evalErrs, err := eng.Evaluate("(node \"process\"")
	if err != nil {
		t.Fatalf("parse errors must not be fatal: %v", err)
	}
	if rev != nil {
		t.Error("expected nil revision on parse failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := newTestEngine()

	rev, evalErrs, err := eng.Evaluate(`(node "no-such-type")`)
	if err != nil {
		t.Fatalf("runtime errors must not be fatal: %v", err)
	}
	if rev != nil {
		t.Error("expected nil revision on runtime failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	found := false
	for _, e := range evalErrs {
		if strings.Contains(e.Message, "no-such-type") {
			found = true
		}
	}
	if !found {
		t.Errorf("error should name the unknown type, got %v", evalErrs)
	}
}

func TestEvaluateIsolatedAcrossCalls(t *testing.T) {
	eng := newTestEngine()

	rev1, _, err := eng.Evaluate(`(node "process" :id "a")`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	rev2, _, err := eng.Evaluate(`(node "process" :id "b")`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if rev1.NodeCount() != 1 || rev2.NodeCount() != 1 {
		t.Fatal("each evaluation must start from an empty document")
	}
	if rev2.Node("a") != nil {
		t.Error("state leaked between evaluations")
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := newTestEngine()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Fatal errors are acceptable here: a concurrent call may be
			// superseded by a newer generation. Panics are not.
			_, _, _ = eng.Evaluate(`(node "process" :id "n")`)
		}()
	}
	wg.Wait()
}

func TestEvaluateResultFindings(t *testing.T) {
	eng := newTestEngine()

	res, err := eng.EvaluateResult(`
		(def a (node "process" :id "a"))
		(def b (node "process" :id "b"))
		(wire a "out" b "in")
		(wire a "out" b "in")
	`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(res.Errors) > 0 {
		t.Fatalf("unexpected eval errors: %v", res.Errors)
	}
	if res.Revision.ConnectionCount() != 2 {
		t.Fatalf("expected 2 connections, got %d", res.Revision.ConnectionCount())
	}
	if len(res.Findings) == 0 {
		t.Fatal("expected a duplicate-connection finding")
	}
}

func TestParseZygomysErrorLineExtraction(t *testing.T) {
	cases := []struct {
		name     string
		msg      string
		wantLine int
	}{
		{"long form", "Error on line 3: unexpected token", 3},
		{"short form", "line 7: bad form", 7},
		{"no line info", "something went wrong", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tc.msg))
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d", len(errs))
			}
			if errs[0].Line != tc.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tc.wantLine)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
