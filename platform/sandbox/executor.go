package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"titanic_chat_backend/platform/chart"
	"titanic_chat_backend/platform/dataset"
)

// Executor runs LLM-generated analysis snippets in a yaegi interpreter.
// The code sees the manifest only through the virtual `dataset` package and
// draws only through the virtual `chart` package; the import allowlist keeps
// os, net and exec unreachable. A fresh interpreter is built per execution
// so no state leaks between queries.
type Executor struct {
	table   *dataset.Table
	timeout time.Duration
	allowed map[string]bool
}

func NewExecutor(table *dataset.Table, timeout time.Duration) *Executor {
	return &Executor{
		table:   table,
		timeout: timeout,
		allowed: map[string]bool{
			"fmt":     true,
			"strings": true,
			"strconv": true,
			"math":    true,
			"sort":    true,
			"errors":  true,

			// virtual packages bound below
			"dataset": true,
			"chart":   true,
		},
	}
}

// Execute evaluates code that must define `func Run() (string, error)`.
// It returns Run's result plus anything the code printed. Charts drawn
// during the run land in rec.
func (e *Executor) Execute(ctx context.Context, code string, rec *chart.Recorder) (string, error) {
	src := wrapCode(code)
	if err := e.checkImports(src); err != nil {
		return "", err
	}

	if rec == nil {
		rec = chart.NewRecorder()
	}

	var stdout bytes.Buffer
	i := interp.New(interp.Options{Stdout: &stdout, Stderr: &stdout})
	if err := i.Use(stdlib.Symbols); err != nil {
		return "", fmt.Errorf("load stdlib symbols: %w", err)
	}
	if err := i.Use(e.exports(rec)); err != nil {
		return "", fmt.Errorf("bind dataset symbols: %w", err)
	}

	if _, err := i.Eval(src); err != nil {
		return "", fmt.Errorf("code evaluation failed: %w", err)
	}

	v, err := i.Eval("main.Run")
	if err != nil {
		return "", fmt.Errorf("Run function not found: %w", err)
	}
	run, ok := v.Interface().(func() (string, error))
	if !ok {
		return "", fmt.Errorf("Run has wrong signature, want func() (string, error)")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resultCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		res, err := run()
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- res
	}()

	select {
	case res := <-resultCh:
		return combineOutput(stdout.String(), res), nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("code execution timed out: %w", ctx.Err())
	}
}

// checkImports parses the snippet, which both validates syntax and lets us
// reject anything outside the allowlist before evaluation.
func (e *Executor) checkImports(src string) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "snippet.go", src, 0)
	if err != nil {
		return fmt.Errorf("invalid Go code: %w", err)
	}

	var forbidden []string
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return fmt.Errorf("invalid import path %s", imp.Path.Value)
		}
		if !e.allowed[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %s (allowed: %s)",
			strings.Join(forbidden, ", "), strings.Join(e.allowedList(), ", "))
	}
	return nil
}

func (e *Executor) exports(rec *chart.Recorder) interp.Exports {
	t := e.table
	return interp.Exports{
		"dataset/dataset": {
			"NumRows": reflect.ValueOf(t.NumRows),
			"Columns": reflect.ValueOf(t.ColumnNames),
			"Ints":    reflect.ValueOf(t.Ints),
			"Floats":  reflect.ValueOf(t.Floats),
			"Strings": reflect.ValueOf(t.Strings),
		},
		"chart/chart": {
			"Bar":  reflect.ValueOf(rec.Bar),
			"Hist": reflect.ValueOf(rec.Hist),
			"Line": reflect.ValueOf(rec.Line),
		},
	}
}

func (e *Executor) allowedList() []string {
	pkgs := make([]string, 0, len(e.allowed))
	for pkg := range e.allowed {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}

func wrapCode(code string) string {
	if strings.Contains(code, "package main") {
		return code
	}
	return "package main\n\n" + code
}

func combineOutput(printed, returned string) string {
	printed = strings.TrimSpace(printed)
	returned = strings.TrimSpace(returned)
	switch {
	case printed == "":
		return returned
	case returned == "":
		return printed
	default:
		return printed + "\n" + returned
	}
}
