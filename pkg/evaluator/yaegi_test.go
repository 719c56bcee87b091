package evaluator

import (
	"context"
	"strings"
	"testing"
	"time"
)

func defaultWhitelist() []string {
	return []string{"strings", "strconv", "fmt", "encoding/json"}
}

func TestEvaluateRunsInitAndPopulatesExports(t *testing.T) {
	source := `
package handler

import "github.com/nextlite/nextlite/pkg/evaluator"

func Init(ctx *evaluator.Context) {
	ctx.Exports["GET"] = func(req *evaluator.Request) *evaluator.Response {
		return evaluator.JSON(200, []byte("{\"ok\":true}"))
	}
}
`
	ev := NewYaegiEvaluator(defaultWhitelist(), time.Second)
	modCtx := NewContext(nil, map[string]string{})

	if err := ev.Evaluate(context.Background(), source, modCtx); err != nil {
		t.Fatal(err)
	}

	fn, ok := modCtx.Exports["GET"].(func(*Request) *Response)
	if !ok {
		t.Fatalf("GET export missing or wrong type: %v", modCtx.Exports["GET"])
	}
	resp := fn(&Request{Method: "GET"})
	if resp.Status != 200 {
		t.Fatalf("expected status 200, got %d", resp.Status)
	}
}

func TestEvaluateRejectsDisallowedImport(t *testing.T) {
	source := `
package handler

import (
	"os/exec"
	"github.com/nextlite/nextlite/pkg/evaluator"
)

func Init(ctx *evaluator.Context) {
	exec.Command("echo")
}
`
	ev := NewYaegiEvaluator(defaultWhitelist(), time.Second)
	err := ev.Evaluate(context.Background(), source, NewContext(nil, nil))
	if err == nil {
		t.Fatal("expected an error for disallowed import")
	}
	if !strings.Contains(err.Error(), "os/exec") {
		t.Fatalf("expected error to name the disallowed import, got %v", err)
	}
}

func TestEvaluateTimesOut(t *testing.T) {
	source := `
package handler

import (
	"time"

	"github.com/nextlite/nextlite/pkg/evaluator"
)

func Init(ctx *evaluator.Context) {
	time.Sleep(200 * time.Millisecond)
}
`
	ev := NewYaegiEvaluator(append(defaultWhitelist(), "time"), 50*time.Millisecond)
	err := ev.Evaluate(context.Background(), source, NewContext(nil, nil))
	if err == nil {
		t.Fatal("expected a timeout error")
	}
}
