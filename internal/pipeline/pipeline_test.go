package pipeline

import (
	"testing"

	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/token"
)

type stage struct {
	name string
	fail bool
	log  *[]string
}

func (s *stage) Process(ctx *PipelineContext) *PipelineContext {
	*s.log = append(*s.log, s.name)
	ctx.Output = []byte(s.name)
	if s.fail {
		ctx.AddError(diagnostics.NewSpanError(diagnostics.ErrB001, token.Span{}, "%s failed", s.name))
	}
	return ctx
}

func TestRunAllStages(t *testing.T) {
	var log []string
	ctx := New(&stage{name: "a", log: &log}, &stage{name: "b", log: &log}).
		Run(NewContext("x.rs", nil, Options{}, nil))
	if len(log) != 2 || string(ctx.Output) != "b" {
		t.Errorf("got stages %v, output %q", log, ctx.Output)
	}
}

func TestRunStopsAtFirstFailingStage(t *testing.T) {
	var log []string
	ctx := New(
		&stage{name: "a", log: &log},
		&stage{name: "b", fail: true, log: &log},
		&stage{name: "c", log: &log},
	).Run(NewContext("x.rs", nil, Options{}, nil))

	if len(log) != 2 {
		t.Errorf("expected 2 stages to run, got %v", log)
	}
	if ctx.Output != nil {
		t.Errorf("failed unit must not have output, got %q", ctx.Output)
	}
	if len(ctx.Errors) != 1 || ctx.Errors[0].File != "x.rs" {
		t.Errorf("expected one error attributed to x.rs, got %v", ctx.Errors)
	}
}

func TestNewContextHasOwnRegistry(t *testing.T) {
	a := NewContext("a.rs", nil, Options{}, nil)
	b := NewContext("b.rs", nil, Options{}, nil)
	if a.Registry == b.Registry || a.Registry.ID() == b.Registry.ID() {
		t.Error("contexts must not share a registry")
	}
	if a.Logger == nil {
		t.Error("expected a default logger")
	}
}
