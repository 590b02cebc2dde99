package pipeline

import (
	"context"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

// PipelineContext carries one term text through parsing and materialization.
type PipelineContext struct {
	Context    context.Context
	SourceCode string
	FilePath   string

	MaxDepth      int
	MaxEvalDepth  int
	MaxInputBytes int
	// AllowFree accepts unbound variables instead of rejecting the text.
	AllowFree bool

	Term term.Term
	// Result is the materialized value, an evaluator.Object.
	Result interface{}
	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{
		Context:       context.Background(),
		SourceCode:    sourceCode,
		MaxDepth:      config.DefaultMaxDepth,
		MaxEvalDepth:  config.DefaultMaxEvalDepth,
		MaxInputBytes: config.DefaultMaxInputBytes,
	}
}

// Apply copies the limits from settings.
func (ctx *PipelineContext) Apply(s *config.Settings) *PipelineContext {
	ctx.MaxDepth = s.Limits.MaxDepth
	ctx.MaxEvalDepth = s.Limits.MaxEvalDepth
	ctx.MaxInputBytes = s.Limits.MaxInputBytes
	return ctx
}

// Err returns the first collected error, or nil.
func (ctx *PipelineContext) Err() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}
