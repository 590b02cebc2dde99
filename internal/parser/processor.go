package parser

import (
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	opts := Options{
		MaxDepth:      ctx.MaxDepth,
		MaxInputBytes: ctx.MaxInputBytes,
		AllowFree:     ctx.AllowFree,
		File:          ctx.FilePath,
	}

	t, err := ParseWith(ctx.SourceCode, opts)
	if err != nil {
		de, ok := err.(*diagnostics.DiagnosticError)
		if !ok {
			de = diagnostics.NewError(diagnostics.ErrP001, diagnostics.Position{}, "", err.Error())
			de.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, de)
		return ctx
	}
	ctx.Term = t
	return ctx
}

var _ pipeline.Processor = (*ParserProcessor)(nil)
