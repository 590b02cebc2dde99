package evaluator

import (
	"github.com/funvibe/ljson/internal/pipeline"
)

// MaterializeProcessor turns ctx.Term into ctx.Result.
type MaterializeProcessor struct {
	Globals map[string]Object
}

func (mp *MaterializeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Term == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	eval := New()
	if ctx.Context != nil {
		eval.Context = ctx.Context
	}
	eval.MaxDepth = ctx.MaxEvalDepth
	eval.Globals = mp.Globals

	result := eval.Materialize(ctx.Term)
	if errObj, ok := result.(*Error); ok {
		err := errObj.Err()
		err.File = ctx.FilePath
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Result = result
	return ctx
}

var _ pipeline.Processor = (*MaterializeProcessor)(nil)
