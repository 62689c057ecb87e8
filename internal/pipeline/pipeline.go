package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. A stage that reports errors ends the run: the unit
// is not transformed at all rather than partially.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if len(ctx.Errors) > 0 {
			ctx.Output = nil
			break
		}
	}
	return ctx
}
