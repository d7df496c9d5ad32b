package types

// Context holds the execution context threaded through every evaluation
// step: the tick budget protecting against runaway loops and an optional
// embedder hook checked at the same safe points.
type Context struct {
	TicksRemaining int64 // Remaining tick budget; ignored when unlimited
	unlimited      bool

	// StepHook, when set, is consulted before each statement in a block.
	// Returning false aborts execution with a RangeError. Policy belongs
	// to the embedder; the core only defines the hook shape.
	StepHook func() bool
}

// NewContext creates an execution context with no tick limit
func NewContext() *Context {
	return &Context{unlimited: true}
}

// NewContextWithLimit creates an execution context with a tick budget.
// A limit <= 0 means unlimited.
func NewContextWithLimit(limit int64) *Context {
	if limit <= 0 {
		return NewContext()
	}
	return &Context{TicksRemaining: limit}
}

// ConsumeTick decrements the tick budget and reports whether execution
// may continue.
func (ctx *Context) ConsumeTick() bool {
	if ctx.unlimited {
		return true
	}
	ctx.TicksRemaining--
	return ctx.TicksRemaining > 0
}

// Step runs the per-statement checks: the embedder hook first, then the
// tick budget.
func (ctx *Context) Step() bool {
	if ctx.StepHook != nil && !ctx.StepHook() {
		return false
	}
	return ctx.ConsumeTick()
}
