package graphics

// Registry is a single slot holding at most one Context. It hands the
// context to exactly one owner at a time; misuse panics instead of silently
// creating a second owner. It is not a lock.
type Registry struct {
	ctx *Context
}

// NewRegistry returns a registry holding ctx.
func NewRegistry(ctx *Context) *Registry {
	r := &Registry{}
	r.GiveBack(ctx)
	return r
}

// Take removes the context from the slot. It panics if the slot is empty.
func (r *Registry) Take() *Context {
	if r.ctx == nil {
		panic("graphics: take from empty context registry")
	}
	ctx := r.ctx
	r.ctx = nil
	return ctx
}

// GiveBack returns a taken context to the slot. It panics if the slot is
// already occupied.
func (r *Registry) GiveBack(ctx *Context) {
	if ctx == nil {
		panic("graphics: give back nil context")
	}
	if r.ctx != nil {
		panic("graphics: context registry already holds a context")
	}
	r.ctx = ctx
}

// Taken reports whether the context is currently handed out.
func (r *Registry) Taken() bool {
	return r.ctx == nil
}
