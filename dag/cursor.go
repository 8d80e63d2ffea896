package dag

// Begin seals the workflow, computes one execution order and rewinds the
// cursor. A workflow that fails validation is left unsealed.
func (w *Workflow) Begin() error {
	order, err := w.ExecutionOrder()
	if err != nil {
		return err
	}
	w.sealed = true
	w.order = order
	w.pos = 0
	return nil
}

// HasNext reports whether the cursor has functions left.
func (w *Workflow) HasNext() bool {
	return w.pos < len(w.order)
}

// PeekNext returns the function at the cursor without moving it, or nil.
func (w *Workflow) PeekNext() *Function {
	if !w.HasNext() {
		return nil
	}
	return w.order[w.pos]
}

// Advance returns the function at the cursor and moves past it, or nil when exhausted.
func (w *Workflow) Advance() *Function {
	if !w.HasNext() {
		return nil
	}
	fn := w.order[w.pos]
	w.pos++
	return fn
}

// Remaining returns how many functions the cursor has yet to yield.
func (w *Workflow) Remaining() int {
	return len(w.order) - w.pos
}
