package workgroup

// Job is a single-shot unit of work: something a Group's worker runs
// exactly once. Implementations must not assume Run is ever called more
// than once, and may safely consume captured state inside it.
type Job interface {
	Run()
}

// JobFunc adapts a plain func() into a Job, the same pattern
// http.HandlerFunc uses to let a function satisfy a single-method
// interface. This is the type PushFunc wraps its argument in.
type JobFunc func()

// Run invokes f.
func (f JobFunc) Run() { f() }
