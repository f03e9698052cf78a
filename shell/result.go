package shell

// Result is returned by every handler and hook: either continue the loop
// or stop it with a reason.
type Result struct {
	stop   bool
	Reason string
}

// Continue keeps the loop running.
var Continue = Result{}

// Stop ends the loop that receives it.
func Stop(reason string) Result {
	return Result{stop: true, Reason: reason}
}

// Stopped reports whether the result ends the loop.
func (r Result) Stopped() bool {
	return r.stop
}
