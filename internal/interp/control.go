package interp

// returnSignal implements Go's error interface purely so it can travel
// up through the same (any, error) return channel every statement and
// expression evaluator already uses, but it is never reported as a
// runtime error: Function.Call checks for it explicitly and turns it into
// the call's result, executeBlock passes it through unchanged, and
// toRuntimeError (used by Interpreter.Interpret) panics on any error that
// is not a *loxerr.RuntimeError (spec §7: "Return is a non-error
// control-flow unwind").
type returnSignal struct {
	value any
}

func (returnSignal) Error() string { return "return" }
