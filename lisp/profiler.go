package lisp

// Version is the version of the rasp runtime.
const Version = "0.2"

// Interface for a profiler
type Profiler interface {
	// Is the profiler enabled?
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// End the profiling session and flush any pending data
	Complete() error
	// Marks the start of a call to function.  The returned function marks
	// the end of the call.
	Start(function *LVal) func()
}
