// Package crash reports unrecoverable failures of the rudderc process.
//
// Go has no process-wide panic handler, so the hook is an explicit handle:
// Install creates it once during bootstrap and every goroutine boundary
// defers (*Hook).Recover, directly or through Go and Guard.
//
//	hook, err := crash.Install(crash.Config{Action: "compile", Backtrace: true})
//	if err != nil {
//		return err
//	}
//	defer hook.Recover()
//
// # Reports
//
// The first recovered panic produces exactly one report and the process
// exits with ExitCode. The panic value is resolved once: strings are used
// verbatim, anything else is described and passed through Normalize, which
// strips the generic envelope of known message shapes.
//
// With backtraces enabled, Capture attaches the rudderc frames of the
// panicking goroutine, innermost first, leaving out the reporter itself.
//
// # Output
//
// In JSON mode the report is a standalone document on stdout:
//
//	{
//	  "result": {
//	    "status": "rudderc compile: unrecoverable error",
//	    "message": "rudderc failure: an unrecoverable error occurred at 'main.go:12': boom"
//	  }
//	}
//
// Otherwise the composed message goes to stderr.
package crash
