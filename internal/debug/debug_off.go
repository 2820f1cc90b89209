//go:build !debug

package debug

const Enabled = false

// Printf is a no op unless compiled with the `debug` tag
func Printf(f string, args ...interface{}) {}

// Dump is a no op unless compiled with the `debug` tag
func Dump(v ...interface{}) {}
