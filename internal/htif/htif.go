// Package htif decodes the riscv-tests HTIF tohost convention: the guest
// writes 1 to report a pass, or an odd value encoding a failing test number
// to report a failure. The zero-before-run / poll-after-step sequencing
// itself lives in hart.Run; this package only interprets the final value
// once that loop has stopped.
package htif

// Outcome reports whether a tohost value written by a riscv-tests guest
// represents a pass (value 1) or a failure (any other non-zero value,
// whose test number is the value's upper bits per the riscv-test-env
// convention: testNum = tohost >> 1).
func Outcome(tohost uint32) (passed bool, testNum uint32) {
	if tohost == 1 {
		return true, 0
	}
	return false, tohost >> 1
}
