// Command tadapt-demo is a small test binary built on tadapt. It is used to
// try drivers against a known registry: one of its tests always fails.
package main

import (
	"os"
	"strings"

	"tadapt"
)

func main() {
	reg := tadapt.NewRegistry()

	reg.Suite("MathTests").
		Add("Addition", func(t *tadapt.T) {
			t.Equal(2, 1+1)
		}).
		Add("Subtraction", func(t *tadapt.T) {
			t.Equal(3, 5-2)
		}).
		Add("FAIL", func(t *tadapt.T) {
			t.Equal(2, 1)
		})

	reg.Suite("StringTests").
		Add("Concatenation", func(t *tadapt.T) {
			t.Equal("hello world", strings.Join([]string{"hello", "world"}, " "))
		})

	os.Exit(tadapt.Main(reg, os.Args[1:]))
}
