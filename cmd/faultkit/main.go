// Command faultkit classifies failures and runs guarded WebAssembly calls
// through a configured dispatch policy.
//
//	faultkit classify "x is not defined"
//	faultkit kinds
//	faultkit call --wasm mod.wasm --func div --arg 1 --arg 0
//	faultkit interactive
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
