//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/assay/assay"
)

func main() {
	js.Global().Set("CheckModule", assay.CheckModule)
	js.Global().Set("ShowProof", assay.ShowProof)

	// wait indefinitely so that Go does not terminate execution
	// and the functions remain available
	<-make(chan struct{})
}
