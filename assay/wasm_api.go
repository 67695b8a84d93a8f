//go:build js && wasm

package assay

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/cottand/assay/prover"
)

// CheckModule checks every assertion of the YAML module in args[0]
// and returns one line per assertion, or the module's errors if it is malformed
func CheckModule(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = "prover panicked: " + fmt.Sprint(r)
		}
	}()

	m, err := NewModuleFromBytes([]byte(args[0].String()), "module.yaml")
	if err != nil {
		return fmt.Sprintf("the module could not be read:\n\n%s", err)
	}
	sb := strings.Builder{}
	if m.Errors().HasError() {
		sb.WriteString("the module has the following errors:\n")
		for _, e := range m.FormatErrors() {
			sb.WriteString(e)
			sb.WriteByte('\n')
		}
	}
	cfg := prover.DefaultConfig()
	cfg.Parallelism = 1
	reports, err := Check(context.Background(), m, cfg)
	if err != nil {
		return fmt.Sprintf("the prover encountered a failure:\n%s", err)
	}
	for _, r := range reports {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	sb.WriteString(Summarize(reports).String())
	return sb.String()
}

// ShowProof proves the assertion named args[1] of the YAML module in args[0]
// and returns its proof tree
//
// output: { error: string } | { outcome: string, proof: string }
func ShowProof(_ js.Value, args []js.Value) (ret any) {
	defer func() {
		if r := recover(); r != nil {
			ret = map[string]any{"error": "prover panicked: " + fmt.Sprint(r)}
		}
	}()

	m, err := NewModuleFromBytes([]byte(args[0].String()), "module.yaml")
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	cfg := prover.DefaultConfig()
	r, err := Prove(context.Background(), m, cfg, args[1].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	if r.Proof == nil {
		return map[string]any{"error": r.String()}
	}
	sb := &strings.Builder{}
	if err := r.Proof.Format(sb, r.Proof.Root()); err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"outcome": r.String(), "proof": sb.String()}
}
