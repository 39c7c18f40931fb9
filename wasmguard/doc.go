// Package wasmguard runs exported WebAssembly functions as guarded work.
//
// A Guard owns a wazero runtime and one instantiated core module. Work
// adapts an exported function to dispatch.Work, so traps raised by the
// guest are classified and dispatched like any other failure:
//
//	g, _ := wasmguard.New(ctx, &wasmguard.Config{MemoryLimitPages: 16})
//	defer g.Close(ctx)
//	_ = g.Load(ctx, wasmBytes)
//	res, err := dispatch.Run(ctx, reg, g.Work("div", 1, 0), nil)
//
// Failures raised by the guard itself are tagged: a missing export is an
// undeclared reference, a wrong argument count is a type mismatch and an
// undecodable module is malformed input. Guest traps keep the runtime's
// message ("wasm error: integer divide by zero") and are classified by it.
package wasmguard
