package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/errors"
	"github.com/wippyai/faultkit/wasmguard"
)

type callOptions struct {
	wasmFile    string
	funcName    string
	args        []string
	memoryPages uint32
}

func newCallCmd(a *app) *cobra.Command {
	var opts callOptions

	cmd := &cobra.Command{
		Use:   "call --wasm <file.wasm> --func <name> [--arg n]...",
		Short: "Call an exported WebAssembly function under the dispatch policy",
		Long: `Call instantiates a core WebAssembly module and invokes one exported
function as guarded work. Traps are classified and handed to the handler
configured for their kind. A repropagated failure exits with status 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.call(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.wasmFile, "wasm", "", "Path to core wasm module")
	cmd.Flags().StringVar(&opts.funcName, "func", "", "Exported function to call")
	cmd.Flags().StringArrayVar(&opts.args, "arg", nil, "Argument (repeat per parameter)")
	cmd.Flags().Uint32Var(&opts.memoryPages, "memory-pages", 0, "Guest memory limit in 64KB pages (0 for default)")
	_ = cmd.MarkFlagRequired("wasm")
	_ = cmd.MarkFlagRequired("func")

	return cmd
}

func (a *app) call(cmd *cobra.Command, opts callOptions) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(opts.wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}
	classifier, err := a.cfg.Classifier()
	if err != nil {
		return err
	}

	guard, err := wasmguard.New(ctx, &wasmguard.Config{
		Logger:           a.log,
		MemoryLimitPages: opts.memoryPages,
	})
	if err != nil {
		return fmt.Errorf("create guard: %w", err)
	}
	if err := guard.Load(ctx, data); err != nil {
		_ = guard.Close(ctx)
		return err
	}

	// A missing export surfaces again from the guarded call.
	paramTypes, resultTypes, _ := guard.Signature(opts.funcName)
	params, err := encodeArgs(opts.args, paramTypes)
	if err != nil {
		_ = guard.Close(ctx)
		return err
	}

	res, err := dispatch.Run(ctx, reg, guard.Work(opts.funcName, params...),
		func() { _ = guard.Close(ctx) },
		dispatch.WithClassifier(classifier),
		dispatch.WithContext(map[string]any{
			"module": opts.wasmFile,
			"export": opts.funcName,
		}))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Failed() {
		fmt.Fprintf(out, "handled %s: %s\n", res.Record.Kind(), res.Record.Message())
		if res.Value != nil {
			fmt.Fprintf(out, "recovered: %v\n", res.Value)
		}
		return nil
	}

	results, _ := res.Value.([]uint64)
	fmt.Fprintf(out, "%s(%s) = %s\n", opts.funcName, strings.Join(opts.args, ", "), wasmguard.FormatResults(resultTypes, results))
	return nil
}

// encodeArgs converts textual arguments to raw wasm values. Without type
// information every argument is treated as i64.
func encodeArgs(args []string, types []api.ValueType) ([]uint64, error) {
	params := make([]uint64, len(args))
	for i, s := range args {
		t := api.ValueTypeI64
		if i < len(types) {
			t = types[i]
		}

		var err error
		switch t {
		case api.ValueTypeI32:
			var v int64
			v, err = strconv.ParseInt(s, 10, 32)
			params[i] = api.EncodeI32(int32(v))
		case api.ValueTypeF32:
			var v float64
			v, err = strconv.ParseFloat(s, 32)
			params[i] = api.EncodeF32(float32(v))
		case api.ValueTypeF64:
			var v float64
			v, err = strconv.ParseFloat(s, 64)
			params[i] = api.EncodeF64(v)
		default:
			var v int64
			v, err = strconv.ParseInt(s, 10, 64)
			params[i] = api.EncodeI64(v)
		}
		if err != nil {
			return nil, errors.New(errors.PhaseWASM, errors.KindTypeMismatch).
				Path("arg", strconv.Itoa(i)).
				Value(s).
				Cause(err).
				Detail("cannot convert %q to %s", s, api.ValueTypeName(t)).
				Build()
		}
	}
	return params, nil
}
