package wasmguard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/faultkit/dispatch"
	"github.com/wippyai/faultkit/errors"
)

// Config holds configuration for guard creation
type Config struct {
	// Logger receives call diagnostics. Nil disables logging.
	Logger *zap.Logger

	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the runtime default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// CloseOnContextDone interrupts running guest code when the call
	// context is done. The module is closed afterwards and must be loaded
	// again.
	CloseOnContextDone bool
}

// Guard runs exported functions of one core module.
type Guard struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	module   api.Module
	log      *zap.Logger
	mu       sync.Mutex
}

// New creates a guard with its own wazero runtime. cfg may be nil.
func New(ctx context.Context, cfg *Config) (*Guard, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	log := zap.NewNop()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CloseOnContextDone {
			runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
		}
		if cfg.Logger != nil {
			log = cfg.Logger
		}
	}

	return &Guard{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		log:     log,
	}, nil
}

// Load compiles and instantiates wasm, replacing any module loaded before.
// Start functions are not run.
func (g *Guard) Load(ctx context.Context, wasm []byte) error {
	compiled, err := g.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Wrap(errors.PhaseWASM, errors.KindMalformedInput, err, "compile module")
	}

	mod, err := g.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("").WithStartFunctions())
	if err != nil {
		_ = compiled.Close(ctx)
		return errors.Wrap(errors.PhaseWASM, errors.KindMalformedInput, err, "instantiate module")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.module != nil {
		_ = g.module.Close(ctx)
		_ = g.compiled.Close(ctx)
	}
	g.compiled = compiled
	g.module = mod

	g.log.Debug("module loaded", zap.Strings("exports", exportNames(compiled)))
	return nil
}

// Exports lists exported function names in sorted order.
func (g *Guard) Exports() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.compiled == nil {
		return nil
	}
	return exportNames(g.compiled)
}

// Signature returns the parameter and result types of an exported function.
func (g *Guard) Signature(name string) (params, results []api.ValueType, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	def, err := g.lookup(name)
	if err != nil {
		return nil, nil, err
	}
	return def.ParamTypes(), def.ResultTypes(), nil
}

// Call invokes an exported function with raw parameters. Calls on one
// guard are serialized.
func (g *Guard) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	def, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	if want := len(def.ParamTypes()); want != len(params) {
		return nil, errors.New(errors.PhaseWASM, errors.KindTypeMismatch).
			Path(name).
			Value(params).
			With("export", name).
			Detail("expected %d arguments, got %d", want, len(params)).
			Build()
	}

	results, err := g.module.ExportedFunction(name).Call(ctx, params...)
	if err != nil {
		g.log.Debug("guest call failed", zap.String("export", name), zap.Error(err))
		return nil, err
	}
	return results, nil
}

// Work adapts an exported function to guarded work. The work yields the
// raw results as []uint64.
func (g *Guard) Work(name string, params ...uint64) dispatch.Work {
	args := append([]uint64(nil), params...)
	return func(ctx context.Context) (any, error) {
		return g.Call(ctx, name, args...)
	}
}

// Close releases the module and the runtime.
func (g *Guard) Close(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.module = nil
	g.compiled = nil
	return g.runtime.Close(ctx)
}

func (g *Guard) lookup(name string) (api.FunctionDefinition, error) {
	if g.module == nil {
		return nil, errors.New(errors.PhaseWASM, errors.KindUndeclaredReference).
			Name(name).
			Detail("no module loaded").
			Build()
	}
	def, ok := g.compiled.ExportedFunctions()[name]
	if !ok || g.module.ExportedFunction(name) == nil {
		return nil, errors.New(errors.PhaseWASM, errors.KindUndeclaredReference).
			Name(name).
			With("export", name).
			Detail("export %s is not defined", name).
			Build()
	}
	return def, nil
}

func exportNames(compiled wazero.CompiledModule) []string {
	defs := compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatResults renders raw results using the declared result types.
func FormatResults(types []api.ValueType, results []uint64) string {
	out := ""
	for i, r := range results {
		if i > 0 {
			out += ", "
		}
		t := api.ValueTypeI64
		if i < len(types) {
			t = types[i]
		}
		switch t {
		case api.ValueTypeI32:
			out += fmt.Sprint(api.DecodeI32(r))
		case api.ValueTypeF32:
			out += fmt.Sprint(api.DecodeF32(r))
		case api.ValueTypeF64:
			out += fmt.Sprint(api.DecodeF64(r))
		default:
			out += fmt.Sprint(int64(r))
		}
	}
	return out
}
