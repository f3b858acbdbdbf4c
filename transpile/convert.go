package transpile

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/internal/corelog"
	"github.com/d3d9spv/transpiler/spirv"
)

// Options configures the host's constant-slot budget (spec.md §4.4).
// Non-goals in scope terms: there is no config-file path, only this struct
// and the CLI flags that populate it (cmd/d3dsmc).
type Options struct {
	NumFloatConstants uint32
	NumIntConstants   uint32
	NumBoolConstants  uint32
}

// DefaultOptions matches a typical D3D9 driver's constant-slot budget.
func DefaultOptions() Options {
	return Options{
		NumFloatConstants: numFloatConstantsDefault,
		NumIntConstants:   numIntConstantsDefault,
		NumBoolConstants:  numBoolConstantsDefault,
	}
}

// Result is the output of a successful Convert call.
type Result struct {
	SPIRV       []byte
	Diagnostics []Diagnostic
	Stage       d3dsm.Stage
}

// Transpiler holds all per-invocation state described by spec.md §5: it is
// not safe to share across concurrent translations.
type Transpiler struct {
	reader *d3dsm.Reader
	b      *spirv.ModuleBuilder
	types  *Registry
	idt    *idTable

	stage    d3dsm.Stage
	opts     Options
	diags    []Diagnostic
	log      *log.Logger
	bindings map[regKey]binding

	uniforms *uniformLayout

	entryInterface    []uint32
	positionOutputPtr uint32

	glslExtSet uint32

	ifStack   []ifFrame
	loopStack []loopFrame
}

func (tr *Transpiler) isPixel() bool { return tr.stage == d3dsm.StagePixel }

// Convert translates a D3D9 shader token stream into a SPIR-V module.
func Convert(words []uint32, opts Options) (*Result, error) {
	if len(words) < 2 {
		return nil, fmt.Errorf("transpile: token stream too short to contain a version header and an END token")
	}

	reader := d3dsm.NewReader(words)
	tr := &Transpiler{
		reader:   reader,
		b:        spirv.NewModuleBuilder(spirv.Version1_0),
		stage:    reader.Version.Stage,
		opts:     opts,
		bindings: make(map[regKey]binding),
		log:      corelog.New("stage", stageName(reader.Version.Stage)),
	}
	tr.idt = newIDTable()
	tr.types = NewRegistry(tr.b)

	tr.b.AddCapability(spirv.CapabilityShader)
	tr.glslExtSet = tr.b.AddExtInstImport("GLSL.std.450")
	tr.b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	tr.uniforms = tr.synthesizeUniforms()

	voidT := tr.types.ID(Scalar(TagVoid))
	fnT := tr.b.AddTypeFunction(voidT)
	entry := tr.b.AddFunction(fnT, voidT, spirv.FunctionControlNone)
	tr.b.AddLabel()

	if err := tr.run(); err != nil {
		return nil, err
	}

	tr.postProcess()

	execModel := spirv.ExecutionModelVertex
	if tr.isPixel() {
		execModel = spirv.ExecutionModelFragment
	}
	tr.b.AddEntryPoint(execModel, entry, "main", tr.entryInterface)
	if tr.isPixel() {
		tr.b.AddExecutionMode(entry, spirv.ExecutionModeOriginUpperLeft)
	}

	return &Result{
		SPIRV:       tr.b.Build(),
		Diagnostics: tr.diags,
		Stage:       tr.stage,
	}, nil
}

func stageName(s d3dsm.Stage) string {
	if s == d3dsm.StagePixel {
		return "pixel"
	}
	return "vertex"
}

// run is the main instruction-dispatch loop.
func (tr *Transpiler) run() error {
	for {
		if tr.reader.Done() {
			return fmt.Errorf("transpile: token stream ended before an END token")
		}
		tok := tr.reader.Next()
		op := d3dsm.Opc(tok)
		if op == d3dsm.OpEnd {
			return nil
		}
		if op == d3dsm.OpPhase {
			tr.reader.PromoteToPS20()
			continue
		}
		if op == d3dsm.OpComment {
			n := d3dsm.OpcodeCtrl(tok)
			tr.reader.Skip(int(n))
			continue
		}
		if skip, ok := d3dsm.Unsupported(op); ok {
			tr.warnf(benignUnknown, "opcode %d is explicitly unsupported; skipping %d operand word(s)", op, skip)
			tr.reader.Skip(skip)
			continue
		}
		tr.dispatch(op, tok)
	}
}
