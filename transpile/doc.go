// Package transpile implements the D3D9 shader bytecode to SPIR-V
// transpiler: the single hard subsystem of a D3D9-on-Vulkan compatibility
// layer. It is a single-pass streaming compiler with a deferred-emission
// back end — there is no intermediate AST or retained IR between the
// d3dsm token reader and the spirv.ModuleBuilder.
//
// Convert is the entry point:
//
//	result, err := transpile.Convert(words, transpile.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	spirvBinary := result.SPIRV
//
// The pass is organized the way spec.md lays it out, leaves first: a
// Registry interns structural type descriptors to SPIR-V ids; an
// idTable tracks the current SSA value of every D3D register and caches
// repeated conversions; a uniform layout synthesizer emits the
// descriptor-set-0 blocks (two for vertex shaders, four for pixel shaders)
// before any opcode is dispatched; a register
// resolver and write-mask committer handle reads and writes of D3D
// registers; an opcode dispatch table lowers each instruction; and a
// post-process step closes the function, flips the Y axis of a vertex
// position output, and finalizes the entry point.
package transpile
