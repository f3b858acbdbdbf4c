// Package spirv provides low-level SPIR-V binary construction primitives.
//
// SPIR-V is the standard intermediate language for GPU shaders, used by
// Vulkan. This package owns the instruction emitter: it knows how to pack
// SPIR-V opcodes and operands into words, keep the twelve module sections in
// the order the binary format requires, and concatenate them into a final
// module. It has no opinion about what a D3D9 shader is — that belongs to
// the transpile package, which drives a ModuleBuilder one instruction at a
// time as it walks the token stream.
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_0)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//	binary := builder.Build()
//
// # SPIR-V module layout
//
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities
//   - Extensions
//   - Extended instruction set imports (GLSL.std.450)
//   - Memory model
//   - Entry points
//   - Execution modes
//   - Debug strings and names
//   - Annotations (decorations)
//   - Types, constants, and global variable declarations
//   - Function bodies
//
// References: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
