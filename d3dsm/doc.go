// Package d3dsm reads Direct3D 9 shader bytecode (DXBC/D3DSM token streams).
//
// A D3D9 shader is a flat array of 32-bit tokens: one version header, then
// a sequence of instruction tokens each followed by a destination parameter
// (for instructions that write one) and zero or more source parameters. The
// stream is self-delimited — it ends at an END token — rather than
// length-prefixed.
//
// Reader exposes a cursor over that array plus typed extractors for the
// opcode-specific bitfields (register class/number, write mask, swizzle,
// source/destination modifiers, usage). It does no semantic interpretation;
// that is the transpile package's job.
package d3dsm
