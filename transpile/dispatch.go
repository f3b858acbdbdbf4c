package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// dispatch is the Opcode Dispatch & Lowering component (spec.md §4.7): one
// case per opcode family, each responsible for reading exactly the operand
// tokens its instruction carries before returning control to run's loop.
func (tr *Transpiler) dispatch(op d3dsm.Opcode, tok d3dsm.Token) {
	switch op {
	case d3dsm.OpDcl:
		tr.dispatchDcl(tok)
	case d3dsm.OpDef:
		tr.dispatchDef(tok)
	case d3dsm.OpDefI:
		tr.dispatchDefI(tok)
	case d3dsm.OpDefB:
		tr.dispatchDefB(tok)

	case d3dsm.OpMov:
		tr.dispatchMov(tok)
	case d3dsm.OpMova:
		tr.dispatchMova(tok)

	case d3dsm.OpAdd, d3dsm.OpSub, d3dsm.OpMul, d3dsm.OpMin, d3dsm.OpMax, d3dsm.OpSge, d3dsm.OpSlt:
		tr.dispatchBinary(op, tok)
	case d3dsm.OpMad, d3dsm.OpLrp, d3dsm.OpCmp, d3dsm.OpDp2Add:
		tr.dispatchTernary(op, tok)

	case d3dsm.OpDp3, d3dsm.OpDp4:
		tr.dispatchDot(op, tok)
	case d3dsm.OpCrs:
		tr.dispatchCross(tok)
	case d3dsm.OpDst:
		tr.dispatchDst(tok)
	case d3dsm.OpNrm:
		tr.dispatchNrm(tok)

	case d3dsm.OpM4x4, d3dsm.OpM4x3, d3dsm.OpM3x4, d3dsm.OpM3x3, d3dsm.OpM3x2:
		tr.dispatchMatrixVector(op, tok)

	case d3dsm.OpRcp, d3dsm.OpRsq, d3dsm.OpExp, d3dsm.OpExpP, d3dsm.OpLog, d3dsm.OpLogP,
		d3dsm.OpFrc, d3dsm.OpAbs, d3dsm.OpSgn:
		tr.dispatchUnaryTranscendental(op, tok)
	case d3dsm.OpPow:
		tr.dispatchPow(tok)
	case d3dsm.OpLit:
		tr.dispatchLit(tok)
	case d3dsm.OpSinCos:
		tr.dispatchSinCos(tok)

	case d3dsm.OpTexCoord:
		tr.dispatchTexCoord(tok)
	case d3dsm.OpTex:
		tr.dispatchTex(tok)
	case d3dsm.OpTexKill:
		tr.dispatchTexKill(tok)
	case d3dsm.OpTexBem:
		tr.dispatchTexBem(tok)

	case d3dsm.OpIf, d3dsm.OpIfC:
		tr.dispatchIf(op, tok)
	case d3dsm.OpElse:
		tr.dispatchElse()
	case d3dsm.OpEndIf:
		tr.dispatchEndIf()
	case d3dsm.OpLoop, d3dsm.OpRep:
		tr.dispatchLoop(op)
	case d3dsm.OpEndLoop, d3dsm.OpEndRep:
		tr.dispatchEndLoop()
	case d3dsm.OpBreak:
		tr.dispatchBreak()

	case d3dsm.OpRet, d3dsm.OpNop:
		// no-ops at this level: RET inside a function body is redundant with
		// the implicit fall-through to postProcess's OpReturn.

	default:
		tr.warnf(benignUnknown, "opcode %d has no modeled lowering; skipped with no operands consumed", op)
	}
}

// dispatchDcl reads the comment token that always follows a DCL opcode and
// the destination register it declares (spec.md §4.7's Declarations group).
func (tr *Transpiler) dispatchDcl(tok d3dsm.Token) {
	comment := tr.reader.Next()
	dst := tr.reader.Next()
	class, number := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
	key := regKey{Class: class, Number: number}

	if class == d3dsm.RegSampler {
		// Texture type lives in the comment token; this translator does not
		// read it and declares every sampler as a 2D sampled image.
		tr.declare(key, 0)
		return
	}

	usage := d3dsm.DCLUsage(comment)
	tr.idt.setUsage(key, usage)
	tr.declare(key, usage)
}

// dispatchDef/DefI/DefB consume the destination token and the literal words
// and discard them: no SPIR-V is emitted and no table of the literal values
// is kept. Every read of a constant register loads from the uniform-buffer
// constants block, so a value defined inline reaches the shader only
// through whatever the host writes into that block.
func (tr *Transpiler) dispatchDef(tok d3dsm.Token) {
	_ = tr.reader.Next() // destination
	tr.reader.Skip(4)    // four float32 literals
}

func (tr *Transpiler) dispatchDefI(tok d3dsm.Token) {
	_ = tr.reader.Next() // destination
	tr.reader.Skip(4)    // four int32 literals
}

func (tr *Transpiler) dispatchDefB(tok d3dsm.Token) {
	_ = tr.reader.Next() // destination
	tr.reader.Skip(1) // one bool literal
}

func (tr *Transpiler) dispatchMov(tok d3dsm.Token) {
	dst := tr.reader.Next()
	src := tr.reader.Next()
	v := tr.resolve(src, ShapeVec4)
	tr.commit(dst, v)
}

// dispatchMova rounds-and-converts a float address source to an integer
// address register (D3DSIO_MOVA semantics: round-to-nearest, not truncate).
// The address register is modeled as a bare scalar int (only its x channel
// is ever meaningful), so it bypasses the vector-shaped Write-Mask Committer
// and stores directly.
func (tr *Transpiler) dispatchMova(tok d3dsm.Token) {
	dst := tr.reader.Next()
	src := tr.reader.Next()
	v := tr.resolve(src, ShapeScalar)
	floatT := tr.types.ID(Scalar(TagFloat))
	rounded := tr.extInst(floatT, spirv.GLSLstd450Round, v)
	intT := tr.types.ID(Scalar(TagInt))
	asInt := tr.b.AddUnaryOp(spirv.OpConvertFToS, intT, rounded)

	class, number := d3dsm.RegType(dst), d3dsm.RegNumber(dst)
	key := regKey{Class: class, Number: number}
	bnd := tr.declare(key, 0)
	tr.b.AddStore(bnd.ptr, asInt)
	tr.idt.setType(asInt, Scalar(TagInt))
	tr.idt.bind(key, asInt)
}
