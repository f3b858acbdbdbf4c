package transpile

import (
	"github.com/d3d9spv/transpiler/d3dsm"
	"github.com/d3d9spv/transpiler/spirv"
)

// ifState tracks where an IF/ELSE/ENDIF block currently is (spec.md §4.8).
type ifState uint8

const (
	ifInThen ifState = iota
	ifSawElse
	ifClosed
)

// ifFrame is one entry of the IF/ELSE/ENDIF stack.
type ifFrame struct {
	state     ifState
	thenLabel uint32
	elseLabel uint32
	mergeLabel uint32
}

// loopKind distinguishes LOOP (loop-counter register plus an integer count
// operand) from REP (count operand only). Both lower to the same counter,
// comparison and back-edge; only LOOP binds the counter to its loop-counter
// register (spec.md §4.7).
type loopKind uint8

const (
	loopKindLoop loopKind = iota
	loopKindRep
)

// loopFrame is one entry of the LOOP/REP stack (spec.md §4.8's loop fields).
type loopFrame struct {
	kind loopKind

	headerLabel  uint32 // loop header (pre-merge) label: holds the OpPhi + OpLoopMerge
	bodyLabel    uint32 // pre-execute label: loop body entry
	continueLabel uint32 // back-edge target (increments the counter)
	mergeLabel   uint32 // post-loop label

	counterVar  uint32 // not set: reads of aLKey resolve to counterPhi directly
	counterPhi  uint32 // the OpPhi result id for the counter
	tripCount   uint32 // loaded iteration count operand
	aLKey       regKey // the loop-counter register (aL / loop register)
}

// dispatchIf handles IF and IFC (spec.md §4.7/§4.8).
func (tr *Transpiler) dispatchIf(op d3dsm.Opcode, tok d3dsm.Token) {
	var cond uint32
	boolT := tr.types.ID(Scalar(TagBool))
	if op == d3dsm.OpIf {
		src := tr.reader.Next()
		v := tr.resolve(src, ShapeScalar)
		if d, ok := tr.idt.typeOf(v); !ok || d.Primary != TagBool {
			zero := tr.b.AddConstantFloat32(tr.types.ID(Scalar(TagFloat)), 0)
			cond = tr.b.AddBinaryOp(spirv.OpFOrdGreaterThan, boolT, v, zero)
		} else {
			cond = v
		}
	} else { // OpIfC: compare two scalar sources with the predicate in the control bits
		a := tr.reader.Next()
		b := tr.reader.Next()
		av := tr.resolve(a, ShapeScalar)
		bv := tr.resolve(b, ShapeScalar)
		cond = tr.compareOp(d3dsm.OpcodeCtrl(tok), av, bv, boolT)
	}

	thenLabel := tr.b.AllocID()
	elseLabel := tr.b.AllocID()
	mergeLabel := tr.b.AllocID()
	tr.b.AddSelectionMerge(mergeLabel, spirv.SelectionControlNone)
	tr.b.AddBranchConditional(cond, thenLabel, elseLabel)
	tr.emitLabel(thenLabel)
	tr.ifStack = append(tr.ifStack, ifFrame{state: ifInThen, thenLabel: thenLabel, elseLabel: elseLabel, mergeLabel: mergeLabel})
}

// compareOp implements the six IFC predicates (spec.md §4.7): D3DSPC_GT=0,
// EQ=1, GE=2, LT=3, NE=4, LE=5.
func (tr *Transpiler) compareOp(predicate uint32, a, b, resultT uint32) uint32 {
	switch predicate {
	case 0:
		return tr.b.AddBinaryOp(spirv.OpFOrdGreaterThan, resultT, a, b)
	case 1:
		return tr.b.AddBinaryOp(spirv.OpFOrdEqual, resultT, a, b)
	case 2:
		return tr.b.AddBinaryOp(spirv.OpFOrdGreaterThanEqual, resultT, a, b)
	case 3:
		return tr.b.AddBinaryOp(spirv.OpFOrdLessThan, resultT, a, b)
	case 4:
		return tr.b.AddBinaryOp(spirv.OpFOrdNotEqual, resultT, a, b)
	case 5:
		return tr.b.AddBinaryOp(spirv.OpFOrdLessThanEqual, resultT, a, b)
	default:
		tr.warnf(contractViolation, "unrecognized IFC predicate %d; defaulting to greater-than", predicate)
		return tr.b.AddBinaryOp(spirv.OpFOrdGreaterThan, resultT, a, b)
	}
}

func (tr *Transpiler) dispatchElse() {
	n := len(tr.ifStack)
	if n == 0 {
		tr.warnf(contractViolation, "ELSE with no matching IF; ignored")
		return
	}
	f := &tr.ifStack[n-1]
	if f.state != ifInThen {
		tr.warnf(contractViolation, "ELSE out of sequence; ignored")
		return
	}
	tr.b.AddBranch(f.mergeLabel)
	tr.emitLabel(f.elseLabel)
	f.state = ifSawElse
}

func (tr *Transpiler) dispatchEndIf() {
	n := len(tr.ifStack)
	if n == 0 {
		tr.warnf(contractViolation, "ENDIF with no matching IF; ignored")
		return
	}
	f := tr.ifStack[n-1]
	tr.ifStack = tr.ifStack[:n-1]
	if f.state == ifInThen {
		// No ELSE: close the then-arm and emit the empty else-arm that the
		// conditional branch's false edge targets.
		tr.b.AddBranch(f.mergeLabel)
		tr.emitLabel(f.elseLabel)
	}
	tr.b.AddBranch(f.mergeLabel)
	tr.emitLabel(f.mergeLabel)
}

// dispatchLoop handles LOOP and REP (spec.md §4.7/§4.8, exercised by spec
// §8 scenario 5). Both compile to the same SPIR-V structured-loop idiom: a
// header block with OpLoopMerge and an OpPhi counter, a body block, and a
// continue block that increments the counter and branches back.
func (tr *Transpiler) dispatchLoop(op d3dsm.Opcode) {
	kind := loopKindLoop
	var aLKey regKey
	var tripCount uint32
	intT := tr.types.ID(Scalar(TagInt))

	if op == d3dsm.OpLoop {
		aLSrc := tr.reader.Next()
		countSrc := tr.reader.Next()
		aLKey = regKey{Class: d3dsm.RegType(aLSrc), Number: d3dsm.RegNumber(aLSrc)}
		countVec := tr.resolve(countSrc, ShapeVec4)
		tripCount = tr.b.AddCompositeExtract(intT, countVec, 0)
	} else {
		kind = loopKindRep
		countSrc := tr.reader.Next()
		countVec := tr.resolve(countSrc, ShapeVec4)
		tripCount = tr.b.AddCompositeExtract(intT, countVec, 0)
	}

	preheader := tr.b.AllocID()
	tr.b.AddBranch(preheader)
	tr.emitLabel(preheader)

	header := tr.b.AllocID()
	body := tr.b.AllocID()
	continueLabel := tr.b.AllocID()
	merge := tr.b.AllocID()

	tr.b.AddBranch(header)
	tr.emitLabel(header)

	zero := tr.b.AddConstant(intT, 0)
	counterPhi := tr.b.AddPhi(intT, zero, preheader)
	tr.b.AddLoopMerge(merge, continueLabel, spirv.LoopControlNone)
	tr.b.AddBranch(body)
	tr.emitLabel(body)

	boolT := tr.types.ID(Scalar(TagBool))
	cond := tr.b.AddBinaryOp(spirv.OpSLessThanEqual, boolT, counterPhi, tripCount)
	bodyStart := tr.b.AllocID()
	tr.b.AddBranchConditional(cond, bodyStart, merge)
	tr.emitLabel(bodyStart)

	if kind == loopKindLoop {
		tr.bindAddressCounter(aLKey, counterPhi)
	}

	tr.loopStack = append(tr.loopStack, loopFrame{
		kind:          kind,
		headerLabel:   header,
		bodyLabel:     bodyStart,
		continueLabel: continueLabel,
		mergeLabel:    merge,
		counterPhi:    counterPhi,
		tripCount:     tripCount,
		aLKey:         aLKey,
	})
}

// bindAddressCounter makes the LOOP counter readable as an integer register
// (aL), so arithmetic.go/resolver.go can resolve it like any other source.
func (tr *Transpiler) bindAddressCounter(key regKey, counter uint32) {
	tr.idt.setType(counter, Scalar(TagInt))
	tr.idt.bind(key, counter)
}

func (tr *Transpiler) dispatchEndLoop() {
	n := len(tr.loopStack)
	if n == 0 {
		tr.warnf(contractViolation, "ENDLOOP/ENDREP with no matching LOOP/REP; ignored")
		return
	}
	f := tr.loopStack[n-1]
	tr.loopStack = tr.loopStack[:n-1]

	tr.b.AddBranch(f.continueLabel)
	tr.emitLabel(f.continueLabel)
	intT := tr.types.ID(Scalar(TagInt))
	one := tr.b.AddConstant(intT, 1)
	next := tr.b.AddBinaryOp(spirv.OpIAdd, intT, f.counterPhi, one)
	tr.b.PatchPhiIncoming(f.counterPhi, next, f.continueLabel)
	tr.b.AddBranch(f.headerLabel)

	tr.emitLabel(f.mergeLabel)
}

func (tr *Transpiler) dispatchBreak() {
	if len(tr.loopStack) == 0 {
		tr.warnf(contractViolation, "BREAK outside any loop; ignored")
		return
	}
	f := tr.loopStack[len(tr.loopStack)-1]
	tr.b.AddBranch(f.mergeLabel)
	unreachable := tr.b.AllocID()
	tr.emitLabel(unreachable)
}

// emitLabel opens a new basic block. Every basic block needs exactly one
// OpLabel; callers are responsible for having terminated the previous block
// first (AddBranch/AddBranchConditional/AddKill/AddReturn).
func (tr *Transpiler) emitLabel(id uint32) {
	tr.b.AddLabelWithID(id)
}
