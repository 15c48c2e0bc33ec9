package dex

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
)

// DBG_* opcodes of the debug_info_item bytecode, per spec.md §4.9.
const (
	dbgEndSequence         = 0x00
	dbgAdvancePC           = 0x01
	dbgAdvanceLine         = 0x02
	dbgStartLocal          = 0x03
	dbgStartLocalExtended  = 0x04
	dbgEndLocal            = 0x05
	dbgRestartLocal        = 0x06
	dbgSetPrologueEnd      = 0x07
	dbgSetEpilogueBegin    = 0x08
	dbgSetFile             = 0x09
	dbgFirstSpecial        = 0x0a
	dbgLineBase            = -4
	dbgLineRange           = 15
)

// PositionEvent is one (address -> line) mapping emitted while decoding a
// debug_info_item.
type PositionEvent struct {
	Address       uint32
	Line          uint32
	PrologueEnd   bool
	EpilogueBegin bool
}

// LocalEvent is one completed register-scoped local-variable range.
type LocalEvent struct {
	Register  uint16
	StartAddr uint32
	EndAddr   uint32
	NameIdx   uint32 // NoIndex32 if absent
	TypeIdx   uint32 // NoIndex32 if absent
	SigIdx    uint32 // NoIndex32 if absent, only set by DBG_START_LOCAL_EXTENDED
	IsThis    bool   // true for the implicit "this" local synthesized from is_static/method_idx
}

type liveLocal struct {
	startAddr uint32
	nameIdx   uint32
	typeIdx   uint32
	sigIdx    uint32
	isThis    bool
}

// DecodeDebugInfo runs the debug_info_item state machine for ci, invoking
// onPosition for every special opcode (DBG_ADVANCE_PC and DBG_ADVANCE_LINE
// emit no position of their own) and onLocal for every completed
// local-variable range. Either callback may be nil. Returning true from
// onPosition stops decoding early (mirrors a line-number lookup that found
// its target).
//
// isStatic and methodIdx identify the method ci belongs to (a method_ids
// index): per spec.md §4.9 "Initial state", the register table starts
// primed with the method's implicit argument locals — this (unless
// isStatic) at register registers_size-ins_size, then each declared
// parameter in subsequent registers, wide types (J, D) spanning two —
// each live from address 0 with no signature. Priming is skipped when
// onLocal is nil, since there would be nothing to observe it.
func (img *Image) DecodeDebugInfo(ci *CodeItem, isStatic bool, methodIdx uint32, onPosition func(PositionEvent) bool, onLocal func(LocalEvent)) error {
	if ci == nil || ci.DebugInfoOff == 0 {
		return nil
	}
	if uint64(ci.DebugInfoOff) >= uint64(len(img.buf)) {
		return errors.Wrap(ErrBadOffset, "debug_info_off out of range")
	}
	r := bytes.NewReader(img.buf[ci.DebugInfoOff:])

	lineStart, err := readULEB128(r)
	if err != nil {
		return errors.Wrap(err, "debug_info line_start")
	}
	paramsSize, err := readULEB128(r)
	if err != nil {
		return errors.Wrap(err, "debug_info parameters_size")
	}
	paramNames := make([]uint32, paramsSize)
	for i := range paramNames {
		nameIdx, err := readULEB128p1(r)
		if err != nil {
			return errors.Wrap(err, "debug_info parameter_name_idx")
		}
		paramNames[i] = uint32(nameIdx)
	}

	address := uint32(0)
	line := uint32(lineStart)
	live := make(map[uint16]liveLocal)
	var pendingPrologueEnd, pendingEpilogueBegin bool

	if onLocal != nil {
		if err := img.primeArgumentLocals(ci, isStatic, methodIdx, paramNames, live); err != nil {
			return err
		}
	}

	emitLocalEnd := func(reg uint16, endAddr uint32) {
		if onLocal == nil {
			return
		}
		if l, ok := live[reg]; ok {
			onLocal(LocalEvent{
				Register:  reg,
				StartAddr: l.startAddr,
				EndAddr:   endAddr,
				NameIdx:   l.nameIdx,
				TypeIdx:   l.typeIdx,
				SigIdx:    l.sigIdx,
				IsThis:    l.isThis,
			})
		}
	}

	for {
		opcodeByte, err := r.ReadByte()
		if err != nil {
			return errors.Wrap(err, "debug_info opcode")
		}
		opcode := int(opcodeByte)

		switch {
		case opcode == dbgEndSequence:
			regs := make([]uint16, 0, len(live))
			for reg := range live {
				regs = append(regs, reg)
			}
			sort.Slice(regs, func(i, j int) bool { return regs[i] < regs[j] })
			for _, reg := range regs {
				emitLocalEnd(reg, address)
			}
			return nil

		case opcode == dbgAdvancePC:
			addrDiff, err := readULEB128(r)
			if err != nil {
				return errors.Wrap(err, "DBG_ADVANCE_PC")
			}
			address += uint32(addrDiff)

		case opcode == dbgAdvanceLine:
			lineDiff, err := readSLEB128(r)
			if err != nil {
				return errors.Wrap(err, "DBG_ADVANCE_LINE")
			}
			line = uint32(int64(line) + lineDiff)

		case opcode == dbgStartLocal:
			reg, err := readULEB128(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL register")
			}
			nameIdx, err := readULEB128p1(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL name_idx")
			}
			typeIdx, err := readULEB128p1(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL type_idx")
			}
			emitLocalEnd(uint16(reg), address)
			live[uint16(reg)] = liveLocal{startAddr: address, nameIdx: uint32(nameIdx), typeIdx: uint32(typeIdx), sigIdx: NoIndex32}

		case opcode == dbgStartLocalExtended:
			reg, err := readULEB128(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL_EXTENDED register")
			}
			nameIdx, err := readULEB128p1(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL_EXTENDED name_idx")
			}
			typeIdx, err := readULEB128p1(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL_EXTENDED type_idx")
			}
			sigIdx, err := readULEB128p1(r)
			if err != nil {
				return errors.Wrap(err, "DBG_START_LOCAL_EXTENDED sig_idx")
			}
			emitLocalEnd(uint16(reg), address)
			live[uint16(reg)] = liveLocal{startAddr: address, nameIdx: uint32(nameIdx), typeIdx: uint32(typeIdx), sigIdx: uint32(sigIdx)}

		case opcode == dbgEndLocal:
			reg, err := readULEB128(r)
			if err != nil {
				return errors.Wrap(err, "DBG_END_LOCAL register")
			}
			emitLocalEnd(uint16(reg), address)
			delete(live, uint16(reg))

		case opcode == dbgRestartLocal:
			reg, err := readULEB128(r)
			if err != nil {
				return errors.Wrap(err, "DBG_RESTART_LOCAL register")
			}
			if l, ok := live[uint16(reg)]; ok {
				live[uint16(reg)] = liveLocal{startAddr: address, nameIdx: l.nameIdx, typeIdx: l.typeIdx, sigIdx: l.sigIdx}
			}

		case opcode == dbgSetPrologueEnd:
			// Advisory: no effect on callbacks (spec.md §4.9). Recorded and
			// attached to the next emitted position, matching ART's
			// DecodeDebugInfo pending-flag behavior rather than emitting a
			// spurious position of its own.
			pendingPrologueEnd = true

		case opcode == dbgSetEpilogueBegin:
			pendingEpilogueBegin = true

		case opcode == dbgSetFile:
			if _, err := readULEB128p1(r); err != nil {
				return errors.Wrap(err, "DBG_SET_FILE name_idx")
			}

		default: // special opcode: adjust line and address, emit a position
			adjusted := opcode - dbgFirstSpecial
			address += uint32(adjusted / dbgLineRange)
			line = uint32(int64(line) + int64(dbgLineBase+adjusted%dbgLineRange))
			ev := PositionEvent{Address: address, Line: line, PrologueEnd: pendingPrologueEnd, EpilogueBegin: pendingEpilogueBegin}
			pendingPrologueEnd, pendingEpilogueBegin = false, false
			if onPosition != nil && onPosition(ev) {
				return nil
			}
		}
	}
}

// primeArgumentLocals installs the implicit "this"/parameter locals
// (spec.md §4.9 "Initial state") into live before the opcode stream is
// interpreted.
func (img *Image) primeArgumentLocals(ci *CodeItem, isStatic bool, methodIdx uint32, paramNames []uint32, live map[uint16]liveLocal) error {
	m, err := img.GetMethodId(methodIdx)
	if err != nil {
		return errors.Wrap(err, "debug_info: resolving method for implicit locals")
	}
	proto, err := img.GetProtoId(uint32(m.ProtoIdx))
	if err != nil {
		return errors.Wrap(err, "debug_info: resolving proto for implicit locals")
	}
	params, err := img.GetProtoParameters(proto)
	if err != nil {
		return errors.Wrap(err, "debug_info: resolving parameters for implicit locals")
	}

	reg := ci.RegistersSize - ci.InsSize
	if !isStatic {
		live[reg] = liveLocal{nameIdx: NoIndex32, typeIdx: uint32(m.ClassIdx), sigIdx: NoIndex32, isThis: true}
		reg++
	}

	var n uint32
	if params != nil {
		n = params.Size()
	}
	for i := uint32(0); i < n; i++ {
		typeIdx, err := params.TypeIdx(i)
		if err != nil {
			return errors.Wrap(err, "debug_info: resolving parameter type for implicit locals")
		}
		nameIdx := uint32(NoIndex32)
		if i < uint32(len(paramNames)) {
			nameIdx = paramNames[i]
		}
		live[reg] = liveLocal{nameIdx: nameIdx, typeIdx: uint32(typeIdx), sigIdx: NoIndex32}
		reg++
		if img.isWideTypeIdx(typeIdx) {
			reg++
		}
	}
	return nil
}

// isWideTypeIdx reports whether the type at typeIdx is J (long) or D
// (double), the two descriptors that occupy two registers.
func (img *Image) isWideTypeIdx(typeIdx uint16) bool {
	t, err := img.typeIds.Get(uint32(typeIdx))
	if err != nil {
		return false
	}
	desc := img.GetTypeDescriptor(t)
	return len(desc) > 0 && (desc[0] == 'J' || desc[0] == 'D')
}

// GetLineNumFromPC returns the source line active at a bytecode address
// within ci. It returns -1 when the method carries no debug_info_item and
// -2 when the method is native (ci == nil, i.e. GetCodeItem found no
// code_item), per spec.md §4.9.
func (img *Image) GetLineNumFromPC(ci *CodeItem, isStatic bool, methodIdx uint32, pc uint32) (int32, error) {
	if ci == nil {
		return -2, nil
	}
	if ci.DebugInfoOff == 0 {
		return -1, nil
	}
	line := int32(-1)
	err := img.DecodeDebugInfo(ci, isStatic, methodIdx, func(ev PositionEvent) bool {
		if ev.Address > pc {
			return true
		}
		line = int32(ev.Line)
		return false
	}, nil)
	return line, err
}
