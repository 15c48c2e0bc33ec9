package dex

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const tryItemSize = 8 // start_addr(4) + insn_count(2) + handler_off(2)

// TryItem is a try_item: a range of instruction addresses covered by one
// set of exception handlers.
type TryItem struct {
	StartAddr  uint32
	InsnCount  uint16
	HandlerOff uint16
}

func (ci *CodeItem) tryItem(i uint32) TryItem {
	p := ci.triesOff + i*tryItemSize
	return TryItem{
		StartAddr:  binary.LittleEndian.Uint32(ci.buf[p : p+4]),
		InsnCount:  binary.LittleEndian.Uint16(ci.buf[p+4 : p+6]),
		HandlerOff: binary.LittleEndian.Uint16(ci.buf[p+6 : p+8]),
	}
}

// GetTryItem returns the i'th try_item of a code item with tries.
func (ci *CodeItem) GetTryItem(i uint32) (TryItem, error) {
	if i >= uint32(ci.TriesSize) {
		return TryItem{}, errors.Wrapf(ErrOutOfRange, "try_item index %d >= %d", i, ci.TriesSize)
	}
	return ci.tryItem(i), nil
}

// catchHandlerDataOffset is the absolute offset of the catch handler data
// block: it immediately follows the try_item table.
func (ci *CodeItem) catchHandlerDataOffset() uint32 {
	return ci.triesOff + uint32(ci.TriesSize)*tryItemSize
}

// CatchHandlerData returns the raw handler-data bytes at a handler_off
// relative to the base of the catch handler data block.
func (ci *CodeItem) CatchHandlerData(handlerOff uint16) []byte {
	base := ci.catchHandlerDataOffset()
	return ci.buf[base+uint32(handlerOff):]
}

// FindCatchHandlerOffset performs a linear scan over ci's try items,
// returning the handler_off of the first try range covering address, or -1
// when none does (including when TriesSize == 0).
func FindCatchHandlerOffset(ci *CodeItem, address uint32) int32 {
	for i := uint32(0); i < uint32(ci.TriesSize); i++ {
		t := ci.tryItem(i)
		if address >= t.StartAddr && address < t.StartAddr+uint32(t.InsnCount) {
			return int32(t.HandlerOff)
		}
	}
	return -1
}

// CatchHandlerIterator decodes one catch_handler list: a signed LEB128
// count (positive: N typed handlers and no catch-all; non-positive: |N|
// typed handlers followed by one catch-all), then that many
// (type_idx, address) pairs and an optional trailing (address) catch-all.
//
// Usage: for it.HasNext() { it.Next(); use(it.TypeIdx(), it.Address()) }.
type CatchHandlerIterator struct {
	r         *bytes.Reader
	remaining int32
	catchAll  bool

	curTypeIdx uint16
	curAddr    uint32
}

// NewCatchHandlerIterator decodes the catch_handler list at handlerData.
func NewCatchHandlerIterator(handlerData []byte) (*CatchHandlerIterator, error) {
	r := bytes.NewReader(handlerData)
	size, err := readSLEB128(r)
	if err != nil {
		return nil, errors.Wrap(err, "catch_handler size")
	}
	it := &CatchHandlerIterator{r: r}
	if size > 0 {
		it.remaining = int32(size)
		it.catchAll = false
	} else {
		it.remaining = int32(-size)
		it.catchAll = true
	}
	return it, nil
}

// HasNext reports whether another handler (typed or catch-all) remains.
// The terminal state is remaining == -1 && !catchAll.
func (it *CatchHandlerIterator) HasNext() bool {
	return it.remaining > 0 || it.catchAll
}

// Next consumes and decodes the next handler, updating TypeIdx/Address.
func (it *CatchHandlerIterator) Next() error {
	if it.remaining > 0 {
		typeIdx, err := readULEB128(it.r)
		if err != nil {
			return errors.Wrap(err, "catch_handler type_idx")
		}
		addr, err := readULEB128(it.r)
		if err != nil {
			return errors.Wrap(err, "catch_handler address")
		}
		it.curTypeIdx = uint16(typeIdx)
		it.curAddr = uint32(addr)
		it.remaining--
		if it.remaining == 0 && !it.catchAll {
			it.remaining = -1
		}
		return nil
	}
	if it.catchAll {
		addr, err := readULEB128(it.r)
		if err != nil {
			return errors.Wrap(err, "catch_handler catch-all address")
		}
		it.curTypeIdx = NoIndex16
		it.curAddr = uint32(addr)
		it.catchAll = false
		it.remaining = -1
		return nil
	}
	return errors.Wrap(ErrOutOfRange, "catch_handler iterator exhausted")
}

// TypeIdx returns the current handler's exception type index, or
// NoIndex16 for the catch-all handler.
func (it *CatchHandlerIterator) TypeIdx() uint16 { return it.curTypeIdx }

// Address returns the current handler's code address.
func (it *CatchHandlerIterator) Address() uint32 { return it.curAddr }
