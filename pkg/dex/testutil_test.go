package dex

import "bytes"

// appendULEB128 appends the ULEB128 encoding of v to buf.
func appendULEB128(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf.WriteByte(b | 0x80)
		} else {
			buf.WriteByte(b)
			return
		}
	}
}

// appendULEB128p1 appends the "ULEB128 plus 1" encoding of v (NoIndex32
// encodes as a plain ULEB128 zero).
func appendULEB128p1(buf *bytes.Buffer, v uint32) {
	if v == NoIndex32 {
		appendULEB128(buf, 0)
		return
	}
	appendULEB128(buf, uint64(v)+1)
}

// appendSLEB128 appends the SLEB128 encoding of v to buf.
func appendSLEB128(buf *bytes.Buffer, v int64) {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			more = false
		} else {
			b |= 0x80
		}
		buf.WriteByte(b)
	}
}

func putU16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}

func putU32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func pad4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

// sampleDex builds a small, hand-laid-out but fully valid DEX image:
//
//	class Lpkg/Foo; extends Ljava/lang/Object; {
//	    static int value = 42;
//	    void bar(int) { ... one try/catch-all region, one debug position ... }
//	}
//
// Every offset is computed as the buffer is assembled, so it stays valid
// under edits as long as sections keep being appended in the order below.
func sampleDex() []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, HeaderSize)) // patched at the end

	strs := []string{"Foo.java", "I", "Ljava/lang/Object;", "Lpkg/Foo;", "V", "VI", "bar", "value"}
	strOff := make([]uint32, len(strs))
	for i, s := range strs {
		strOff[i] = uint32(buf.Len())
		appendULEB128(&buf, uint64(len(s)))
		buf.WriteString(s)
		buf.WriteByte(0)
	}

	pad4(&buf)
	stringIdsOff := uint32(buf.Len())
	for _, o := range strOff {
		putU32(&buf, o)
	}

	pad4(&buf)
	typeIdsOff := uint32(buf.Len())
	typeDescStrIdx := []uint32{1, 2, 3, 4} // I, Ljava/lang/Object;, Lpkg/Foo;, V
	for _, si := range typeDescStrIdx {
		putU32(&buf, si)
	}

	pad4(&buf)
	paramsListOff := uint32(buf.Len())
	putU32(&buf, 1) // size
	putU16(&buf, 0) // type_idx 0 = I
	putU16(&buf, 0) // pad to keep the table 4-aligned for what follows

	pad4(&buf)
	protoIdsOff := uint32(buf.Len())
	putU32(&buf, 5) // shorty_idx -> "VI"
	putU16(&buf, 3) // return_type_idx -> V (type index 3)
	putU16(&buf, 0) // pad
	putU32(&buf, paramsListOff)

	pad4(&buf)
	fieldIdsOff := uint32(buf.Len())
	putU16(&buf, 2) // class_idx -> Lpkg/Foo;
	putU16(&buf, 0) // type_idx -> I
	putU32(&buf, 7) // name_idx -> "value"

	pad4(&buf)
	methodIdsOff := uint32(buf.Len())
	putU16(&buf, 2) // class_idx -> Lpkg/Foo;
	putU16(&buf, 0) // proto_idx
	putU32(&buf, 6) // name_idx -> "bar"

	// debug_info_item
	debugInfoOff := uint32(buf.Len())
	appendULEB128(&buf, 1) // line_start
	appendULEB128(&buf, 1) // parameters_size
	appendULEB128p1(&buf, NoIndex32)
	buf.WriteByte(0x0e) // special opcode: address+=0, line+=0, emits (0,1)
	buf.WriteByte(0x00) // DBG_END_SEQUENCE

	// code_item
	pad4(&buf)
	codeItemOff := uint32(buf.Len())
	putU16(&buf, 2) // registers_size
	putU16(&buf, 2) // ins_size (this + int param)
	putU16(&buf, 0) // outs_size
	putU16(&buf, 1) // tries_size
	putU32(&buf, debugInfoOff)
	putU32(&buf, 4) // insns_size (code units)
	for i := 0; i < 4; i++ {
		putU16(&buf, 0) // nop
	}
	// try_item table (insns end is already 4-aligned: 16 + 8 = 24)
	putU32(&buf, 0) // start_addr
	putU16(&buf, 4) // insn_count
	putU16(&buf, 1) // handler_off (byte 1 of the catch_handler_list below)
	// encoded_catch_handler_list
	appendULEB128(&buf, 1)  // list size: 1 encoded_catch_handler
	appendSLEB128(&buf, 0)  // this handler: 0 typed + a catch-all
	appendULEB128(&buf, 2)  // catch-all address

	// encoded_array (static field initializer for "value")
	staticValuesOff := uint32(buf.Len())
	appendULEB128(&buf, 1) // 1 element
	buf.WriteByte(0x04)    // header: arg_size-1=0, type=ValueInt
	buf.WriteByte(42)      // payload

	// class_data_item
	classDataOff := uint32(buf.Len())
	appendULEB128(&buf, 1) // static_fields_size
	appendULEB128(&buf, 0) // instance_fields_size
	appendULEB128(&buf, 0) // direct_methods_size
	appendULEB128(&buf, 1) // virtual_methods_size
	appendULEB128(&buf, 0) // static field #0: field_idx_delta
	appendULEB128(&buf, 0x09) // access_flags (public static)
	appendULEB128(&buf, 0)    // virtual method #0: method_idx_delta
	appendULEB128(&buf, 0x01) // access_flags (public)
	appendULEB128(&buf, uint64(codeItemOff))

	pad4(&buf)
	classDefsOff := uint32(buf.Len())
	putU16(&buf, 2) // class_idx -> Lpkg/Foo;
	putU16(&buf, 0) // pad1
	putU32(&buf, 1) // access_flags (public)
	putU16(&buf, 1) // superclass_idx -> Ljava/lang/Object;
	putU16(&buf, 0) // pad2
	putU32(&buf, 0) // interfaces_off
	putU32(&buf, 0) // source_file_idx -> "Foo.java"
	putU32(&buf, 0) // annotations_off
	putU32(&buf, classDataOff)
	putU32(&buf, staticValuesOff)

	out := buf.Bytes()

	// Patch the header now that every offset is known.
	h := out[:HeaderSize]
	copy(h[0:8], []byte("dex\n035\x00"))
	putU32LE(h[8:12], 0)  // checksum, unchecked by this package
	putU32LE(h[32:36], uint32(len(out)))
	putU32LE(h[36:40], HeaderSize)
	putU32LE(h[40:44], 0x12345678)
	putU32LE(h[56:60], uint32(len(strs)))
	putU32LE(h[60:64], stringIdsOff)
	putU32LE(h[64:68], uint32(len(typeDescStrIdx)))
	putU32LE(h[68:72], typeIdsOff)
	putU32LE(h[72:76], 1)
	putU32LE(h[76:80], protoIdsOff)
	putU32LE(h[80:84], 1)
	putU32LE(h[84:88], fieldIdsOff)
	putU32LE(h[88:92], 1)
	putU32LE(h[92:96], methodIdsOff)
	putU32LE(h[96:100], 1)
	putU32LE(h[100:104], classDefsOff)

	return out
}

func putU32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
