package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	Bit-layout planner: turns a completed BitSequence field
 *		into a region-based TransmissionPlan (header nibble, whole
 *		data bytes, trailer nibble/bits, pad) ready for an
 *		MSB-first serial HAL.
 *
 *--------------------------------------------------------------*/

// planField computes the TransmissionPlan for one field of seq. cursor is
// the field's DigitCursor at command-completion time (the number of
// specified hex digits is derived from it, not from re-scanning the
// buffer).
func planField(field BitField, seq *BitSequence, cursor int32) TransmissionPlan {
	length := seq.LengthBits
	digitLen := int(((length + 3) / 4)) - 1 - int(cursor)
	byteLen := (digitLen + 1) / 2
	bitsRemaining := int(length) - 8*byteLen
	firstByte := (int(cursor) + 1) / 2

	mem := seq.Buffer[field]
	if firstByte > len(mem) {
		firstByte = len(mem)
	}
	mem = mem[firstByte:]

	completeBytes := byteLen
	if bitsRemaining < 0 && -bitsRemaining > 3 {
		completeBytes = byteLen - 1
	}

	padValue := byte(0x00)
	if field == FieldMask || field == FieldSMask {
		padValue = 0xFF
	}

	plan := TransmissionPlan{Field: field, PadValue: padValue}

	if digitLen <= 0 {
		return plan
	}

	pos := 0
	headerPresent := false
	truncating := bitsRemaining < 0
	printFirstNibble := false
	if !truncating {
		printFirstNibble = bitsRemaining&7 >= 1 && bitsRemaining&7 <= 4
	} else {
		printFirstNibble = -bitsRemaining >= 1 && -bitsRemaining <= 3
	}

	if printFirstNibble && len(mem) > 0 {
		plan.HeaderByte = mem[0] >> 4
		plan.HeaderBits = 4
		headerPresent = true
		pos = 1
	}

	if completeBytes > pos {
		end := completeBytes
		if end > len(mem) {
			end = len(mem)
		}
		plan.Data = append([]byte(nil), mem[pos:end]...)
	}

	j := completeBytes
	if headerPresent && bitsRemaining > 0 && j < len(mem) {
		plan.TrailerByte = mem[j] & 0x0F
		plan.TrailerBits = 4
		mem[j] |= padValue & 0xF0
	}

	if bitsRemaining != 0 {
		additionalBits := uint32(8+bitsRemaining) & 7
		var additionalBytes uint32
		if bitsRemaining >= 0 {
			additionalBytes = uint32(bitsRemaining) / 8
		}
		plan.PadBits = additionalBits
		if additionalBits > 0 && plan.TrailerBits == 0 {
			if bitsRemaining < 0 && j < len(mem) {
				maskByte := byte(0xFF) << additionalBits
				mem[j] |= padValue & maskByte
				plan.TrailerByte = mem[j] & ^maskByte
				plan.TrailerBits = uint8(additionalBits)
				plan.PadBits = additionalBytes * 8
			} else {
				plan.PadBits = additionalBits
			}
		}
		plan.PadBytes = additionalBytes
	}

	return plan
}

// shouldEmit applies the emission rule from the bit-layout component
// design: TDI always drives; TDO present emits MASK too (for compare);
// MASK with no TDO specified this command is skipped.
func shouldEmit(field BitField, seq *BitSequence, tdoDigitLen int) bool {
	switch field {
	case FieldTDI, FieldSMask:
		return seq.Allocated[field] > 0
	case FieldTDO:
		return seq.Allocated[field] > 0 && tdoDigitLen > 0
	case FieldMask:
		return seq.Allocated[field] > 0 && tdoDigitLen > 0
	default:
		return false
	}
}

// planBitSequence computes the TransmissionPlan for every emittable field
// of a completed bit-sequence command, in the original's field order
// (TDO, TDI, MASK, SMASK).
func planBitSequence(seq *BitSequence) []TransmissionPlan {
	length := seq.LengthBits
	tdoDigitLen := int((length+3)/4) - 1 - int(seq.DigitCursor[FieldTDO])

	var plans []TransmissionPlan
	for f := BitField(0); f < fieldCount; f++ {
		if seq.Allocated[f] == 0 {
			continue
		}
		if !shouldEmit(f, seq, tdoDigitLen) {
			continue
		}
		plans = append(plans, planField(f, seq, seq.DigitCursor[f]))
	}
	return plans
}
