package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	Bit-sequence sub-parser shared by HDR, HIR, SDR, SIR, TDR
 *		and TIR:
 *
 *			LENGTH ( NAME '(' HEXDIGITS ')' )* ';'
 *
 *		NAME in {TDI, TDO, MASK, SMASK}. TDI, MASK and SMASK are
 *		sticky across commands of the same kind; TDO's cursor
 *		always resets to the top of the buffer on command entry.
 *
 *--------------------------------------------------------------*/

type bitSeqState int

const (
	bsInit bitSeqState = iota
	bsLength
	bsName
	bsValueOpen
	bsValue
	bsName1
	bsComplete
	bsError
)

// bfNameMaxLen bounds a field name token (longest is "SMASK", 5 chars).
const bfNameMaxLen = 5

type bitSeqParser struct {
	state      bitSeqState
	nameBuf    []byte
	tokenField BitField
	haveField  bool
	digitIndex int32
}

func newBitSeqParser() *bitSeqParser {
	p := &bitSeqParser{}
	p.resetCommand(nil)
	return p
}

// resetCommand is invoked on command entry (the '\0' reset in the
// reference implementation): TDI/MASK/SMASK stay sticky, but TDO's
// cursor always snaps back to the top of its buffer.
func (p *bitSeqParser) resetCommand(seq *BitSequence) {
	p.state = bsInit
	p.nameBuf = p.nameBuf[:0]
	p.haveField = false
	p.digitIndex = 0
	if seq != nil {
		seq.DigitCursor[FieldTDO] = int32(seq.Allocated[FieldTDO])*2 - 1
	}
}

// resetFull is invoked on a hard reset (the original's '!' case): unlike
// resetCommand, this zeroes the cursor of all four fields and clears the
// declared length; the buffers themselves are left as they are (the
// stream reset in parser.go clears them before calling this). This asymmetry with
// resetCommand (which only snaps TDO) mirrors a documented inconsistency
// in the reference implementation -- see DESIGN.md -- and is preserved
// rather than silently normalized.
func (p *bitSeqParser) resetFull(seq *BitSequence) {
	p.state = bsInit
	p.nameBuf = p.nameBuf[:0]
	p.haveField = false
	p.digitIndex = 0
	if seq != nil {
		for i := range seq.DigitCursor {
			seq.DigitCursor[i] = 0
		}
		seq.LengthBits = 0
	}
}

// feed consumes one lexed character, mutating seq in place. It returns a
// non-nil *ParseError on Syntax/Semantic/Overrun faults; the caller
// decides whether to resync to ';' (always, per spec) and whether to log
// (always, since none of these are fatal).
func (p *bitSeqParser) feed(c byte, seq *BitSequence, cfg Config, logger *Logger) *ParseError {
	switch p.state {
	case bsInit:
		if c == ';' {
			p.state = bsError
			return newParseError(SeveritySyntax, 0, "bit-sequence command with no length")
		}
		if isDigit(c) {
			seq.LengthBits = uint32(c - '0')
			p.state = bsLength
		}
		return nil

	case bsLength:
		switch {
		case isDigit(c):
			seq.LengthBits = seq.LengthBits*10 + uint32(c-'0')
		case c == ' ':
			p.nameBuf = p.nameBuf[:0]
			p.haveField = false
			p.state = bsName
			for i := range seq.DigitCursor {
				if seq.LengthPrev[i] != seq.LengthBits {
					seq.DigitCursor[i] = int32((seq.LengthBits+3)/4) - 1
				}
			}
		case c == ';':
			if seq.LengthBits == 0 {
				p.state = bsComplete
			} else {
				p.state = bsError
				return newParseError(SeveritySyntax, 0, "bit-sequence terminated before any field")
			}
		default:
			p.state = bsError
			return newParseError(SeveritySyntax, 0, "malformed length")
		}
		return nil

	case bsName:
		if c == ' ' || c == '(' {
			field, ok := lookupBitField(string(p.nameBuf))
			p.haveField = ok
			if ok {
				p.tokenField = field
			}
			p.state = bsValueOpen
			if !ok {
				return newParseError(SeverityUnknownCommand, 0, "unknown bit field name "+string(p.nameBuf))
			}
			if c == '(' {
				return p.feed(c, seq, cfg, logger)
			}
			return nil
		}
		if c >= 'A' && c <= 'Z' {
			if len(p.nameBuf) < bfNameMaxLen {
				p.nameBuf = append(p.nameBuf, c)
				return nil
			}
			p.state = bsError
			return newParseError(SeveritySyntax, 0, "bit field name too long")
		}
		p.state = bsError
		return newParseError(SeveritySyntax, 0, "unexpected character in bit field name")

	case bsValueOpen:
		if c == '(' {
			if !p.haveField {
				p.state = bsError
				return newParseError(SeveritySemantic, 0, "field value with unknown name")
			}
			p.digitIndex = int32((seq.LengthBits+3)/4) - 1
			p.state = bsValue

			allocBytes := (seq.LengthBits + 7) / 8
			var overrun *ParseError
			if allocBytes > cfg.MaxAlloc {
				overrun = newParseError(SeverityOverrun, 0, "bit field exceeds max_alloc, truncating")
				allocBytes = cfg.MaxAlloc
			}
			if allocBytes != seq.Allocated[p.tokenField] || seq.Buffer[p.tokenField] == nil {
				seq.Buffer[p.tokenField] = make([]byte, allocBytes)
				seq.Allocated[p.tokenField] = allocBytes
			}
			seq.DigitCursor[p.tokenField] = p.digitIndex
			if seq.LengthPrev[p.tokenField] != seq.LengthBits {
				if p.tokenField == FieldMask || p.tokenField == FieldSMask {
					fillBytes(seq.Buffer[p.tokenField], 0xFF)
				}
			}
			seq.LengthPrev[p.tokenField] = seq.LengthBits
			return overrun
		}
		p.state = bsError
		return newParseError(SeveritySyntax, 0, "expected '(' after field name")

	case bsValue:
		if isHexDigit(c) {
			if !p.haveField {
				p.state = bsError
				return newParseError(SeveritySemantic, 0, "hex digit with unknown field")
			}
			digit := hexNibble(c)
			if cfg.ReverseNibble {
				digit = reverseNibble(digit)
			}
			if p.digitIndex >= 0 {
				byteIndex := uint32(p.digitIndex) / 2
				if byteIndex < seq.Allocated[p.tokenField] {
					// Odd/even placement flips with cfg.ReverseNibble: in
					// reverse-nibble mode the first (odd) digit of a byte
					// lands in the low nibble, in normal mode it lands in
					// the high nibble.
					if cfg.ReverseNibble {
						if p.digitIndex&1 != 0 {
							seq.Buffer[p.tokenField][byteIndex] = digit
						} else {
							seq.Buffer[p.tokenField][byteIndex] |= digit << 4
						}
					} else {
						if p.digitIndex&1 != 0 {
							seq.Buffer[p.tokenField][byteIndex] = digit << 4
						} else {
							seq.Buffer[p.tokenField][byteIndex] |= digit
						}
					}
					p.digitIndex--
					seq.DigitCursor[p.tokenField] = p.digitIndex
				}
			} else if logger != nil {
				logger.Warnf("hex digit overrun on field %s", bitFieldNames[p.tokenField])
			}
			return nil
		}
		if c == ')' {
			p.nameBuf = p.nameBuf[:0]
			p.haveField = false
			p.state = bsName1
			return nil
		}
		p.state = bsError
		return newParseError(SeveritySyntax, 0, "unexpected character in hex value")

	case bsName1:
		if c == ' ' {
			return nil
		}
		if c >= 'A' && c <= 'Z' {
			if len(p.nameBuf) < bfNameMaxLen {
				p.nameBuf = append(p.nameBuf, c)
				p.state = bsName
				return nil
			}
			p.state = bsError
			return newParseError(SeveritySyntax, 0, "bit field name too long")
		}
		p.state = bsError
		return newParseError(SeveritySyntax, 0, "unexpected character after field value")

	default:
		p.state = bsError
		return newParseError(SeveritySyntax, 0, "bit sequence parser in error state")
	}
}

func (p *bitSeqParser) complete() bool {
	return p.state == bsComplete
}

func fillBytes(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'A' && c <= 'F')
}

func hexNibble(c byte) byte {
	if isDigit(c) {
		return c - '0'
	}
	return c - 'A' + 10
}
