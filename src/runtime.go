package svftap

/*-------------------------------------------------------------
 *
 * Purpose:	RuntimeState and the small sub-parsers for ENDDR/ENDIR,
 *		STATE and RUNTEST, plus the FREQUENCY wrapper around the
 *		float sub-parser.
 *
 *--------------------------------------------------------------*/

// EndKind distinguishes the two end-state records ENDDR and ENDIR update.
type EndKind int

const (
	EndDR EndKind = iota
	EndIR
	endKindCount
)

// RuntimeState is the sticky, non-bitfield state of one parser: end
// states, last-completed command, the last observed clock frequency, the
// last STATE path and the last RUNTEST result.
type RuntimeState struct {
	EndState         [endKindCount]TapState
	FrequencyHz      float64
	CompletedCommand CommandKind
	HaveCompleted    bool
	StatePath        []TapState
	RunTest          RunTestResult
}

func newRuntimeState() *RuntimeState {
	return &RuntimeState{
		EndState: [endKindCount]TapState{EndDR: TapIdle, EndIR: TapIdle},
	}
}

const endNameMaxLen = 9 // TAP_NAME_MAXLEN: longest TAP state names, e.g. "DRCAPTURE"

type nameListState int

const (
	nlsInit nameListState = iota
	nlsName
	nlsSpace
	nlsComplete
	nlsError
)

// endxrParser reads a single TAP state name (ENDDR/ENDIR grammar).
type endxrParser struct {
	state nameListState
	buf   []byte
}

func newEndxrParser() *endxrParser {
	return &endxrParser{}
}

func (p *endxrParser) reset() {
	p.state = nlsInit
	p.buf = p.buf[:0]
}

func (p *endxrParser) feed(c byte) (TapState, *ParseError) {
	switch p.state {
	case nlsInit, nlsName:
		switch {
		case c >= 'A' && c <= 'Z':
			if len(p.buf) >= endNameMaxLen {
				p.state = nlsError
				return TapUnknown, newParseError(SeveritySyntax, 0, "end-state name too long")
			}
			p.buf = append(p.buf, c)
			p.state = nlsName
			return TapUnknown, nil
		case c == ';':
			state, ok := lookupTapState(string(p.buf))
			if !ok || !endStateLegal(state) {
				p.state = nlsError
				return TapUnknown, newParseError(SeveritySemantic, 0, "illegal end-state "+string(p.buf))
			}
			p.state = nlsComplete
			return state, nil
		default:
			p.state = nlsError
			return TapUnknown, newParseError(SeveritySyntax, 0, "unexpected character in end-state name")
		}
	default:
		return TapUnknown, newParseError(SeveritySyntax, 0, "end-state parser in error state")
	}
}

// stateWalkParser reads a whitespace-separated list of TAP state names
// terminated by ';'; the destination is the final name, intermediate
// names recorded only as a path hint.
type stateWalkParser struct {
	state nameListState
	buf   []byte
	path  []TapState
}

func newStateWalkParser() *stateWalkParser {
	return &stateWalkParser{}
}

func (p *stateWalkParser) reset() {
	p.state = nlsInit
	p.buf = p.buf[:0]
	p.path = nil
}

func (p *stateWalkParser) feed(c byte) *ParseError {
	switch p.state {
	case nlsInit, nlsName, nlsSpace:
		switch {
		case c >= 'A' && c <= 'Z':
			p.buf = append(p.buf, c)
			p.state = nlsName
			return nil
		case c == ' ':
			if len(p.buf) == 0 {
				return nil
			}
			if err := p.commitName(); err != nil {
				return err
			}
			p.state = nlsSpace
			return nil
		case c == ';':
			if len(p.buf) > 0 {
				if err := p.commitName(); err != nil {
					return err
				}
			}
			if len(p.path) == 0 {
				p.state = nlsError
				return newParseError(SeveritySyntax, 0, "STATE with no names")
			}
			p.state = nlsComplete
			return nil
		default:
			p.state = nlsError
			return newParseError(SeveritySyntax, 0, "unexpected character in state name")
		}
	default:
		return newParseError(SeveritySyntax, 0, "state-walk parser in error state")
	}
}

func (p *stateWalkParser) commitName() *ParseError {
	state, ok := lookupTapState(string(p.buf))
	p.buf = p.buf[:0]
	if !ok {
		return newParseError(SeveritySemantic, 0, "unknown TAP state in STATE path")
	}
	p.path = append(p.path, state)
	return nil
}

func (p *stateWalkParser) destination() TapState {
	if len(p.path) == 0 {
		return TapUnknown
	}
	return p.path[len(p.path)-1]
}

// runtestWord is one of the non-state reserved words RUNTEST recognizes.
type runtestWord int

const (
	rtWordTCK runtestWord = iota
	rtWordSCK
	rtWordSEC
	rtWordMaximum
	rtWordEndState
	rtWordCount
)

const runtestNameMaxLen = 9 // "ENDSTATE" is 8, "FREQUENCY"-class headroom

var runtestWordNames = [rtWordCount]string{
	rtWordTCK:      "TCK",
	rtWordSCK:      "SCK",
	rtWordSEC:      "SEC",
	rtWordMaximum:  "MAXIMUM",
	rtWordEndState: "ENDSTATE",
}

func lookupRuntestWord(name string) (runtestWord, bool) {
	for i, n := range runtestWordNames {
		if n == name {
			return runtestWord(i), true
		}
	}
	return 0, false
}

// RunTestResult is the parsed result of one RUNTEST command.
type RunTestResult struct {
	RunState   TapState
	Count      float64
	Clock      runtestWord // rtWordTCK, rtWordSCK or rtWordSEC
	MaxTimeSec float64
	HaveMax    bool
	EndState   TapState
	HaveEnd    bool
}

type runtestState int

const (
	rtsToken runtestState = iota
	rtsAfterToken
	rtsComplete
	rtsError
)

// runtestParser implements the token-classifying grammar:
//
//	[run_state] count (TCK|SCK|SEC) [MAXIMUM float SEC] [ENDSTATE state] ';'
//
// Each whitespace-delimited token is classified as a TAP state name, one
// of the runtestWord keywords, or a float; a token matching more than one
// category is an error. The previous token supplies context (a float
// immediately preceded by MAXIMUM is the max time; one preceded by
// nothing/a state name is the clock count).
type runtestParser struct {
	state      runtestState
	tokenBuf   []byte
	float      *floatParser
	result     RunTestResult
	haveCount  bool
	afterMax   bool
	afterEnd   bool
	wantFloat  bool
}

func newRuntestParser() *runtestParser {
	return &runtestParser{float: newFloatParser()}
}

func (p *runtestParser) reset() {
	p.state = rtsToken
	p.tokenBuf = p.tokenBuf[:0]
	p.float.reset()
	p.result = RunTestResult{}
	p.haveCount = false
	p.afterMax = false
	p.afterEnd = false
	p.wantFloat = false
}

func (p *runtestParser) feed(c byte) *ParseError {
	if p.state == rtsComplete || p.state == rtsError {
		return newParseError(SeveritySyntax, 0, "runtest parser already finished")
	}
	if c == ' ' || c == ';' {
		err := p.flushToken()
		if err != nil {
			p.state = rtsError
			return err
		}
		if c == ';' {
			if !p.haveCount {
				p.state = rtsError
				return newParseError(SeveritySyntax, 0, "RUNTEST with no clock count")
			}
			p.state = rtsComplete
		}
		return nil
	}
	if isDigit(c) || c == '.' || c == 'E' || c == '+' || c == '-' {
		// Could be part of a float token; it is buffered like any other
		// character. flushToken's ambiguity check classifies the token and
		// parseFloatLiteral runs it through the float sub-parser, so a
		// malformed number is still caught.
	}
	p.tokenBuf = append(p.tokenBuf, c)
	if len(p.tokenBuf) > runtestNameMaxLen {
		p.state = rtsError
		return newParseError(SeveritySyntax, 0, "RUNTEST token too long")
	}
	return nil
}

func (p *runtestParser) flushToken() *ParseError {
	if len(p.tokenBuf) == 0 {
		return nil
	}
	tok := string(p.tokenBuf)
	p.tokenBuf = p.tokenBuf[:0]

	state, isState := lookupTapState(tok)
	word, isWord := lookupRuntestWord(tok)
	isFloat := looksLikeFloat(tok)

	matches := 0
	if isState {
		matches++
	}
	if isWord {
		matches++
	}
	if isFloat {
		matches++
	}
	if matches > 1 {
		return newParseError(SeveritySemantic, 0, "ambiguous RUNTEST token "+tok)
	}

	switch {
	case isState:
		if p.afterEnd {
			p.result.EndState = state
			p.result.HaveEnd = true
			p.afterEnd = false
			return nil
		}
		if !p.haveCount {
			p.result.RunState = state
			return nil
		}
		return newParseError(SeveritySemantic, 0, "unexpected TAP state "+tok)
	case isWord:
		switch word {
		case rtWordTCK, rtWordSCK:
			p.result.Clock = word
			return nil
		case rtWordMaximum:
			p.afterMax = true
			return nil
		case rtWordEndState:
			p.afterEnd = true
			return nil
		case rtWordSEC:
			if p.afterMax || !p.haveCount {
				return newParseError(SeveritySemantic, 0, "unexpected SEC")
			}
			if !p.result.HaveMax {
				p.result.Clock = word
			}
			return nil
		}
		return nil
	case isFloat:
		v, perr := parseFloatLiteral(tok)
		if perr != nil {
			return perr
		}
		if p.afterMax {
			p.result.MaxTimeSec = v
			p.result.HaveMax = true
			p.afterMax = false
			return nil
		}
		p.result.Count = v
		p.haveCount = true
		return nil
	default:
		return newParseError(SeveritySyntax, 0, "unrecognized RUNTEST token "+tok)
	}
}

func (p *runtestParser) complete() bool {
	return p.state == rtsComplete
}

func looksLikeFloat(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range []byte(s) {
		if !(isDigit(c) || c == '.' || c == 'E' || c == '+' || c == '-') {
			return false
		}
	}
	return isDigit(s[0])
}

func parseFloatLiteral(s string) (float64, *ParseError) {
	fp := newFloatParser()
	for i := 0; i < len(s); i++ {
		fp.feed(s[i])
	}
	if !fp.done() {
		return 0, newParseError(SeveritySyntax, 0, "malformed float "+s)
	}
	return fp.value(), nil
}
