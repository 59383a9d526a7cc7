package svftap

import (
	"fmt"
	"time"
)

/*-------------------------------------------------------------
 *
 * Purpose:	Top-level streaming entry point: owns the lexer, the
 *		command dispatcher FSM (INIT/ACCUM/EXEC/ERROR), the six
 *		sticky BitSequence records, and the HAL. Feed() is the one
 *		operation callers use.
 *
 *--------------------------------------------------------------*/

type dispatcherState int

const (
	dispInit dispatcherState = iota
	dispAccum
	dispExec
	dispError
)

// Parser is a single SVF stream's complete runtime record. Nothing here
// is package-level state, so two Parsers never interfere with each other
// even when fed from separate goroutines.
type Parser struct {
	cfg    Config
	hal    HAL
	logger *Logger
	trace  *TraceLog

	lex   *lexer
	state *RuntimeState

	dispState dispatcherState
	cmdBuf    []byte
	curCmd    CommandKind

	seq map[CommandKind]*BitSequence
	bsp *bitSeqParser

	freq      *floatParser
	endxr     *endxrParser
	statewalk *stateWalkParser
	runtest   *runtestParser

	pioWarned bool
	opened    bool
	fatal     *ParseError
}

// NewParser builds a Parser around hal using cfg; logger and trace may be
// nil, in which case logging and tracing are no-ops.
func NewParser(hal HAL, cfg Config, logger *Logger, trace *TraceLog) *Parser {
	p := &Parser{
		cfg:    cfg,
		hal:    hal,
		logger: logger,
		trace:  trace,
		lex:    newLexer(),
		state:  newRuntimeState(),
		seq: map[CommandKind]*BitSequence{
			CmdHDR: {}, CmdHIR: {}, CmdSDR: {}, CmdSIR: {}, CmdTDR: {}, CmdTIR: {},
		},
		bsp:       newBitSeqParser(),
		freq:      newFloatParser(),
		endxr:     newEndxrParser(),
		statewalk: newStateWalkParser(),
		runtest:   newRuntestParser(),
	}
	return p
}

func (p *Parser) resetAll() {
	p.lex.reset()
	p.dispState = dispInit
	p.cmdBuf = p.cmdBuf[:0]
	p.fatal = nil
	for _, seq := range p.seq {
		*seq = BitSequence{}
		p.bsp.resetFull(seq)
	}
	p.freq.reset()
	p.endxr.reset()
	p.statewalk.reset()
	p.runtest.reset()
	p.pioWarned = false
}

// Feed consumes data (a contiguous slice of the stream starting at
// offset), driving the lexer, dispatcher and sub-parsers, and returns:
//
//	 0 - need more input
//	 1 - at least one command completed cleanly during this call
//	-1 - a ResourceError was hit; the stream is dead, err is set
func (p *Parser) Feed(data []byte, offset uint32, final bool) (int8, error) {
	if offset == 0 {
		p.resetAll()
		if !p.opened {
			if err := p.hal.Open(); err != nil {
				p.fatal = wrapParseError(SeverityResource, 0, "hal open failed", err)
				return -1, p.fatal
			}
			p.opened = true
		}
	}

	status := int8(0)
	for _, b := range data {
		p.lex.feedByte(b, func(c byte) {
			if p.fatal != nil {
				return
			}
			if p.logger != nil {
				p.logger.Tracef("%c", c)
			}
			if p.dispatchChar(c) {
				status = 1
			}
		})
		if p.fatal != nil {
			break
		}
	}

	if final {
		if err := p.hal.Close(); err != nil && p.fatal == nil {
			p.fatal = wrapParseError(SeverityResource, 0, "hal close failed", err)
		}
		p.opened = false
		if p.trace != nil {
			p.trace.Close()
		}
	}

	if p.fatal != nil {
		return -1, p.fatal
	}
	return status, nil
}

// dispatchChar advances the command dispatcher by one cleaned character;
// it returns true exactly when a command completed cleanly this call.
func (p *Parser) dispatchChar(c byte) bool {
	switch p.dispState {
	case dispInit:
		if c != ' ' {
			p.cmdBuf = p.cmdBuf[:0]
			p.cmdBuf = append(p.cmdBuf, c)
			p.dispState = dispAccum
		}
		return false

	case dispAccum:
		if c == ' ' {
			name := string(p.cmdBuf)
			cmd, ok := lookupCommand(name)
			if !ok {
				p.logAndError(newParseError(SeverityUnknownCommand, 0, "unknown command "+name))
				p.dispState = dispError
				return false
			}
			p.curCmd = cmd
			p.resetSubParserFor(cmd)
			p.dispState = dispExec
			return false
		}
		if len(p.cmdBuf) < cmdsMaxChars {
			p.cmdBuf = append(p.cmdBuf, c)
			return false
		}
		p.logAndError(newParseError(SeveritySyntax, 0, "command name too long"))
		p.dispState = dispError
		return false

	case dispExec:
		perr := p.execChar(p.curCmd, c)
		if perr != nil {
			p.logAndError(perr)
			if perr.Fatal() {
				p.fatal = perr
				return false
			}
			if c != ';' {
				p.dispState = dispError
				return false
			}
		}
		if c == ';' {
			if perr == nil {
				p.onCommandComplete(p.curCmd)
			}
			p.dispState = dispInit
			return perr == nil
		}
		return false

	case dispError:
		if c == ';' {
			p.dispState = dispInit
		}
		return false
	}
	return false
}

func (p *Parser) logAndError(err *ParseError) {
	if p.logger != nil {
		p.logger.ParseErrorLogged(err)
	}
}

func (p *Parser) resetSubParserFor(cmd CommandKind) {
	switch cmd {
	case CmdHDR, CmdHIR, CmdSDR, CmdSIR, CmdTDR, CmdTIR:
		p.bsp.resetCommand(p.seq[cmd])
	case CmdFrequency:
		p.freq.reset()
	case CmdEndDR, CmdEndIR:
		p.endxr.reset()
	case CmdState:
		p.statewalk.reset()
	case CmdRunTest:
		p.runtest.reset()
	case CmdPIO:
		p.pioWarned = false
	}
}

func (p *Parser) execChar(cmd CommandKind, c byte) *ParseError {
	switch cmd {
	case CmdHDR, CmdHIR, CmdSDR, CmdSIR, CmdTDR, CmdTIR:
		if c == ';' {
			return nil
		}
		return p.bsp.feed(c, p.seq[cmd], p.cfg, p.logger)

	case CmdFrequency:
		if c == ' ' || c == ';' {
			return nil // HZ suffix and trailing space are both ignorable here
		}
		if c == 'H' || c == 'Z' {
			return nil
		}
		p.freq.feed(c)
		if p.freq.state == floatError {
			return newParseError(SeveritySyntax, 0, "malformed FREQUENCY value")
		}
		return nil

	case CmdEndDR:
		state, err := p.endxr.feed(c)
		if err != nil {
			return err
		}
		if state != TapUnknown {
			p.state.EndState[EndDR] = state
		}
		return nil

	case CmdEndIR:
		state, err := p.endxr.feed(c)
		if err != nil {
			return err
		}
		if state != TapUnknown {
			p.state.EndState[EndIR] = state
		}
		return nil

	case CmdState:
		if c == ';' {
			err := p.statewalk.feed(c)
			if err == nil {
				p.state.StatePath = append([]TapState(nil), p.statewalk.path...)
			}
			return err
		}
		return p.statewalk.feed(c)

	case CmdRunTest:
		err := p.runtest.feed(c)
		if c == ';' && err == nil {
			p.state.RunTest = p.runtest.result
		}
		return err

	case CmdTRST, CmdPIOMap:
		return nil // parsed but not driven, per design

	case CmdPIO:
		if !p.pioWarned {
			p.pioWarned = true
			return newParseError(SeveritySemantic, 0, "PIO is not supported, ignoring body")
		}
		return nil

	default:
		return newParseError(SeveritySyntax, 0, "unreachable command dispatch")
	}
}

// onCommandComplete fires the bit-layout planner and HAL transaction for
// SIR/SDR, and records FREQUENCY's value, matching the ordering rule in
// the concurrency model: HAL calls happen synchronously at the
// terminating ';', before any further input is consumed.
func (p *Parser) onCommandComplete(cmd CommandKind) {
	p.state.CompletedCommand = cmd
	p.state.HaveCompleted = true

	switch cmd {
	case CmdSIR, CmdSDR:
		p.playBitSequence(cmd)
	case CmdFrequency:
		p.state.FrequencyHz = p.freq.value()
	}
}

func (p *Parser) playBitSequence(cmd CommandKind) {
	seq := p.seq[cmd]
	plans := planBitSequence(seq)

	var tdiPlan *TransmissionPlan
	var expectPlan *TransmissionPlan
	var maskPlan *TransmissionPlan
	for i := range plans {
		switch plans[i].Field {
		case FieldTDI:
			tdiPlan = &plans[i]
		case FieldTDO:
			expectPlan = &plans[i]
		case FieldMask:
			maskPlan = &plans[i]
		}
	}
	if tdiPlan == nil {
		return
	}
	mismatches, err := p.hal.TdiTdo(*tdiPlan, expectPlan, maskPlan)
	if err != nil {
		p.fatal = wrapParseError(SeverityResource, 0, fmt.Sprintf("hal transaction failed for %s", cmd), err)
		return
	}
	if p.trace != nil {
		p.trace.Record(time.Now(), cmd, plans, mismatches)
	}
}
