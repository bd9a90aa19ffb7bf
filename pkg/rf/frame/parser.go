package frame

// Parser parses the byte stream received from the radio.
// Partial frames are kept across calls. When a frame is rejected,
// the bytes following its header are parsed again so the parser
// resynchronizes on the next real header.
type Parser struct {
	state parseState
	buf   []byte
	need  int
}

// State indicates the state of the parser.
type State int

const (
	// StateIdle means waiting for a header.
	StateIdle State = iota
	// StateReceiving means in the middle of a frame.
	StateReceiving
)

// ParseResult is the result after one parsing step.
type ParseResult struct {
	// Frames completed by this step, usually at most one.
	Frames []*Frame
	// Err is the last rejection happened in this step.
	Err   error
	State State
}

type parseState int

const (
	stateHeader parseState = iota // waiting for Header
	stateCmd                      // waiting for command
	stateFlags                    // waiting for flags
	stateLen                      // waiting for payload length
	statePayload                  // waiting for payload bytes
	stateChecksum                 // waiting for checksum
)

// State gets the current state.
func (p *Parser) State() State {
	if p.state == stateHeader {
		return StateIdle
	}
	return StateReceiving
}

// Reset drops any partial frame.
func (p *Parser) Reset() {
	p.state, p.buf, p.need = stateHeader, p.buf[:0], 0
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	p.feed(b, &pr)
	pr.State = p.State()
	return
}

// Write consumes bytes and collects all results.
func (p *Parser) Write(data []byte) (pr ParseResult) {
	for _, b := range data {
		p.feed(b, &pr)
	}
	pr.State = p.State()
	return
}

// Timeout notifies that the stream stalled. A partial frame is
// dropped and the bytes after its header are parsed again.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateHeader {
		pending := append([]byte(nil), p.buf...)
		cmd := byte(0)
		if len(pending) > 1 {
			cmd = pending[1]
		}
		p.Reset()
		pr.Err = &FrameError{Cmd: cmd, Err: ErrShortFrame}
		for _, b := range pending[1:] {
			p.feed(b, &pr)
		}
	}
	pr.State = p.State()
	return
}

func (p *Parser) feed(b byte, pr *ParseResult) {
	f, rejected, err := p.parseByte(b)
	if f != nil {
		pr.Frames = append(pr.Frames, f)
	}
	if err != nil {
		pr.Err = err
		for _, rb := range rejected[1:] {
			p.feed(rb, pr)
		}
	}
}

func (p *Parser) parseByte(b byte) (f *Frame, rejected []byte, err error) {
	switch p.state {
	case stateHeader:
		if b == Header {
			p.buf = append(p.buf[:0], b)
			p.state = stateCmd
		}
		return
	case stateCmd:
		p.state = stateFlags
	case stateFlags:
		if b == FlagAck {
			f = &Frame{Cmd: p.buf[1], Flags: FlagAck}
			p.Reset()
			return
		}
		p.state = stateLen
	case stateLen:
		if p.need = int(b); p.need == 0 {
			p.state = stateChecksum
		} else {
			p.state = statePayload
		}
	case statePayload:
		if p.need--; p.need == 0 {
			p.state = stateChecksum
		}
	case stateChecksum:
		p.buf = append(p.buf, b)
		f, err = Parse(p.buf)
		if err != nil {
			rejected = append([]byte(nil), p.buf...)
		}
		p.Reset()
		return
	}
	p.buf = append(p.buf, b)
	return
}
