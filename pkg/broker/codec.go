// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package broker

// The journal record format is a self-describing textual tagged form, so records
// remain hand-editable during debugging:
//
//	(add (none) "q") | (add (some "conn") "q")
//	(remove "q")
//	(ack ("q" 42))
//	(send "origin" "q" 42 (request "replyq" "payload"))
//	(send "origin" "q" 42 (response (none) "payload"))
//	(send "origin" "q" 42 (response (some "q" 7) "payload"))
//
// Strings are double-quoted; backslash, double quote, and bytes outside the
// printable ASCII range are escaped, so any payload round-trips.

import (
	"bytes"
	"fmt"
	"strconv"
)

// Encode serializes the Op to its textual tagged form.
// DecodeOp(op.Encode()) yields an equal Op for every well-formed op.
func (a *Op) Encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	buf.WriteString(a.Kind.String())
	switch a.Kind {
	case OpAdd:
		buf.WriteByte(' ')
		writeOption(&buf, a.Owner != NoConnection, func(b *bytes.Buffer) {
			writeString(b, string(a.Owner))
		})
		buf.WriteByte(' ')
		writeString(&buf, string(a.Name))
	case OpRemove:
		buf.WriteByte(' ')
		writeString(&buf, string(a.Name))
	case OpAck:
		buf.WriteString(" (")
		writeString(&buf, string(a.ID.Name))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatInt(a.ID.ID, 10))
		buf.WriteByte(')')
	case OpSend:
		buf.WriteByte(' ')
		writeString(&buf, string(a.Origin))
		buf.WriteByte(' ')
		writeString(&buf, string(a.Name))
		buf.WriteByte(' ')
		buf.WriteString(strconv.FormatInt(a.SendID, 10))
		buf.WriteByte(' ')
		writeMessage(&buf, a.Message)
	}
	buf.WriteByte(')')
	return buf.Bytes()
}

func writeMessage(buf *bytes.Buffer, m *Message) {
	buf.WriteByte('(')
	buf.WriteString(m.Kind.String())
	buf.WriteByte(' ')
	switch m.Kind {
	case Response:
		writeOption(buf, m.RequestID != nil, func(b *bytes.Buffer) {
			writeString(b, string(m.RequestID.Name))
			b.WriteByte(' ')
			b.WriteString(strconv.FormatInt(m.RequestID.ID, 10))
		})
	default:
		writeString(buf, string(m.ReplyTo))
	}
	buf.WriteByte(' ')
	writeString(buf, string(m.Data))
	buf.WriteByte(')')
}

func writeOption(buf *bytes.Buffer, some bool, write func(*bytes.Buffer)) {
	if !some {
		buf.WriteString("(none)")
		return
	}
	buf.WriteString("(some ")
	write(buf)
	buf.WriteByte(')')
}

const hexdigits = "0123456789abcdef"

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			buf.WriteString(`\x`)
			buf.WriteByte(hexdigits[c>>4])
			buf.WriteByte(hexdigits[c&0xf])
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

// DecodeOp parses the textual tagged form back into an Op.
// Malformed input yields an error - the journal replay path drops such records.
func DecodeOp(data []byte) (*Op, error) {
	s := &scanner{data: data}
	op, err := s.parseOp()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if s.pos != len(s.data) {
		return nil, s.errorf("trailing data after op")
	}
	return op, nil
}

type scanner struct {
	data []byte
	pos  int
}

func (a *scanner) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("invalid op record at offset %d : %s", a.pos, fmt.Sprintf(format, args...))
}

func (a *scanner) skipSpace() {
	for a.pos < len(a.data) && (a.data[a.pos] == ' ' || a.data[a.pos] == '\t' || a.data[a.pos] == '\n' || a.data[a.pos] == '\r') {
		a.pos++
	}
}

func (a *scanner) expect(c byte) error {
	a.skipSpace()
	if a.pos >= len(a.data) || a.data[a.pos] != c {
		return a.errorf("expected %q", string(c))
	}
	a.pos++
	return nil
}

func (a *scanner) symbol() (string, error) {
	a.skipSpace()
	start := a.pos
	for a.pos < len(a.data) {
		c := a.data[a.pos]
		if (c >= 'a' && c <= 'z') || c == '_' {
			a.pos++
			continue
		}
		break
	}
	if a.pos == start {
		return "", a.errorf("expected a symbol")
	}
	return string(a.data[start:a.pos]), nil
}

func (a *scanner) integer() (int64, error) {
	a.skipSpace()
	start := a.pos
	if a.pos < len(a.data) && a.data[a.pos] == '-' {
		a.pos++
	}
	for a.pos < len(a.data) && a.data[a.pos] >= '0' && a.data[a.pos] <= '9' {
		a.pos++
	}
	n, err := strconv.ParseInt(string(a.data[start:a.pos]), 10, 64)
	if err != nil {
		return 0, a.errorf("expected an integer")
	}
	return n, nil
}

func (a *scanner) quoted() (string, error) {
	if err := a.expect('"'); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for {
		if a.pos >= len(a.data) {
			return "", a.errorf("unterminated string")
		}
		c := a.data[a.pos]
		a.pos++
		switch c {
		case '"':
			return buf.String(), nil
		case '\\':
			if a.pos >= len(a.data) {
				return "", a.errorf("unterminated escape")
			}
			e := a.data[a.pos]
			a.pos++
			switch e {
			case '"', '\\':
				buf.WriteByte(e)
			case 'x':
				if a.pos+2 > len(a.data) {
					return "", a.errorf("unterminated hex escape")
				}
				n, err := strconv.ParseUint(string(a.data[a.pos:a.pos+2]), 16, 8)
				if err != nil {
					return "", a.errorf("invalid hex escape")
				}
				a.pos += 2
				buf.WriteByte(byte(n))
			default:
				return "", a.errorf("unknown escape %q", string(e))
			}
		default:
			buf.WriteByte(c)
		}
	}
}

// option parses (none) or (some ...) where some parses the payload
func (a *scanner) option(some func() error) (bool, error) {
	if err := a.expect('('); err != nil {
		return false, err
	}
	tag, err := a.symbol()
	if err != nil {
		return false, err
	}
	present := false
	switch tag {
	case "none":
	case "some":
		present = true
		if err := some(); err != nil {
			return false, err
		}
	default:
		return false, a.errorf("expected none or some : %s", tag)
	}
	return present, a.expect(')')
}

func (a *scanner) parseOp() (*Op, error) {
	if err := a.expect('('); err != nil {
		return nil, err
	}
	tag, err := a.symbol()
	if err != nil {
		return nil, err
	}

	op := &Op{}
	switch tag {
	case "add":
		op.Kind = OpAdd
		var owner string
		present, err := a.option(func() error {
			var err error
			owner, err = a.quoted()
			return err
		})
		if err != nil {
			return nil, err
		}
		if present {
			op.Owner = ConnectionID(owner)
		}
		name, err := a.quoted()
		if err != nil {
			return nil, err
		}
		op.Name = QueueName(name)
	case "remove":
		op.Kind = OpRemove
		name, err := a.quoted()
		if err != nil {
			return nil, err
		}
		op.Name = QueueName(name)
	case "ack":
		op.Kind = OpAck
		if err := a.expect('('); err != nil {
			return nil, err
		}
		name, err := a.quoted()
		if err != nil {
			return nil, err
		}
		id, err := a.integer()
		if err != nil {
			return nil, err
		}
		op.ID = MessageID{Name: QueueName(name), ID: id}
		if err := a.expect(')'); err != nil {
			return nil, err
		}
	case "send":
		op.Kind = OpSend
		origin, err := a.quoted()
		if err != nil {
			return nil, err
		}
		op.Origin = ConnectionID(origin)
		name, err := a.quoted()
		if err != nil {
			return nil, err
		}
		op.Name = QueueName(name)
		id, err := a.integer()
		if err != nil {
			return nil, err
		}
		op.SendID = id
		msg, err := a.parseMessage()
		if err != nil {
			return nil, err
		}
		op.Message = msg
	default:
		return nil, a.errorf("unknown op tag : %s", tag)
	}

	return op, a.expect(')')
}

func (a *scanner) parseMessage() (*Message, error) {
	if err := a.expect('('); err != nil {
		return nil, err
	}
	tag, err := a.symbol()
	if err != nil {
		return nil, err
	}

	m := &Message{}
	switch tag {
	case "request":
		m.Kind = Request
		replyTo, err := a.quoted()
		if err != nil {
			return nil, err
		}
		m.ReplyTo = QueueName(replyTo)
	case "response":
		m.Kind = Response
		var reqID MessageID
		present, err := a.option(func() error {
			name, err := a.quoted()
			if err != nil {
				return err
			}
			id, err := a.integer()
			if err != nil {
				return err
			}
			reqID = MessageID{Name: QueueName(name), ID: id}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if present {
			m.RequestID = &reqID
		}
	default:
		return nil, a.errorf("unknown message tag : %s", tag)
	}

	data, err := a.quoted()
	if err != nil {
		return nil, err
	}
	m.Data = []byte(data)
	return m, a.expect(')')
}
