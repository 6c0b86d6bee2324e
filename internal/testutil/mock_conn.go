package testutil

import "errors"

// FakeConn is a table.Conn for tests: it records every frame sent to it and
// can be flipped to fail sends, simulating a dead socket.
type FakeConn struct {
	ConnID  string
	Sent    []any
	Failing bool
}

func (f *FakeConn) ID() string { return f.ConnID }

func (f *FakeConn) Send(v any) error {
	if f.Failing {
		return errors.New("send on broken socket")
	}
	f.Sent = append(f.Sent, v)
	return nil
}

// LastSent returns the most recent frame, or nil.
func (f *FakeConn) LastSent() any {
	if len(f.Sent) == 0 {
		return nil
	}
	return f.Sent[len(f.Sent)-1]
}
