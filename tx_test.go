package custody

import (
	"testing"

	"github.com/iov-one/custody/errors"
)

type txMock struct {
	Persistent
	msg Msg
	err error
}

func (m *txMock) GetMsg() (Msg, error) {
	return m.msg, m.err
}

type msgMock struct {
	Persistent
	path string
	err  error
}

func (m *msgMock) Path() string    { return m.path }
func (m *msgMock) Validate() error { return m.err }

func TestLoadMsg(t *testing.T) {
	msg := &msgMock{path: "test/any"}
	tx := &txMock{msg: msg}

	var dest msgMock
	if err := LoadMsg(tx, &dest); err != nil {
		t.Fatalf("cannot load message: %+v", err)
	}
	if dest.path != "test/any" {
		t.Fatalf("unexpected content: %q", dest.path)
	}
}

func TestLoadMsgRejectsInvalid(t *testing.T) {
	broken := errors.ErrInput.New("empty")
	tx := &txMock{msg: &msgMock{path: "test/any", err: broken}}

	var dest msgMock
	if err := LoadMsg(tx, &dest); !errors.ErrInput.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestLoadMsgNilDestination(t *testing.T) {
	tx := &txMock{msg: &msgMock{path: "test/any"}}

	if err := LoadMsg(tx, (*msgMock)(nil)); !errors.ErrType.Is(err) {
		t.Fatalf("nil destination: %+v", err)
	}
}

func TestGetPath(t *testing.T) {
	if got := GetPath(&txMock{msg: &msgMock{path: "a/b"}}); got != "a/b" {
		t.Fatalf("unexpected path: %q", got)
	}
	if got := GetPath(&txMock{err: errors.ErrInput.New("no msg")}); got != "(missing)" {
		t.Fatalf("unexpected path: %q", got)
	}
}
