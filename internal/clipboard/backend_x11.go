//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *x11Owner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		o, err := newX11Owner()
		if err != nil {
			initErr = fmt.Errorf("clipboard: x11: %w", err)
			return
		}
		owner = o
	})
	return initErr
}

func write(f format, data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.publish(f, data)
}

func read(f format) ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	if f == formatImage {
		return owner.fetch(owner.atoms.png)
	}
	data, err := owner.fetch(owner.atoms.utf8)
	if err != nil {
		return owner.fetch(xproto.AtomString)
	}
	return data, nil
}

// x11Owner holds the CLIPBOARD selection on a hidden window and answers
// conversion requests from other clients.
type x11Owner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atoms

	mu   sync.RWMutex
	held format
	data []byte
}

type atoms struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	utf8      xproto.Atom
	textPlain xproto.Atom
	png       xproto.Atom
	transfer  xproto.Atom
}

func newX11Owner() (*x11Owner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	mask := []uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, mask).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	a, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &x11Owner{conn: conn, window: window, atoms: a}
	go o.serve()
	return o, nil
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	names := []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png", "GLOWPLAN_TRANSFER"}
	got := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		got[i] = reply.Atom
	}
	return atoms{
		clipboard: got[0],
		targets:   got[1],
		utf8:      got[2],
		textPlain: got[3],
		png:       got[4],
		transfer:  got[5],
	}, nil
}

func (o *x11Owner) publish(f format, data []byte) error {
	o.mu.Lock()
	o.held = f
	o.data = append([]byte(nil), data...)
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *x11Owner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if err != nil {
			continue
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.data = nil
			o.mu.Unlock()
		}
	}
}

// targetsFor lists the conversion targets offered for the held data.
func (o *x11Owner) targetsFor(f format) []xproto.Atom {
	if f == formatImage {
		return []xproto.Atom{o.atoms.targets, o.atoms.png}
	}
	return []xproto.Atom{o.atoms.targets, o.atoms.utf8, xproto.AtomString, o.atoms.textPlain}
}

func (o *x11Owner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.RLock()
	held, data := o.held, o.data
	o.mu.RUnlock()

	var (
		typ     xproto.Atom
		unit    byte = 8
		payload []byte
	)
	switch {
	case len(data) == 0:
		property = xproto.AtomNone
	case e.Target == o.atoms.targets:
		payload = atomBytes(o.targetsFor(held))
		typ, unit = xproto.AtomAtom, 32
	case held == formatImage && e.Target == o.atoms.png:
		payload, typ = data, o.atoms.png
	case held == formatText && (e.Target == o.atoms.utf8 || e.Target == xproto.AtomString || e.Target == o.atoms.textPlain):
		payload, typ = data, o.atoms.utf8
	default:
		property = xproto.AtomNone
	}

	if property != xproto.AtomNone {
		n := uint32(len(payload)) / uint32(unit/8)
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, typ, unit, n, payload)
	}
	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// fetch converts the current CLIPBOARD selection to target using a
// short-lived connection so replies are not consumed by serve.
func (o *x11Owner) fetch(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.DeletePropertyChecked(conn, window, o.atoms.transfer).Check(); err != nil {
		return nil, err
	}
	if err := xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, target, o.atoms.transfer, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		if ev == nil {
			return nil, fmt.Errorf("clipboard: connection closed")
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("clipboard: target unavailable")
		}
		if e.Property != o.atoms.transfer {
			continue
		}
		reply, perr := xproto.GetProperty(conn, false, window, o.atoms.transfer, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}

func atomBytes(list []xproto.Atom) []byte {
	buf := make([]byte, len(list)*4)
	for i, a := range list {
		xgb.Put32(buf[i*4:], uint32(a))
	}
	return buf
}
