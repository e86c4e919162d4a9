package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mobile/event/touch"

	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/gesture"
	"github.com/example/glowplan/internal/render"
	"github.com/example/glowplan/internal/scene"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

type interactiveCmd struct {
	*root
	fs *flag.FlagSet
	projectFlags
	execs commandList

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	ws   *workspace
	comp *render.Compositor
	seq  touch.Sequence
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *interactiveCmd) Program() string {
	return i.root.subcommand("interactive")
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ContinueOnError)
	cmd := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(cmd)
	cmd.projectFlags.register(fs)
	fs.Var(&cmd.execs, "e", "execute a console command and exit (may be specified multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.id == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (i *interactiveCmd) Run() error {
	ws, err := i.root.openWorkspace(context.Background(), i.id)
	if err != nil {
		return err
	}
	i.ws = ws
	comp, err := ws.compositor(i.photo)
	if err != nil {
		closeWithLog("project", ws)
		return err
	}
	i.comp = comp
	ws.session.SetRenderer(comp)

	if len(i.execs) > 0 {
		for _, line := range i.execs {
			done, err := i.executeLine(line)
			if err != nil {
				closeWithLog("project", ws)
				return err
			}
			if done {
				break
			}
		}
		return ws.Close()
	}

	fmt.Fprintln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.stderr, err)
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		closeWithLog("project", ws)
		return err
	}
	return ws.Close()
}

const consoleHelp = `commands:
  mode string|tap|decor|measure|reference
  tap X Y                      press and release in place
  drag X0 Y0 X1 Y1             press, move and release
  down X Y | move X Y | up X Y drive a touch by hand
  cancel                       abort the gesture in progress
  undo | redo | delete | clear
  asset string|singular|decor ID
  ref start | ref confirm LENGTH | ref cancel | ref clear
  list | positions | save | export FILE
  exit`

func parsePoints(args []string, n int) ([]float32, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d coordinates, got %d", n, len(args))
	}
	out := make([]float32, n)
	for k, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %w", a, err)
		}
		out[k] = float32(v)
	}
	return out, nil
}

func (i *interactiveCmd) touch(typ touch.Type, x, y float32) gesture.Result {
	if typ == touch.TypeBegin {
		i.seq++
	}
	return i.ws.session.Touch(touch.Event{X: x, Y: y, Sequence: i.seq, Type: typ})
}

// executeLine runs one console command and reports whether the console
// should exit.
func (i *interactiveCmd) executeLine(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	s := i.ws.session
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(i.stdout, consoleHelp)
	case "mode":
		if len(args) != 1 {
			return false, fmt.Errorf("mode: want a mode name")
		}
		m, err := gesture.ParseMode(args[0])
		if err != nil {
			return false, err
		}
		return false, s.SetMode(m)
	case "tap":
		p, err := parsePoints(args, 2)
		if err != nil {
			return false, fmt.Errorf("tap: %w", err)
		}
		i.touch(touch.TypeBegin, p[0], p[1])
		r := i.touch(touch.TypeEnd, p[0], p[1])
		fmt.Fprintln(i.stdout, r.Outcome)
	case "drag":
		p, err := parsePoints(args, 4)
		if err != nil {
			return false, fmt.Errorf("drag: %w", err)
		}
		i.touch(touch.TypeBegin, p[0], p[1])
		i.touch(touch.TypeMove, (p[0]+p[2])/2, (p[1]+p[3])/2)
		i.touch(touch.TypeMove, p[2], p[3])
		r := i.touch(touch.TypeEnd, p[2], p[3])
		fmt.Fprintln(i.stdout, r.Outcome)
	case "down", "move", "up":
		p, err := parsePoints(args, 2)
		if err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
		typ := map[string]touch.Type{"down": touch.TypeBegin, "move": touch.TypeMove, "up": touch.TypeEnd}[name]
		r := i.touch(typ, p[0], p[1])
		fmt.Fprintln(i.stdout, r.Outcome)
	case "cancel":
		s.Cancel()
	case "undo":
		if !s.Undo() {
			fmt.Fprintln(i.stdout, "nothing to undo")
		}
	case "redo":
		if !s.Redo() {
			fmt.Fprintln(i.stdout, "nothing to redo")
		}
	case "delete":
		if !s.DeleteSelected() {
			fmt.Fprintln(i.stdout, "nothing selected")
		}
	case "clear":
		s.ClearAll()
	case "asset":
		if len(args) != 2 {
			return false, fmt.Errorf("asset: want a category and an id")
		}
		return false, s.SetAsset(catalog.Category(strings.ToLower(args[0])), args[1])
	case "ref":
		return false, i.reference(args)
	case "list":
		i.list()
	case "positions":
		i.positions()
	case "save":
		if err := i.ws.Save(context.Background()); err != nil {
			return false, fmt.Errorf("save: %w", err)
		}
		fmt.Fprintf(i.stdout, "saved %s\n", i.id)
	case "export":
		if len(args) != 1 {
			return false, fmt.Errorf("export: want a file name")
		}
		if err := i.comp.ExportPNG(args[0], s.Frame()); err != nil {
			return false, err
		}
		i.notifier.Exported(args[0])
		fmt.Fprintf(i.stdout, "exported %s\n", args[0])
	default:
		return false, fmt.Errorf("unknown command %q (try help)", name)
	}
	return false, nil
}

func (i *interactiveCmd) reference(args []string) error {
	s := i.ws.session
	if len(args) == 0 {
		return fmt.Errorf("ref: want start, confirm, cancel or clear")
	}
	switch strings.ToLower(args[0]) {
	case "start":
		return s.StartReference()
	case "confirm":
		if err := s.ConfirmReference(strings.Join(args[1:], " ")); err != nil {
			return fmt.Errorf("ref confirm: %w", err)
		}
		factor, _ := s.Calibrator().ScaleFactor()
		fmt.Fprintf(i.stdout, "scale %.2f px/ft\n", factor)
		return nil
	case "cancel":
		return s.CancelReference()
	case "clear":
		s.ClearReference()
		return nil
	default:
		return fmt.Errorf("ref: unknown action %q", args[0])
	}
}

func (i *interactiveCmd) list() {
	s := i.ws.session
	st := s.Store()
	sel, _ := st.Selected()
	mark := func(k scene.Kind, id string) string {
		if sel.Kind == k && sel.ID == id {
			return "*"
		}
		return " "
	}
	fmt.Fprintf(i.stdout, "mode %s, %d entities, %d undo steps\n", s.Mode(), st.Len(), s.History().Len())
	for _, ls := range st.LightStrings() {
		fmt.Fprintf(i.stdout, "%s string  %s (%.0f,%.0f)-(%.0f,%.0f) %s\n", mark(scene.KindLightString, ls.ID), ls.ID, ls.Start.X, ls.Start.Y, ls.End.X, ls.End.Y, ls.AssetID)
	}
	for _, l := range st.SingularLights() {
		fmt.Fprintf(i.stdout, "%s light   %s (%.0f,%.0f) %s\n", mark(scene.KindSingularLight, l.ID), l.ID, l.Position.X, l.Position.Y, l.AssetID)
	}
	for _, d := range st.Decor() {
		fmt.Fprintf(i.stdout, "%s decor   %s (%.0f,%.0f) r=%.0f %s\n", mark(scene.KindDecor, d.ID), d.ID, d.Center.X, d.Center.Y, d.Radius, d.AssetID)
	}
	for _, m := range st.MeasurementLines() {
		fmt.Fprintf(i.stdout, "%s measure %s (%.0f,%.0f)-(%.0f,%.0f) %s\n", mark(scene.KindMeasurement, m.ID), m.ID, m.Start.X, m.Start.Y, m.End.X, m.End.Y, m.Label)
	}
}

func (i *interactiveCmd) positions() {
	pos := i.ws.session.LightPositions()
	ids := make([]string, 0, len(pos))
	for id := range pos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		pts := make([]string, len(pos[id]))
		for k, p := range pos[id] {
			pts[k] = fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y)
		}
		fmt.Fprintf(i.stdout, "%s: %s\n", id, strings.Join(pts, " "))
	}
}
