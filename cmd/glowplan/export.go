package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/example/glowplan/internal/clipboard"
)

type exportCmd struct {
	*root
	fs *flag.FlagSet
	projectFlags
	output      string
	toClipboard bool
}

func (e *exportCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *exportCmd) Program() string {
	return e.root.subcommand("export")
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd := &exportCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.projectFlags.register(fs)
	fs.StringVar(&cmd.output, "output", "", "PNG file to write")
	fs.BoolVar(&cmd.toClipboard, "to-clipboard", false, "copy the rendered design to the clipboard")
	fs.BoolVar(&cmd.toClipboard, "to-clip", false, "copy the rendered design to the clipboard (alias)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.id == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.output == "" && !cmd.toClipboard {
		return nil, errors.New("export needs -output, -to-clipboard or both")
	}
	return cmd, nil
}

func (e *exportCmd) Run() error {
	ws, err := e.root.openWorkspace(context.Background(), e.id)
	if err != nil {
		return err
	}
	defer closeWithLog("project", ws)

	comp, err := ws.compositor(e.photo)
	if err != nil {
		return err
	}
	frame := ws.session.Frame()
	if e.output != "" {
		if err := comp.ExportPNG(e.output, frame); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %s\n", e.output)
		e.notifier.Exported(e.output)
	}
	if e.toClipboard {
		img := comp.Compose(frame)
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		e.notifier.Copied(e.id, img)
	}
	return nil
}
