package main

import (
	"context"
	"flag"
	"image"

	"github.com/example/glowplan/internal/appstate"
	"github.com/example/glowplan/internal/clipboard"
)

type designCmd struct {
	*root
	fs *flag.FlagSet
	projectFlags
}

func (d *designCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func (d *designCmd) Program() string {
	return d.root.subcommand("design")
}

func parseDesignCmd(args []string, r *root) (*designCmd, error) {
	fs := flag.NewFlagSet("design", flag.ContinueOnError)
	cmd := &designCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.projectFlags.register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.id == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (d *designCmd) Run() error {
	ctx := context.Background()
	ws, err := d.root.openWorkspace(ctx, d.id)
	if err != nil {
		return err
	}
	comp, err := ws.compositor(d.photo)
	if err != nil {
		closeWithLog("project", ws)
		return err
	}
	win := appstate.NewWindow(ws.session, comp,
		appstate.WithSaveHandler(func() error { return ws.Save(ctx) }),
		appstate.WithCopyHandler(func(img image.Image) error {
			if err := clipboard.WriteImage(img); err != nil {
				return err
			}
			d.notifier.Copied(d.id, img)
			return nil
		}),
	)
	win.Run()
	return ws.Close()
}
