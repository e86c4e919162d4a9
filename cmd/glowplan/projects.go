package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
)

type projectsCmd struct {
	*root
	fs  *flag.FlagSet
	out io.Writer
}

func (p *projectsCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func (p *projectsCmd) Program() string {
	return p.root.subcommand("projects")
}

func parseProjectsCmd(args []string, r *root) (*projectsCmd, error) {
	fs := flag.NewFlagSet("projects", flag.ContinueOnError)
	cmd := &projectsCmd{root: r, fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (p *projectsCmd) Run() error {
	ctx := context.Background()
	store, closer, err := p.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeWithLog("store", closer)
	ids, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(p.out, "no projects")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(p.out, id)
	}
	return nil
}
