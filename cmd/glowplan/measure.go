package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

type measureCmd struct {
	*root
	fs  *flag.FlagSet
	id  string
	out io.Writer
}

func (m *measureCmd) FlagSet() *flag.FlagSet {
	return m.fs
}

func (m *measureCmd) Program() string {
	return m.root.subcommand("measure")
}

func parseMeasureCmd(args []string, r *root) (*measureCmd, error) {
	fs := flag.NewFlagSet("measure", flag.ContinueOnError)
	cmd := &measureCmd{root: r, fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.id, "project", "", "project id")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cmd.id == "" || fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (m *measureCmd) Run() error {
	ws, err := m.root.openWorkspace(context.Background(), m.id)
	if err != nil {
		return err
	}
	defer closeWithLog("project", ws)

	s := ws.session
	if factor, ok := s.Calibrator().ScaleFactor(); ok {
		fmt.Fprintf(m.out, "scale: %.2f px/ft\n", factor)
	} else {
		fmt.Fprintln(m.out, "scale: not set")
	}
	lines := s.Store().MeasurementLines()
	if len(lines) == 0 {
		fmt.Fprintln(m.out, "no measurement lines")
		return nil
	}
	tw := tabwriter.NewWriter(m.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tEND\tLENGTH")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%.0f,%.0f\t%.0f,%.0f\t%s\n", l.ID, l.Start.X, l.Start.Y, l.End.X, l.End.Y, l.Label)
	}
	return tw.Flush()
}
