package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/example/glowplan/internal/catalog"
)

type assetsCmd struct {
	*root
	fs       *flag.FlagSet
	category string
	out      io.Writer
}

func (a *assetsCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func (a *assetsCmd) Program() string {
	return a.root.subcommand("assets")
}

func parseAssetsCmd(args []string, r *root) (*assetsCmd, error) {
	fs := flag.NewFlagSet("assets", flag.ContinueOnError)
	cmd := &assetsCmd{root: r, fs: fs, out: os.Stdout}
	fs.Usage = usageFunc(cmd)
	fs.StringVar(&cmd.category, "category", "", "only list string, singular or decor assets")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	if cmd.category != "" && !catalog.Category(cmd.category).Valid() {
		return nil, fmt.Errorf("unknown category %q", cmd.category)
	}
	return cmd, nil
}

func (a *assetsCmd) Run() error {
	set, err := a.root.loadCatalog()
	if err != nil {
		return err
	}
	list := set.Assets()
	if a.category != "" {
		list = set.ByCategory(catalog.Category(a.category))
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no assets available")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSPACING\tCOLOR")
	for _, as := range list {
		spacing := fmt.Sprintf("%gin", as.SpacingInches)
		if !as.Calibrated {
			spacing = fmt.Sprintf("%gpx", as.SpacingPixels)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", as.ID, as.Name, as.Category, spacing, catalog.FormatColor(as.Color))
	}
	return tw.Flush()
}
