package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/example/glowplan/internal/appstate"
	"github.com/example/glowplan/internal/autosave"
	"github.com/example/glowplan/internal/catalog"
	"github.com/example/glowplan/internal/config"
	"github.com/example/glowplan/internal/project"
	"github.com/example/glowplan/internal/render"
)

const flushTimeout = 10 * time.Second

func closeWithLog(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("%s: close: %v", name, err)
	}
}

// projectFlags are shared by every subcommand that opens a project.
type projectFlags struct {
	id    string
	photo string
}

func (p *projectFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.id, "project", "", "project id")
	fs.StringVar(&p.photo, "photo", "", "PNG photo to design over")
}

func (r *root) openStore(ctx context.Context) (project.Store, io.Closer, error) {
	switch strings.ToLower(r.storeKind) {
	case "", "file":
		return project.NewFileStore(config.ExpandPath(r.config.ProjectDir)), nopCloser{}, nil
	case "sqlite":
		path := config.ExpandPath(r.config.DBPath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create store dir: %w", err)
		}
		st, err := project.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want file or sqlite)", r.storeKind)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func (r *root) loadCatalog() (*catalog.Set, error) {
	set, err := catalog.NewLoader().LoadWithExtras(r.config.Catalog)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	set.Merge(r.config.AssetSet())
	return set, nil
}

// workspace is an open project: the session, its store and the autosaver
// writing to it.
type workspace struct {
	r       *root
	id      string
	session *appstate.Session
	catalog *catalog.Set
	store   project.Store
	closer  io.Closer
	saver   *autosave.Saver
}

func (r *root) openWorkspace(ctx context.Context, projectID string) (*workspace, error) {
	if err := project.ValidateID(projectID); err != nil {
		return nil, err
	}
	set, err := r.loadCatalog()
	if err != nil {
		return nil, err
	}
	store, closer, err := r.openStore(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := store.Load(ctx, projectID)
	if err != nil {
		closeWithLog("store", closer)
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	cfg := r.config
	opts := []appstate.Option{
		appstate.WithCatalog(set),
		appstate.WithLimits(cfg.Limits()),
		appstate.WithDecorBounds(cfg.DecorBounds()),
		appstate.WithDrawerOptions(cfg.DrawerOptions()),
		appstate.WithUndoLimit(cfg.Undo.Limit),
		appstate.WithStringThreshold(cfg.Canvas.StringThreshold),
		appstate.WithDecorRadius(cfg.Canvas.DecorDefaultRadius),
		appstate.WithLanguage(language.Make(cfg.Locale)),
	}
	for _, c := range []catalog.Category{catalog.CategoryString, catalog.CategorySingular, catalog.CategoryDecor} {
		if a, ok := set.First(c); ok {
			opts = append(opts, appstate.WithAsset(c, a.ID))
		}
	}
	s, err := appstate.NewSession(opts...)
	if err != nil {
		closeWithLog("store", closer)
		return nil, err
	}
	if err := s.Restore(snap); err != nil {
		closeWithLog("store", closer)
		return nil, err
	}

	w := &workspace{r: r, id: projectID, session: s, catalog: set, store: store, closer: closer}
	w.saver = autosave.New(store, projectID,
		autosave.WithDelay(cfg.AutosaveDelay()),
		autosave.WithSavedHandler(r.notifier.Saved),
		autosave.WithErrorHandler(func(err error) { r.notifier.SaveFailed(projectID, err) }),
	)
	s.SetAutosave(w.saver)
	return w, nil
}

// Save writes the design now.
func (w *workspace) Save(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	return w.saver.Flush(ctx, w.session.Snapshot())
}

// Close saves anything pending and releases the store.
func (w *workspace) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	err := w.saver.Flush(ctx, nil)
	w.saver.Close()
	if cerr := w.closer.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

// compositor builds a compositor over the optional photo.
func (w *workspace) compositor(photo string) (*render.Compositor, error) {
	opts := []render.Option{}
	if photo != "" {
		img, err := loadPNG(photo)
		if err != nil {
			return nil, err
		}
		opts = append(opts, render.WithBase(img))
	}
	return render.NewCompositor(w.catalog, opts...), nil
}

func loadPNG(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open photo: %w", err)
	}
	img, err := png.Decode(f)
	closeErr := f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode photo %s: %w", path, err)
	}
	if closeErr != nil {
		return nil, closeErr
	}
	rgba := image.NewRGBA(image.Rectangle{Max: img.Bounds().Size()})
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
