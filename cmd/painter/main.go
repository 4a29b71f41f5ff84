// Command painter renders and creates .painter documents and manages the
// snapshot store from the command line.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/config"
	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render/raster"
	"github.com/painterhq/painter/internal/scene"
	"github.com/painterhq/painter/internal/store"
	"github.com/painterhq/painter/internal/typeid"
)

const usage = `usage: painter <command> [flags]

commands:
  render     render a .painter file to PNG
  new        write an empty (or sample) .painter file
  snapshot   push a file to, or list, the snapshot store
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("painter", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "render":
		return runRender(ctx, cfg, args[1:])
	case "new":
		return runNew(ctx, args[1:], stdout)
	case "snapshot":
		return runSnapshot(ctx, cfg, args[1:], stdout)
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

func runRender(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	in := fs.String("in", "", "input .painter file")
	out := fs.String("out", "", "output PNG file")
	width := fs.Int("width", cfg.ViewportWidth, "image width in pixels")
	height := fs.Int("height", cfg.ViewportHeight, "image height in pixels")
	fit := fs.Bool("fit", false, "frame the content instead of using the default camera")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return errors.New("render: -in and -out are required")
	}

	s, err := document.Load(ctx, *in)
	if err != nil {
		return err
	}
	vp := camera.NewViewport(*width, *height)
	if !vp.Valid() {
		return fmt.Errorf("render: invalid size %dx%d", *width, *height)
	}
	cam := camera.ForMode(s.Mode())
	if *fit {
		cam = store.FitCamera(s, vp)
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := raster.RenderPNG(w, s, cam, vp); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", *in, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("rendered", "in", *in, "out", *out, "shapes", len(s.Shapes(s.Mode())))
	return nil
}

func runNew(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	mode := fs.String("mode", string(geom.Mode2D), "drawing mode: 2d or 3d")
	out := fs.String("out", "", "output .painter file")
	sample := fs.Bool("sample", false, "fill the document with sample shapes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m := geom.Mode(*mode)
	if !m.Valid() {
		return fmt.Errorf("new: unknown mode %q", *mode)
	}
	if *out == "" {
		return errors.New("new: -out is required")
	}

	s := scene.New(m)
	if *sample {
		s = document.NewSampleScene(m)
	}
	written, err := document.Save(ctx, *out, s)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, written)
	return nil
}

func runSnapshot(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	doc := fs.String("doc", "", "document id (pushing without one starts a new document)")
	in := fs.String("in", "", "push this .painter file as the next snapshot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *doc == "" {
		if *in == "" {
			return errors.New("snapshot: -doc is required to list")
		}
		*doc = typeid.NewDocumentID()
	}
	if err := typeid.Validate(*doc, typeid.PrefixDocument); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.SQLitePath, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if *in != "" {
		s, err := document.Load(ctx, *in)
		if err != nil {
			return err
		}
		data, err := document.Encode(s, document.ProjectName(*in), time.Now())
		if err != nil {
			return err
		}
		thumb, err := store.Thumbnail(s, cfg.ThumbnailSize)
		if err != nil {
			return err
		}
		v, err := st.Put(ctx, *doc, data, thumb)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s version %d\n", *doc, v)
		return nil
	}

	snaps, err := st.List(ctx, *doc)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tID\tCREATED")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, s.ID, s.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
