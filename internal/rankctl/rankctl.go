// Package rankctl computes one ranking view from a dataset file and prints
// it, without starting the HTTP server.
package rankctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	app "github.com/okian/raidtier/internal/app"
	"github.com/okian/raidtier/internal/config"
	"github.com/okian/raidtier/internal/domain/ranking"
	"github.com/okian/raidtier/internal/domain/typechart"
	"github.com/okian/raidtier/pkg/logger"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	ErrUsage   = errors.New("usage")
	ErrNoInput = errors.New("-dataset is required")
)

// Options are the parsed command line flags.
type Options struct {
	Dataset string
	View    string
	Types   string
	Format  string
	Top     int
	Labels  string
	Chart   string
	Weather string
	Lenient bool
	Workers int
	Verbose bool
}

// Parse reads flags from args.
func Parse(args []string, stderr io.Writer) (*Options, error) {
	o := &Options{}
	fs := flag.NewFlagSet("rankctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.Dataset, "dataset", "", "JSON or YAML dataset file")
	fs.StringVar(&o.View, "view", string(ranking.Overall), "View: overall, type, counters or pvp")
	fs.StringVar(&o.Types, "type", "", "Attacking type for -view type; defending types (comma separated) for -view counters")
	fs.StringVar(&o.Format, "format", FormatYAML, "Output format: json or yaml")
	fs.IntVar(&o.Top, "top", 0, "Print only the first N entries (0 prints all)")
	fs.StringVar(&o.Labels, "labels", "", "Comma separated tier labels, best first; sets the number of tiers")
	fs.StringVar(&o.Chart, "chart", config.ChartScaleGo, "Effectiveness scale: go or main")
	fs.StringVar(&o.Weather, "weather", "", "Weather boost, e.g. sunny")
	fs.BoolVar(&o.Lenient, "lenient", false, "Substitute default stats for entities missing them")
	fs.IntVar(&o.Workers, "workers", 0, "Evaluation workers (0 uses every CPU)")
	fs.BoolVar(&o.Verbose, "verbose", false, "Log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if o.Dataset == "" {
		return nil, fmt.Errorf("%w: %w", ErrUsage, ErrNoInput)
	}
	if o.Format != FormatJSON && o.Format != FormatYAML {
		return nil, fmt.Errorf("%w: unknown format %q", ErrUsage, o.Format)
	}
	return o, nil
}

// Config maps the options onto a service configuration.
func (o *Options) Config() *config.Config {
	cfg := config.New()
	cfg.DatasetPath = o.Dataset
	cfg.ChartScale = o.Chart
	cfg.Weather = o.Weather
	cfg.SubstituteMissingStats = o.Lenient
	cfg.WorkerCount = o.Workers
	if o.Labels != "" {
		cfg.TierLabels = splitList(o.Labels)
		cfg.NumClasses = len(cfg.TierLabels)
	}
	return cfg
}

// Run parses args, computes the requested view and writes it to stdout.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := Parse(args, stderr)
	if err != nil {
		return err
	}

	lg := logger.Nop()
	if o.Verbose {
		if err := logger.Init(logger.WithOutput(stderr)); err != nil {
			return err
		}
		lg = logger.Get()
	}

	svc := app.New(app.WithConfig(o.Config()), app.WithLogger(lg))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop(ctx)

	view, err := compute(ctx, svc, o)
	if err != nil {
		return err
	}
	if o.Top > 0 && len(view.Entries) > o.Top {
		view.Entries = view.Entries[:o.Top]
	}
	return write(stdout, o.Format, view)
}

func compute(ctx context.Context, svc *app.Service, o *Options) (*ranking.View, error) {
	switch strings.ToLower(o.View) {
	case string(ranking.Overall):
		return svc.RankOverall(ctx)
	case "type", string(ranking.ByType):
		t, err := typechart.ParseType(o.Types)
		if err != nil {
			return nil, err
		}
		return svc.RankByType(ctx, t)
	case string(ranking.Counters):
		ts, err := typechart.ParseTypes(splitList(o.Types))
		if err != nil {
			return nil, err
		}
		return svc.RankCounters(ctx, ts...)
	case string(ranking.PVP):
		return svc.RankPVP(ctx)
	}
	return nil, fmt.Errorf("%w: unknown view %q", ErrUsage, o.View)
}

func write(w io.Writer, format string, v *ranking.View) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	// yaml.v3 has no knowledge of json tags; round-trip through a generic
	// value so both formats share the same keys.
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
