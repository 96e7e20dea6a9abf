// Command flowfit-report renders personal or team flow-fit reports from a
// JSON, YAML or wide CSV file without running the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/flowfit/internal/adapters/interchange"
	"github.com/okian/flowfit/internal/domain/catalog"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/internal/domain/person"
	"github.com/okian/flowfit/internal/domain/report"
	"github.com/okian/flowfit/internal/domain/team"
	"github.com/okian/flowfit/pkg/logger"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitMismatch = 3
)

const (
	modePersonal = "personal"
	modeTeam     = "team"
)

var errMismatch = errors.New("report differs from the previous version")

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	in      string
	format  string
	mode    string
	catalog string
	verify  string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("flowfit-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o options
	fs.StringVar(&o.in, "in", "", "Input file with respondent profiles (.json, .yaml, .csv)")
	fs.StringVar(&o.format, "format", "", "Input format; derived from the file extension when empty")
	fs.StringVar(&o.mode, "mode", modePersonal, "Report kind: personal or team")
	fs.StringVar(&o.catalog, "catalog", "", "Optional YAML domain catalog")
	fs.StringVar(&o.verify, "verify", "", "Previously exported report to compare the regenerated one against")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	log := logger.New(logger.WithWriter(stderr)).Named("flowfit-report")
	if o.in == "" {
		log.Error(ctx, "missing -in")
		fs.Usage()
		return exitUsage
	}

	out, err := render(o)
	if err != nil {
		log.Error(ctx, "rendering failed", logger.String("in", o.in), logger.Error(err))
		return exitFailure
	}

	if o.verify != "" {
		if err := verify(o.verify, out, stdout); err != nil {
			if errors.Is(err, errMismatch) {
				log.Warn(ctx, "report changed", logger.String("previous", o.verify))
				return exitMismatch
			}
			log.Error(ctx, "verification failed", logger.Error(err))
			return exitFailure
		}
		_, _ = fmt.Fprintln(stdout, "report unchanged")
		return exitOK
	}

	_, _ = io.WriteString(stdout, out)
	return exitOK
}

func render(o options) (string, error) {
	cat := catalog.Default()
	if o.catalog != "" {
		c, err := catalog.Load(o.catalog)
		if err != nil {
			return "", err
		}
		cat = c
	}

	name := o.format
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(o.in), ".")
	}
	f, err := interchange.ParseFormat(name)
	if err != nil {
		return "", err
	}
	fh, err := os.Open(o.in)
	if err != nil {
		return "", err
	}
	defer func() { _ = fh.Close() }()
	raw, err := interchange.Decode(f, fh)
	if err != nil {
		return "", err
	}

	profiles := make([]model.Profile, 0, len(raw))
	for _, in := range raw {
		p, err := model.NewProfile(cat, in.Name, in.Ratings)
		if err != nil {
			return "", err
		}
		profiles = append(profiles, p)
	}

	switch o.mode {
	case modeTeam:
		snap := model.Snapshot{Profiles: profiles}
		agg, err := team.Aggregate(cat, snap)
		if err != nil {
			return "", err
		}
		return report.ComposeTeam(cat, snap, agg)
	case modePersonal:
		if len(profiles) == 0 {
			return "", model.ErrEmptySnapshot
		}
		var b strings.Builder
		for i, p := range profiles {
			agg, err := person.Aggregate(cat, p)
			if err != nil {
				return "", err
			}
			text, err := report.ComposePersonal(cat, p, agg)
			if err != nil {
				return "", err
			}
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown mode %q", o.mode)
	}
}

// verify prints a unified diff of previous against current to w.
func verify(previousPath, current string, w io.Writer) error {
	prev, err := os.ReadFile(previousPath)
	if err != nil {
		return err
	}
	d, err := report.Diff(string(prev), current)
	if err != nil {
		return err
	}
	if d == "" {
		return nil
	}
	_, _ = io.WriteString(w, d)
	return errMismatch
}
