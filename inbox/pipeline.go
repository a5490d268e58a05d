package inbox

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/inbox-stats/inbox/fileutils"
)

const (
	DefaultMeIdentity  = "Will Taylor"
	DefaultMinMessages = 1000
)

// Options configures a Run.
type Options struct {
	// MeIdentity is the sender name counted as "me"; every other sender counts as others.
	MeIdentity string

	// MinMessages is the activity threshold. Only threads with strictly more messages are charted.
	MinMessages uint64

	// InputRoot holds one folder per conversation.
	InputRoot string

	// OutputPath receives the SVG chart. An existing file is replaced.
	OutputPath string

	// ReportPath, when set, receives a JSON report of every scanned thread.
	ReportPath string

	// PrettyReport indents the report JSON.
	PrettyReport bool

	Chart ChartOptions

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// RunResult contains basic stats from a run.
type RunResult struct {
	Conversations  int
	ThreadsScanned int
	ThreadsCharted int
	BytesWritten   int64
}

// Run scans InputRoot, counts messages per thread, and writes the chart of threads above the
// threshold. The first failure aborts the run; nothing is written unless every thread parsed.
func Run(ctx context.Context, opts Options) (RunResult, error) {
	if ctx == nil {
		return RunResult{}, errors.New("Run: ctx is nil")
	}
	if opts.InputRoot == "" {
		return RunResult{}, errors.New("Run: InputRoot is empty")
	}
	if opts.OutputPath == "" {
		return RunResult{}, errors.New("Run: OutputPath is empty")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	convs, err := ScanArchive(ctx, opts.InputRoot)
	if err != nil {
		return RunResult{}, err
	}

	var stats []ThreadStats
	var sources []string
	for _, conv := range convs {
		for _, path := range conv.Files {
			select {
			case <-ctx.Done():
				return RunResult{}, ctx.Err()
			default:
			}

			rec, err := ReadThreadFile(path)
			if err != nil {
				return RunResult{}, err
			}
			st := Analyse(rec, opts.MeIdentity)
			log.Debug("thread analysed",
				zap.String("file", path),
				zap.String("title", st.Title),
				zap.Uint8("participants", st.ParticipantCount),
				zap.Uint64("sent_by_me", st.SentByMe),
				zap.Uint64("sent_by_others", st.SentByOthers),
			)
			stats = append(stats, st)
			sources = append(sources, path)
		}
	}

	counts := Collate(stats, opts.MinMessages)
	if dups := countPassing(stats, opts.MinMessages) - len(counts); dups > 0 {
		log.Warn("duplicate thread titles above threshold; later threads replaced earlier ones",
			zap.Int("replaced", dups))
	}

	// Both outputs are staged before either is renamed into place, so a failure up to the
	// commit leaves no new file behind.
	var report *fileutils.StagedFile
	if opts.ReportPath != "" {
		b, err := fileutils.MarshalJSON(BuildReport(opts, stats, sources), opts.PrettyReport)
		if err != nil {
			return RunResult{}, fmt.Errorf("Run: encode report: %w", err)
		}
		report, err = fileutils.StageFile(opts.ReportPath, b, 0o644)
		if err != nil {
			return RunResult{}, fmt.Errorf("Run: write report %s: %w", opts.ReportPath, err)
		}
		defer report.Discard()
	}

	svg, err := RenderChart(counts, opts.Chart)
	if err != nil {
		return RunResult{}, err
	}
	chart, err := fileutils.StageFile(opts.OutputPath, svg, 0o644)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: write chart %s: %w", opts.OutputPath, err)
	}
	defer chart.Discard()

	if err := chart.Commit(); err != nil {
		return RunResult{}, fmt.Errorf("Run: write chart %s: %w", opts.OutputPath, err)
	}
	if report != nil {
		if err := report.Commit(); err != nil {
			return RunResult{}, fmt.Errorf("Run: write report %s: %w", opts.ReportPath, err)
		}
	}

	res := RunResult{
		Conversations:  len(convs),
		ThreadsScanned: len(stats),
		ThreadsCharted: len(counts),
		BytesWritten:   int64(len(svg)),
	}
	log.Info("chart written",
		zap.String("out", filepath.Clean(opts.OutputPath)),
		zap.Int("conversations", res.Conversations),
		zap.Int("threads", res.ThreadsScanned),
		zap.Int("charted", res.ThreadsCharted),
		zap.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return res, nil
}

func countPassing(stats []ThreadStats, minMessages uint64) int {
	n := 0
	for _, st := range stats {
		if Passes(st, minMessages) {
			n++
		}
	}
	return n
}
