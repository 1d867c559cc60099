package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocondprob/adapters/db/postgres/migrations"
	"gocondprob/adapters/excel"
	"gocondprob/adapters/markdown"
	"gocondprob/adapters/postgres"
	"gocondprob/adapters/rng"
	"gocondprob/adapters/session"
	"gocondprob/app"
	"gocondprob/domain/behavior"
	"gocondprob/domain/core"
	"gocondprob/domain/stats"
	"gocondprob/internal/config"
	"gocondprob/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "condprob",
		Short: "Conditional probabilities between behaviors in recorded sessions",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newBackgroundCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readerFor picks the session reader from the file extension
func readerFor(path string) ports.SessionReader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return excel.NewEventLogReader(excel.DefaultExcelConfig())
	default:
		return session.NewJSONReader()
	}
}

func serviceConfig(cfg *config.Config) app.AnalysisConfig {
	svcCfg := app.DefaultAnalysisConfig()
	svcCfg.MaxConcurrency = cfg.Analysis.MaxConcurrency
	svcCfg.BaselineDraws = cfg.Analysis.BaselineDraws
	svcCfg.BaselineSeed = cfg.Analysis.BaselineSeed
	return svcCfg
}

func connect(cfg *config.Config) (*sqlx.DB, error) {
	if !cfg.HasDatabase() {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	return db, nil
}

func newAnalyzeCmd() *cobra.Command {
	var target string
	var windowSeconds int
	var out string
	var appendTo bool
	var baseline bool
	var asMarkdown bool
	var persist bool

	cmd := &cobra.Command{
		Use:   "analyze [session-file]",
		Short: "Rank every behavior by how it follows a target behavior",
		Long: `Compute the four conditional probabilities of each behavior given a target
and write the ranked table as a spreadsheet or markdown report.

Example: condprob analyze session.raw --target s --window 10 --out report.xlsx --baseline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts := analyzeOptions{
				path:       args[0],
				target:     target,
				window:     analyzeWindow(cmd, cfg.Analysis.DefaultWindow, windowSeconds),
				out:        out,
				appendTo:   appendTo,
				baseline:   baseline,
				asMarkdown: asMarkdown,
				persist:    persist,
			}
			return runAnalyze(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target behavior identity or key")
	cmd.Flags().IntVar(&windowSeconds, "window", 0, "Look-ahead window in seconds (default from DEFAULT_WINDOW_SECONDS)")
	cmd.Flags().StringVar(&out, "out", "", "Report file (.xlsx, .md or .html)")
	cmd.Flags().BoolVar(&appendTo, "append", false, "Add the report to an existing workbook or markdown file")
	cmd.Flags().BoolVar(&baseline, "baseline", false, "Compare each behavior against random background targets")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Print the ranked table as markdown")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store the analysis in the database")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// analyzeWindow uses --window seconds when given, the configured default otherwise
func analyzeWindow(cmd *cobra.Command, defaultWindow core.Millis, seconds int) core.Millis {
	if cmd.Flags().Changed("window") {
		return core.MillisFromSeconds(seconds)
	}
	return defaultWindow
}

type analyzeOptions struct {
	path       string
	target     string
	window     core.Millis
	out        string
	appendTo   bool
	baseline   bool
	asMarkdown bool
	persist    bool
}

func runAnalyze(ctx context.Context, cfg *config.Config, opts analyzeOptions) error {
	fmt.Printf("🔬 Reading session %s...\n", opts.path)

	s, err := readerFor(opts.path).ReadSession(ctx, opts.path)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	var repo ports.AnalysisRepository
	if opts.persist {
		db, err := connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		repo = postgres.NewAnalysisRepository(db)
	}

	svc := app.NewAnalysisService(repo, rng.NewAdapter(), serviceConfig(cfg))

	startTime := time.Now()
	analysis, err := svc.Analyze(ctx, app.AnalysisRequest{
		Session:  s,
		Source:   opts.path,
		Target:   opts.target,
		Window:   opts.window,
		Baseline: opts.baseline,
		Persist:  opts.persist,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("\n📊 CONDITIONAL PROBABILITIES\n")
	fmt.Printf("Target: %s\n", analysis.Target.Label())
	fmt.Printf("Window: %s\n", analysis.Window)
	fmt.Printf("Target Events: %d\n", analysis.Targets)
	fmt.Printf("Processing Time: %v\n\n", time.Since(startTime))

	renderer := markdown.NewRenderer()
	if opts.asMarkdown {
		fmt.Println(renderer.Markdown(analysis))
	} else {
		printCandidates(analysis.Candidates)
	}

	if opts.out != "" {
		dest := cfg.ReportPath(opts.out)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
		if err := reportWriterFor(dest, renderer).WriteReport(ctx, analysis, dest, opts.appendTo); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("\n✅ Report written to %s\n", dest)
	}
	if opts.persist {
		fmt.Printf("💾 Stored analysis %s\n", analysis.ID)
	}
	return nil
}

func reportWriterFor(dest string, renderer *markdown.Renderer) ports.ReportWriter {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".md", ".html":
		return renderer
	default:
		return excel.NewReportWriter(excel.DefaultExcelConfig())
	}
}

func printCandidates(candidates []stats.Candidate) {
	fmt.Printf("%-4s %-24s %10s %10s %10s %10s %8s\n", "#", "Behavior", "Bin EO", "Bin Non-EO", "Prop EO", "Prop Non", "Avg")
	for i, c := range candidates {
		fmt.Printf("%-4d %-24s %10s %10s %10s %10s %8.3f\n",
			i+1,
			c.Behavior.Label(),
			formatProbability(c.Results.BinaryEO),
			formatProbability(c.Results.BinaryNonEO),
			formatProbability(c.Results.ProportionEO),
			formatProbability(c.Results.ProportionNonEO),
			c.Results.Avg,
		)
	}
}

func formatProbability(r stats.Results) string {
	if r.IsUndefined() {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", r.Probability)
}

func newBackgroundCmd() *cobra.Command {
	var target string
	var consequence string
	var events int
	var complete bool
	var stepSeconds int
	var seed int64

	cmd := &cobra.Command{
		Use:   "background [session-file]",
		Short: "Place background target events where the target and consequence are absent",
		Long: `Generate background (chance-level) target events for a session.

Example: condprob background session.raw --target s --consequence a --events 20 --seed 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !complete && events <= 0 {
				return fmt.Errorf("either --events or --complete is required")
			}
			return runBackground(cmd.Context(), args[0], app.BackgroundRequest{
				Target:      target,
				Consequence: consequence,
				Events:      events,
				Complete:    complete,
				Step:        core.MillisFromSeconds(stepSeconds),
				Seed:        seed,
			})
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target behavior identity or key")
	cmd.Flags().StringVar(&consequence, "consequence", "", "Consequence behavior identity or key")
	cmd.Flags().IntVar(&events, "events", 0, "Number of background events to place")
	cmd.Flags().BoolVar(&complete, "complete", false, "Use every free slot instead of a random sample")
	cmd.Flags().IntVar(&stepSeconds, "step", 1, "Slot spacing in seconds")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic placement")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("consequence")

	return cmd
}

func runBackground(ctx context.Context, path string, req app.BackgroundRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	s, err := readerFor(path).ReadSession(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	req.Session = s

	svc := app.NewAnalysisService(nil, rng.NewAdapter(), serviceConfig(cfg))
	generated, err := svc.Background(ctx, req)
	if err != nil {
		return fmt.Errorf("background generation failed: %w", err)
	}

	fmt.Printf("🎲 %d background events\n", len(generated))
	for _, e := range generated {
		fmt.Printf("  %-40s %s\n", e.Key, formatEventTime(e))
	}
	return nil
}

func formatEventTime(e behavior.Event) string {
	if e.Kind == behavior.KindContinuous {
		return fmt.Sprintf("%s-%s", e.StartTime, e.EndTime())
	}
	return e.StartTime.String()
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the analysis database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *migrations.Migrator) error {
					applied, err := m.Up(cmd.Context())
					if err != nil {
						return err
					}
					if len(applied) == 0 {
						fmt.Println("✅ Database is up to date")
						return nil
					}
					for _, v := range applied {
						fmt.Printf("✅ Applied %s\n", v)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *migrations.Migrator) error {
					statuses, err := m.Status(cmd.Context())
					if err != nil {
						return err
					}
					for _, st := range statuses {
						fmt.Printf("%-10s %s_%s\n", st.State, st.Version, st.Name)
					}
					return nil
				})
			},
		},
	)

	return cmd
}

func withMigrator(fn func(m *migrations.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := connect(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(migrations.NewMigrator(db))
}
