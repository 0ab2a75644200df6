package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/patch-atlas/pkg/models/domain"
	"github.com/de-tools/patch-atlas/pkg/models/store"
	"github.com/de-tools/patch-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/patch-atlas/pkg/services/config"
	"github.com/de-tools/patch-atlas/pkg/services/locale"
	"github.com/de-tools/patch-atlas/pkg/services/report"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite/history"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus/apiremoting"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Deps are the external collaborators the commands need. Tests swap them for
// fakes.
type Deps struct {
	Drivers     wsus.Registry
	OpenHistory func(path string) (history.Store, func() error, error)
	Out         io.Writer
	ErrOut      io.Writer
}

type ReportCmd struct {
	deps Deps

	servers      []string
	kbNumber     int
	architecture string
	driver       string
	format       string
	outputPath   string
	localeTag    string
	profile      string
	profilePath  string
	historyDB    string
	insecure     bool
	timeout      time.Duration
}

func NewReportCmd(deps Deps) *cobra.Command {
	rc := &ReportCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report installation status of a KB across all computers of one or more WSUS servers",
		RunE:  rc.run,
	}

	cmd.Flags().StringArrayVar(&rc.servers, "server", nil, "WSUS server to query (repeatable)")
	cmd.Flags().IntVar(&rc.kbNumber, "kb", 0, "Knowledge-base number of the update")
	cmd.Flags().StringVar(&rc.architecture, "architecture", "", "Substring filter on update titles (e.g. x86, x64)")
	cmd.Flags().StringVar(&rc.driver, "driver", apiremoting.DriverName, "Registered transport driver to reach the servers with")
	cmd.Flags().StringVar(&rc.format, "format", string(export.FormatCSV), "Output format: CSV or Console")
	cmd.Flags().StringVar(&rc.outputPath, "output", "", "Directory for CSV artifacts (default: the executable's directory)")
	cmd.Flags().StringVar(&rc.localeTag, "locale", "", "Locale for state labels and file timestamps (default: environment)")
	cmd.Flags().StringVar(&rc.profile, "profile", "", "Named profile supplying flag defaults")
	cmd.Flags().StringVar(&rc.profilePath, "config", defaultConfigPath(), "Path to the profiles file")
	cmd.Flags().StringVar(&rc.historyDB, "history-db", "", "SQLite file recording run history (empty disables)")
	cmd.Flags().BoolVar(&rc.insecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().DurationVar(&rc.timeout, "timeout", 0, "Per-call timeout (0 means none)")

	_ = cmd.MarkFlagRequired("kb")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	if err := rc.applyProfile(cmd); err != nil {
		return err
	}

	// Format is validated before anything touches the network or the disk.
	format, err := export.ParseFormat(rc.format)
	if err != nil {
		return err
	}
	if len(rc.servers) == 0 {
		return fmt.Errorf("at least one --server is required")
	}

	dial, err := rc.deps.Drivers.Create(rc.driver, wsus.DriverOptions{
		Timeout:            rc.timeout,
		InsecureSkipVerify: rc.insecure,
	})
	if err != nil {
		return err
	}

	loc := locale.FromEnv()
	if rc.localeTag != "" {
		loc = locale.Resolve(rc.localeTag)
	}

	outputDir, err := rc.resolveOutputDir()
	if err != nil {
		return err
	}

	reporter, err := rc.newReporter(format, outputDir, loc)
	if err != nil {
		return err
	}

	runs, closeHistory, err := rc.openHistory()
	if err != nil {
		return err
	}
	if closeHistory != nil {
		defer closeHistory()
	}

	logger := zerolog.New(rc.deps.ErrOut).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	extractor := report.NewExtractor(dial, loc)

	opts := report.Options{
		Architecture: rc.architecture,
		Progress:     progressIndicator(rc.deps.ErrOut),
	}

	for _, server := range rc.servers {
		startedAt := time.Now()
		rep, err := rc.processServer(ctx, extractor, reporter, server, opts)
		if err != nil {
			// One broken server never aborts the rest of the run. The
			// remaining work for this server is abandoned.
			logger.Error().
				Str("server", server).
				Str("error_type", fmt.Sprintf("%T", err)).
				Msg(err.Error())
		}
		rc.recordRun(ctx, runs, rep, startedAt, err, logger)
	}
	return nil
}

// processServer extracts one server and writes its artifacts. Detail
// artifacts for updates completed before a failure are still written; the
// summary artifact is only written when the whole server succeeded.
func (rc *ReportCmd) processServer(
	ctx context.Context,
	extractor *report.Extractor,
	reporter export.Reporter,
	server string,
	opts report.Options,
) (*domain.ServerReport, error) {
	rep, extractErr := extractor.ExtractServer(ctx, server, rc.kbNumber, opts)

	for _, upd := range rep.Updates {
		if err := reporter.WriteDetail(rep, upd); err != nil {
			return rep, err
		}
	}
	if extractErr != nil {
		return rep, extractErr
	}

	if err := reporter.WriteSummary(rep); err != nil {
		return rep, err
	}
	return rep, nil
}

func (rc *ReportCmd) applyProfile(cmd *cobra.Command) error {
	if rc.profile == "" {
		return nil
	}

	registry, err := config.NewRegistry(rc.profilePath)
	if err != nil {
		return fmt.Errorf("load profiles from %s: %w", rc.profilePath, err)
	}
	profile, err := registry.GetProfile(cmd.Context(), rc.profile)
	if err != nil {
		return err
	}

	if len(rc.servers) == 0 {
		rc.servers = profile.Servers
	}
	if !cmd.Flags().Changed("format") && profile.Format != "" {
		rc.format = profile.Format
	}
	if !cmd.Flags().Changed("driver") && profile.Driver != "" {
		rc.driver = profile.Driver
	}
	if rc.architecture == "" {
		rc.architecture = profile.Architecture
	}
	if rc.outputPath == "" {
		rc.outputPath = profile.OutputPath
	}
	if rc.localeTag == "" {
		rc.localeTag = profile.Locale
	}
	if !rc.insecure {
		rc.insecure = profile.Insecure
	}
	if rc.timeout == 0 && profile.TimeoutSeconds > 0 {
		rc.timeout = time.Duration(profile.TimeoutSeconds) * time.Second
	}
	return nil
}

func (rc *ReportCmd) resolveOutputDir() (string, error) {
	if rc.outputPath != "" {
		return rc.outputPath, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve default output directory: %w", err)
	}
	return filepath.Dir(exe), nil
}

func (rc *ReportCmd) newReporter(format export.Format, outputDir string, loc locale.Locale) (export.Reporter, error) {
	switch format {
	case export.FormatConsole:
		return export.NewConsoleReporter(rc.deps.Out), nil
	default:
		// One stamp per invocation: every server of a run shares it.
		return export.NewCSVReporter(outputDir, loc.FileStamp(time.Now())), nil
	}
}

func (rc *ReportCmd) openHistory() (history.Store, func() error, error) {
	if rc.historyDB == "" || rc.deps.OpenHistory == nil {
		return nil, nil, nil
	}
	return rc.deps.OpenHistory(rc.historyDB)
}

func (rc *ReportCmd) recordRun(
	ctx context.Context,
	runs history.Store,
	rep *domain.ServerReport,
	startedAt time.Time,
	runErr error,
	logger zerolog.Logger,
) {
	if runs == nil || rep == nil {
		return
	}

	rec := store.RunRecord{
		Server:         rep.Server,
		KBNumber:       rep.KBNumber,
		Architecture:   rc.architecture,
		Format:         rc.format,
		UpdatesMatched: len(rep.Updates),
		StartedAt:      startedAt,
		CompletedAt:    time.Now(),
	}
	for _, upd := range rep.Updates {
		rec.ComputersReported += len(upd.Computers)
	}
	for _, row := range rep.Summary {
		rec.InstalledCount += row.InstalledCount
		rec.FailedCount += row.FailedCount
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	if err := runs.Add(ctx, rec); err != nil {
		logger.Warn().Err(err).Msg("failed to record run history")
	}
}

// progressIndicator renders a carriage-returned counter while the detail
// records of an update are processed.
func progressIndicator(out io.Writer) func(processed, total int) {
	return func(processed, total int) {
		fmt.Fprintf(out, "\rprocessing installation records %d/%d", processed, total)
		if processed == total {
			fmt.Fprintln(out)
		}
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wsusreport"
	}
	return filepath.Join(home, ".wsusreport")
}
