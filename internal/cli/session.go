package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/nutrilog/internal/config"
	"github.com/roach88/nutrilog/internal/datekey"
	"github.com/roach88/nutrilog/internal/logging"
	"github.com/roach88/nutrilog/internal/meal"
	"github.com/roach88/nutrilog/internal/storage"
	"github.com/roach88/nutrilog/internal/store"
)

// session is the per-invocation wiring: config, logger, and an initialized
// storage façade whose recovered problems are collected as warnings.
type session struct {
	opts    *RootOptions
	cfg     *config.Config
	logger  *zap.Logger
	record  *store.RecordStore
	storage *storage.Storage
	out     *OutputFormatter

	mu       sync.Mutex
	warnings []CLIWarning
	loadErrs int
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Warnings go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// openSession loads config, builds the logger and storage, and runs Init.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	out := newFormatter(cmd, opts)

	cfg, err := config.Load(opts.ConfigPath, "")
	if err != nil {
		return nil, failCommand(out, ErrCodeInvalidInput, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database.Path = opts.Database
	}

	logger := opts.Logger
	if logger == nil {
		level := cfg.Log.Level
		if opts.Verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Log.Format)
		if err != nil {
			return nil, failCommand(out, ErrCodeInvalidInput, "failed to create logger", err)
		}
	}

	s := &session{opts: opts, cfg: cfg, logger: logger, out: out}
	if !cfg.Database.Disabled {
		s.record = store.NewRecordStore(cfg.Database.Path, cfg.StoreOptions())
	}
	s.storage = storage.New(s.record,
		storage.WithLogger(logging.Named(logger, "storage")),
		storage.WithClock(opts.now),
		storage.WithErrorHandler(s.report),
	)

	out.VerboseLog("opening database %s", cfg.Database.Path)
	s.storage.Init(commandContext(cmd))
	if s.storage.UsingFallback() {
		out.VerboseLog("using in-memory storage")
	}
	return s, nil
}

// report is the storage error callback. Save and delete failures are also
// returned to the command, so only recovered problems become warnings.
func (s *session) report(e *storage.Error) {
	switch e.Kind {
	case storage.KindSaveFailed, storage.KindQuotaExceeded, storage.KindDeleteFailed:
		return
	}

	s.mu.Lock()
	s.warnings = append(s.warnings, CLIWarning{Kind: string(e.Kind), Message: e.Message()})
	if e.Kind == storage.KindLoadFailed {
		s.loadErrs++
	}
	s.mu.Unlock()

	s.out.Warn(e)
}

func (s *session) Warnings() []CLIWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CLIWarning(nil), s.warnings...)
}

// loadForEdit loads a day that is about to be modified and saved back. A
// failed read would otherwise be saved over the stored day as if it were
// empty.
func (s *session) loadForEdit(ctx context.Context, date time.Time) (meal.Meals, error) {
	s.mu.Lock()
	before := s.loadErrs
	s.mu.Unlock()

	meals := s.storage.LoadMealRecords(ctx, date)

	s.mu.Lock()
	failed := s.loadErrs > before
	s.mu.Unlock()
	if failed {
		return nil, fmt.Errorf("load %s: %w", datekey.FromTime(date), errLoadForEdit)
	}
	return meals, nil
}

func (s *session) Close() {
	if s.record != nil {
		if err := s.record.Close(); err != nil {
			s.logger.Error("error closing database", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

func commandContext(cmd *cobra.Command) context.Context {
	// Use command's context if available (for testing), otherwise create one
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseDate accepts YYYY-MM-DD, "today" or "yesterday".
func parseDate(value string, now func() time.Time) (time.Time, error) {
	switch value {
	case "", "today":
		return now(), nil
	case "yesterday":
		return now().AddDate(0, 0, -1), nil
	}
	key, err := datekey.Parse(value)
	if err != nil {
		return time.Time{}, err
	}
	return key.Time(), nil
}

// parseSlot accepts the stored slot names.
func parseSlot(value string) (meal.Slot, error) {
	slot, ok := meal.ParseSlot(value)
	if !ok {
		return "", fmt.Errorf("unknown slot %q: must be one of %v", value, meal.Slots)
	}
	return slot, nil
}
