// Package cli implements the wellbeing CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fooddiary/wellbeing-diary-nexus/internal/appstate"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/backup"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/config"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/journal"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/kv"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/photo"
	"github.com/fooddiary/wellbeing-diary-nexus/internal/store"
)

var (
	configFile string
	v          = config.New()
	cfg        config.Config
	logger     = slog.Default()
	logs       *journal.Journal
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "wellbeing",
	Short: "Local meal, water and weight diary",
	Long:  "A local wellbeing diary. Meals, water and weight in SQLite, photos on disk, JSON out.",

	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default: <data-dir>/config.yaml if present)")
	pf.String("data-dir", "", "Data directory (default: $WELLBEING_DATA_DIR or ~/.wellbeing)")
	pf.StringP("db", "d", "", "Database path (default: <data-dir>/wellbeing.db)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")

	v.BindPFlag("data_dir", pf.Lookup("data-dir"))
	v.BindPFlag("db", pf.Lookup("db"))
	v.BindPFlag("log.level", pf.Lookup("log-level"))
	v.BindPFlag("log.format", pf.Lookup("log-format"))
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(v, configFile)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var base slog.Handler
	if cfg.LogFormat == "json" {
		base = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		base = slog.NewTextHandler(os.Stderr, opts)
	}
	logs = journal.New(cfg.Journal)
	logger = slog.New(journal.NewHandler(base, logs, cfg.JournalLevel))
	slog.SetDefault(logger)
	return nil
}

// app is the wiring shared by commands that touch the diary.
type app struct {
	db     *store.SQLiteStore
	photos *photo.FileStore
	state  *appstate.Store
}

func (a *app) Close() error {
	return a.db.Close()
}

// openApp builds the store stack and initializes the snapshot. Extra
// notifiers receive user notices in addition to stderr. A startup that
// recovered settings from the fallback cache still opens; the user has
// already been told.
func openApp(cmd *cobra.Command, extra ...appstate.Notifier) (*app, error) {
	db := store.NewSQLiteStore(cfg.DB)
	photos := photo.NewFileStore(cfg.PhotoRoot)

	notifiers := appstate.MultiNotifier{appstate.NewWriterNotifier(cmd.ErrOrStderr())}
	notifiers = append(notifiers, extra...)

	st := appstate.New(appstate.Options{
		Gateway:  db,
		Photos:   photos,
		Fallback: kv.NewFileStore(cfg.Fallback),
		Notifier: notifiers,
		Logger:   logger,
	})
	if err := st.InitializeAppState(cmd.Context()); err != nil {
		var initErr *appstate.InitError
		if !errors.As(err, &initErr) || !initErr.Recovered {
			db.Close()
			return nil, err
		}
		logger.Warn("continuing with recovered settings", "step", initErr.Step, "err", initErr.Err)
	}
	return &app{db: db, photos: photos, state: st}, nil
}

func openBackups() (*backup.Engine, *store.SQLiteStore) {
	db := store.NewSQLiteStore(cfg.DB)
	return backup.New(db, cfg.BackupDir, logger), db
}

func printJSON(cmd *cobra.Command, x any) {
	if err := writeJSON(cmd.OutOrStdout(), x); err != nil {
		exitErr("encode output", err)
	}
}

func writeJSON(w io.Writer, x any) error {
	b, err := json.MarshalIndent(x, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
