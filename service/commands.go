package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"firsttime/app/config"
	"firsttime/app/models"
	"firsttime/app/observability"
	"firsttime/app/repositories"
	"firsttime/app/seed"
	"firsttime/app/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "dev"

var osExit = os.Exit

// Execute runs the CLI and exits with its status.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		osExit(1)
	}
}

// NewRootCommand builds the firsttime command tree.
func NewRootCommand() *cobra.Command {
	var configDir, dataDir string

	root := &cobra.Command{
		Use:          "firsttime",
		Short:        "first.time, a community archive of first experiences",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.yml")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override DATA_DIR")

	load := func() (*config.Config, error) {
		var dirs []string
		if configDir != "" {
			dirs = append(dirs, configDir)
		}
		cfg, err := config.Load(dirs...)
		if err != nil {
			return nil, err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		return cfg, cfg.Validate()
	}

	root.AddCommand(
		newServeCommand(load),
		newInitCommand(load),
		newCleanCommand(load),
		newBackupCommand(load),
		newRestoreCommand(load),
		newSeedCommand(load),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "firsttime version %s\n", Version)
			},
		},
	)
	return root
}

type configLoader func() (*config.Config, error)

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return RunServer(ctx, cfg, logger, Version)
		},
	}
}

func newInitCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the local database with the demo posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if exists(cfg.BadgerPath()) {
				fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
				return nil
			}

			db, err := repositories.OpenBadger(cfg.BadgerPath())
			if err != nil {
				return err
			}
			defer db.Close()

			store := services.NewPostStore(repositories.NewLocalAdapter(db))
			store.Load(cmd.Context())
			fmt.Fprintf(out, "Database initialized with %d posts\n", len(store.Snapshot()))
			return nil
		},
	}
}

func newCleanCommand(load configLoader) *cobra.Command {
	var postsOnly bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists(cfg.BadgerPath()) {
				fmt.Fprintln(out, "Database is already clean (does not exist)")
				return nil
			}
			if postsOnly {
				if !confirm(cmd.InOrStdin(), out, "Remove the stored posts? Display names are kept.") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				return clearPosts(cfg.BadgerPath(), out)
			}
			if !confirm(cmd.InOrStdin(), out, "Are you sure you want to clean the database? This cannot be undone.") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}
			if err := os.RemoveAll(cfg.BadgerPath()); err != nil {
				return fmt.Errorf("clean database: %w", err)
			}
			fmt.Fprintln(out, "Database cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&postsOnly, "posts", false, "only remove the stored posts so the next start seeds again")
	return cmd
}

func clearPosts(path string, out io.Writer) error {
	db, err := repositories.OpenBadger(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewLocalAdapter(db).Clear(); err != nil {
		return fmt.Errorf("clear posts: %w", err)
	}
	fmt.Fprintln(out, "Stored posts removed")
	return nil
}

func newBackupCommand(load configLoader) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full backup of the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !exists(cfg.BadgerPath()) {
				fmt.Fprintln(out, "No database exists to backup")
				return nil
			}

			if output == "" {
				output = filepath.Join(cfg.DataDir, "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create backup directory: %w", err)
			}

			db, err := repositories.OpenBadger(cfg.BadgerPath())
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create backup file: %w", err)
			}
			defer f.Close()

			if _, err := db.Backup(f, 0); err != nil {
				return fmt.Errorf("backup database: %w", err)
			}
			fmt.Fprintf(out, "Database backed up successfully to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "backup file (default DATA_DIR/backups/backup_<unix>.db)")
	return cmd
}

func newRestoreCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the local database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			backupFile := args[0]

			fi, err := os.Stat(backupFile)
			if err != nil {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			if exists(cfg.BadgerPath()) {
				if !confirm(cmd.InOrStdin(), out, "Existing database found. Do you want to replace it?") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				if err := os.RemoveAll(cfg.BadgerPath()); err != nil {
					return fmt.Errorf("remove existing database: %w", err)
				}
			}

			db, err := repositories.OpenBadger(cfg.BadgerPath())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := restoreFrom(db, backupFile); err != nil {
				return fmt.Errorf("restore database: %w", err)
			}
			fmt.Fprintln(out, "Database restored successfully")
			return nil
		},
	}
}

func restoreFrom(db *badger.DB, backupFile string) (err error) {
	f, err := os.Open(backupFile)
	if err != nil {
		return err
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	return db.Load(f, 4)
}

func newSeedCommand(load configLoader) *cobra.Command {
	var (
		count    int
		comments int
		seedVal  int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add generated posts to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)

			app := &App{Config: cfg, Logger: logger}
			defer app.Close()

			db, err := repositories.OpenBadger(cfg.BadgerPath())
			if err != nil {
				return err
			}
			app.closers = append(app.closers, db.Close)

			ctx := cmd.Context()
			adapter := app.openAdapter(ctx, db)
			app.closers = append(app.closers, adapter.Close)

			store := services.NewPostStore(adapter, services.WithLogger(logger))
			store.Load(ctx)

			added, err := seedPosts(ctx, store, seed.NewFactory(seedVal), count, comments, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d posts to the %s store (%d total)\n", added, store.AdapterName(), len(store.Snapshot()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "fake", "n", 10, "number of posts to generate")
	cmd.Flags().IntVar(&comments, "comments", 2, "comments per generated post")
	cmd.Flags().Int64Var(&seedVal, "seed", 0, "random seed (0 picks one)")
	return cmd
}

// draftSource produces the posts and comments added by the seed command.
type draftSource interface {
	PostDraft() models.PostDraft
	CommentDraft() models.CommentDraft
}

// seedPosts adds count posts with comments each. Writes that fail to persist
// stay in memory and are logged; any other error stops the run.
func seedPosts(ctx context.Context, store *services.PostStore, src draftSource, count, comments int, logger *slog.Logger) (int, error) {
	added := 0
	for i := 0; i < count; i++ {
		post, err := store.AddPost(ctx, src.PostDraft())
		if err != nil && !models.IsPersistence(err) {
			return added, err
		}
		if err != nil {
			logger.Warn("post not persisted", "post_id", post.ID, "error", err)
		}
		added++
		for j := 0; j < comments; j++ {
			_, err := store.AddComment(ctx, post.ID, src.CommentDraft())
			if err != nil && !models.IsPersistence(err) {
				return added, fmt.Errorf("comment on post %s: %w", post.ID, err)
			}
			if err != nil {
				logger.Warn("comment not persisted", "post_id", post.ID, "error", err)
			}
		}
	}
	return added, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	var response string
	fmt.Fscanln(in, &response)
	return response == "y" || response == "Y"
}
