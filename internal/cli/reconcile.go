package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/bookreviews/internal/audit"
	"github.com/mrlokans/bookreviews/internal/config"
	"github.com/mrlokans/bookreviews/internal/database"
	dbaudit "github.com/mrlokans/bookreviews/internal/database/audit"
	"github.com/mrlokans/bookreviews/internal/database/books"
	ledger "github.com/mrlokans/bookreviews/internal/database/reviews"
	"github.com/mrlokans/bookreviews/internal/database/settings"
	"github.com/mrlokans/bookreviews/internal/tasks"
)

// ReconcileCommand recomputes book review aggregates from the review rows
// and repairs any drift.
type ReconcileCommand struct {
	DatabasePath string
	BookID       uint
	Verbose      bool
}

func NewReconcileCommand() *ReconcileCommand {
	return &ReconcileCommand{}
}

func (cmd *ReconcileCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)

	var bookID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.Uint64Var(&bookID, "book", 0, "Reconcile only this book ID (default: all books)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s reconcile [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Recompute each book's review count and rating sum from its reviews\n")
		fmt.Fprintf(os.Stderr, "and repair any stored values that have drifted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s reconcile -db ./bookreviews.db\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s reconcile -book 42 -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.BookID = uint(bookID)

	return nil
}

func (cmd *ReconcileCommand) Run() error {
	fmt.Println("Review Aggregate Reconciliation")
	fmt.Println("===============================")

	appCfg := config.NewConfig()
	dbCfg := appCfg.Database
	dbCfg.Path = cmd.DatabasePath

	open := database.NewSilentDatabase
	if cmd.Verbose {
		open = database.NewDatabase
	}
	db, err := open(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var auditService *audit.Service
	if appCfg.Audit.Enabled {
		auditService = audit.NewService(dbaudit.NewRepository(db.DB))
		defer auditService.Wait()
	}

	reconciler := tasks.NewReconciler(
		books.NewRepository(db.DB),
		ledger.NewLedger(db.DB, appCfg.Reviews),
		settings.NewRepository(db.DB),
		auditService,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.BookID > 0 {
		fmt.Printf("Book: %d\n", cmd.BookID)
	} else {
		fmt.Println("Book: all")
	}

	result, err := reconciler.Run(ctx, cmd.BookID)
	if err != nil {
		return err
	}

	fmt.Printf("\nChecked:  %d\n", result.Checked)
	fmt.Printf("Repaired: %d\n", result.Repaired)
	return nil
}
