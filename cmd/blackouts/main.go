// Command blackouts manages the dates the booking picker refuses.
//
// Usage:
//
//	blackouts list
//	blackouts add [-label text] YYYY-MM-DD[..YYYY-MM-DD]
//	blackouts remove ID
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	_ "modernc.org/sqlite"

	"bookingrelay/internal/adapters/storage"
	blackoutStore "bookingrelay/internal/adapters/storage/blackout"
	"bookingrelay/internal/application/orchestrators"
	"bookingrelay/internal/config"
	domain "bookingrelay/internal/domain/blackout"
)

var errUsage = errors.New("usage: blackouts list | add [-label text] RANGE | remove ID")

// store is what the subcommands need from the blackout table.
type store interface {
	orchestrators.BlackoutStoreForOrchestrator
	List(ctx context.Context) ([]domain.Blackout, error)
}

func main() {
	_ = godotenv.Load()
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute opens the configured database, runs one subcommand and returns the
// process exit code: 0 on success, 2 on a usage error, 1 otherwise.
func execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, "blackouts:", err)
		return 1
	}

	db, err := sql.Open("sqlite", storage.DSN(cfg.DBPath))
	if err != nil {
		fmt.Fprintln(errOut, "blackouts:", err)
		return 1
	}
	defer db.Close()
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		fmt.Fprintln(errOut, "blackouts:", err)
		return 1
	}

	if err := run(ctx, args, out, blackoutStore.NewSQLiteStore(db)); err != nil {
		fmt.Fprintln(errOut, "blackouts:", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func run(ctx context.Context, args []string, out io.Writer, s store) error {
	if len(args) == 0 {
		return errUsage
	}
	deps := orchestrators.BlackoutDeps{
		Store:      s,
		GenerateID: func() string { return uuid.New().String() },
	}

	switch args[0] {
	case "list":
		list, err := s.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATES\tLABEL")
		for _, b := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.String(), b.Label)
		}
		return tw.Flush()

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		label := fs.String("label", "", "shown in the list output")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %w", errUsage, err)
		}
		if fs.NArg() != 1 {
			return errUsage
		}
		b, err := orchestrators.ExecuteAddBlackout(ctx, orchestrators.AddBlackoutInput{
			Range: fs.Arg(0),
			Label: *label,
		}, deps)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added %s (%s)\n", b.String(), b.ID)
		return nil

	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		if err := orchestrators.ExecuteRemoveBlackout(ctx, args[1], deps); err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %s\n", args[1])
		return nil
	}
	return errUsage
}
