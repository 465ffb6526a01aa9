// Command admin is the operator CLI. Its only subcommand, createsuperuser,
// provisions an administrative account directly against the database; the
// password is prompted for and never echoed.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/server/config"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipevault/internal/server/services"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "createsuperuser" {
		fmt.Fprintln(os.Stderr, "usage: admin createsuperuser [-d dsn] [-e email] [-n name]")
		os.Exit(2)
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()

	fs := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	email := fs.String("e", "", "email address")
	name := fs.String("n", "", "display name")
	_ = fs.Parse(os.Args[2:])

	if err := run(context.Background(), cfg, *email, *name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, email, name string) error {
	reader := bufio.NewReader(os.Stdin)

	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	user, err := us.CreateSuperuser(ctx, email, password, name)
	if err != nil {
		if ve, ok := common.AsValidationError(err); ok {
			return fmt.Errorf("invalid input: %s", ve.Error())
		}
		return err
	}

	fmt.Printf("Superuser %s created.\n", user.Email)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Password (again): ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
