package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/app"
	coreerrors "github.com/lueurxax/aggro-radar/internal/core/errors"
	"github.com/lueurxax/aggro-radar/internal/keywords"
	"github.com/lueurxax/aggro-radar/internal/platform/config"
)

func main() {
	mode := flag.String("mode", "refresh", "Service mode (refresh, export, serve, schedule)")
	category := flag.String("category", "", "Category label, name or menu number (refresh mode)")
	once := flag.Bool("once", false, "Run once and exit (for schedule mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	if err := runMode(ctx, application, *mode, *category, *once); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		if coreerrors.Is(err, coreerrors.ErrNoRecords) {
			logger.Warn().Err(err).Msg("nothing to publish")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode, category string, once bool) error {
	switch mode {
	case "refresh":
		if category == "" {
			selected, err := promptCategory(os.Stdin, os.Stdout, application.Categories())
			if err != nil {
				return err
			}

			category = selected
		}

		_, err := application.RunRefresh(ctx, category)

		return err
	case "export":
		_, err := application.RunExport(ctx)
		return err
	case "serve":
		return application.RunServe(ctx)
	case "schedule":
		return application.RunSchedule(ctx, once)
	default:
		log.Fatalf("Usage: %s --mode=[refresh|export|serve|schedule] [--category=정치]", os.Args[0])

		return nil
	}
}

// promptCategory prints the numbered category menu and reads the choice.
func promptCategory(in io.Reader, out io.Writer, categories []keywords.Category) (string, error) {
	fmt.Fprintln(out, "\n[주제 선택]")

	for i, c := range categories {
		fmt.Fprintf(out, "%d. %s\n", i+1, c.Label)
	}

	fmt.Fprint(out, "\n번호를 입력하세요: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read category: %w", err)
	}

	choice := strings.TrimSpace(line)
	if choice == "" {
		return "", fmt.Errorf("%w: no category selected", coreerrors.ErrUnknownCategory)
	}

	return choice, nil
}
