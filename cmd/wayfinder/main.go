package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rsheldon/wayfinder/internal/ai"
	"github.com/rsheldon/wayfinder/internal/analytics"
	"github.com/rsheldon/wayfinder/internal/auth"
	"github.com/rsheldon/wayfinder/internal/config"
	"github.com/rsheldon/wayfinder/internal/content"
	"github.com/rsheldon/wayfinder/internal/database"
	"github.com/rsheldon/wayfinder/internal/server"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "wayfinder",
		Usage:   "AI-assisted 404 recovery for your site",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: runServe,
			},
			{
				Name:      "crawl",
				Usage:     "rebuild the content index from a site crawl",
				ArgsUsage: "[base-url]",
				Action:    runCrawl,
			},
			{
				Name:   "export",
				Usage:  "write the 404 analytics report as CSV to stdout",
				Action: runExport,
			},
			{
				Name:   "test-provider",
				Usage:  "send a test prompt to the configured AI provider",
				Action: runTestProvider,
			},
			{
				Name:      "create-admin",
				Usage:     "create the initial admin user",
				ArgsUsage: "<username> <password>",
				Action:    runCreateAdmin,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config, configures logging, and opens the database.
func setup(c *cli.Context) (config.Config, *database.DB, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return cfg, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db, nil
}

func runServe(c *cli.Context) error {
	cfg, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("Starting Wayfinder", "version", version)
	slog.Info("Database initialized", "path", cfg.Database.Path)

	aiClient := ai.NewClient(db, db)
	crawler := content.NewCrawler(cfg.Crawl.MaxPages)
	srv := server.New(cfg, db, aiClient, crawler, version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runCrawl(c *cli.Context) error {
	cfg, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	baseURL := c.Args().First()
	if baseURL == "" {
		baseURL = cfg.Crawl.BaseURL
	}
	if baseURL == "" {
		return errors.New("no base URL: pass one as an argument or set crawl.base_url")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := content.NewCrawler(cfg.Crawl.MaxPages).Crawl(ctx, baseURL, db)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	fmt.Printf("Indexed %d pages from %s\n", n, baseURL)
	return nil
}

func runExport(c *cli.Context) error {
	_, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListNotFound("", 10000)
	if err != nil {
		return fmt.Errorf("list 404s: %w", err)
	}

	fixer := &analytics.Fixer{Index: db}
	ctx := context.Background()
	return analytics.WriteCSV(os.Stdout, entries, func(url string) string {
		return fixer.SuggestFix(ctx, url)
	})
}

func runTestProvider(c *cli.Context) error {
	_, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	client := ai.NewClient(db, db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reply, err := client.TestProvider(ctx)
	if err != nil {
		return fmt.Errorf("provider %s: %w", client.ProviderName(), err)
	}
	fmt.Printf("%s responded: %s\n", client.ProviderName(), reply)
	return nil
}

func runCreateAdmin(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return errors.New("usage: wayfinder create-admin <username> <password>")
	}

	_, db, err := setup(c)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := auth.Bootstrap(db, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if !created {
		return errors.New("an admin user already exists")
	}
	fmt.Println("Admin user created.")
	return nil
}
