package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"orgdir/internal/airtable"
	"orgdir/internal/config"
	"orgdir/internal/httpapi"
	"orgdir/internal/logging"
	"orgdir/internal/pipeline"
	"orgdir/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger, err := logging.New(cfg)
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output json path (stdout when empty)")
		_ = fs.Parse(os.Args[2:])
		svc := newDirectory(cfg, db, logger)
		orgs, err := svc.FetchAll(context.Background())
		must(err)
		blob, err := json.MarshalIndent(orgs, "", "  ")
		must(err)
		if strings.TrimSpace(*out) == "" {
			fmt.Println(string(blob))
			return
		}
		must(os.MkdirAll(filepath.Dir(*out), 0o755))
		must(os.WriteFile(*out, blob, 0o644))
		fmt.Printf("fetched %d organizations to %s\n", len(orgs), *out)
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		svc := newDirectory(cfg, db, logger)
		srv := httpapi.NewServer(*addr, svc, logger, cfg.HTTPAllowedOrigin, time.Duration(cfg.HTTPShutdownTimeoutS)*time.Second)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		must(srv.Run(ctx))
	case "mirror:sync":
		client, err := airtable.NewClient(cfg, logger)
		must(err)
		count, err := airtable.NewMirrorService(db, client, logger).Sync(context.Background())
		must(err)
		fmt.Printf("mirror sync complete: %d records\n", count)
	case "mirror:status":
		count, err := db.CountRecords()
		must(err)
		last, err := airtable.NewMirrorService(db, nil, logger).LastSync()
		must(err)
		if last == nil {
			fmt.Printf("mirror records=%d last_sync=never\n", count)
		} else {
			fmt.Printf("mirror records=%d last_sync=%s\n", count, last.Format(time.RFC3339))
		}
		runs, err := db.ListRuns(5)
		must(err)
		for _, run := range runs {
			fmt.Printf("  run %s source=%s organizations=%d at=%s\n", run.TraceID, run.Source, run.Counts["organizations"], run.CreatedAt)
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			*out = filepath.Join(cfg.OutputDir, "organizations.xlsx")
		}
		svc := newDirectory(cfg, db, logger)
		orgs, err := svc.FetchAll(context.Background())
		must(err)
		must(pipeline.ExportOrganizationsToXLSX(orgs, *out))
		fmt.Printf("exported %d organizations to %s\n", len(orgs), *out)
	default:
		usage()
		os.Exit(1)
	}
}

func newDirectory(cfg config.Config, db *storage.DB, logger *zap.Logger) *pipeline.DirectoryService {
	source, err := airtable.OpenSource(cfg, db, logger)
	must(err)
	return pipeline.NewDirectoryService(source, cfg.Source, db, logger)
}

func usage() {
	fmt.Println("usage: orgdir <command>")
	fmt.Println("commands:")
	fmt.Println("  fetch [--out=./out/organizations.json]")
	fmt.Println("  serve [--addr=:8080]")
	fmt.Println("  mirror:sync")
	fmt.Println("  mirror:status")
	fmt.Println("  export:xlsx [--out=./out/organizations.xlsx]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
