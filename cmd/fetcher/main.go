package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/yt-export/internal/api"
	"github.com/yt-export/internal/config"
	"github.com/yt-export/internal/export"
	"github.com/yt-export/internal/logger"
	"github.com/yt-export/internal/models"
	"github.com/yt-export/internal/pipeline"
	"go.uber.org/zap"
)

type options struct {
	Handle      string `short:"c" long:"handle" description:"YouTube channel handle, e.g. @channelhandle"`
	DownloadDir string `short:"o" long:"download-dir" description:"Directory for the exported workbook (default $DOWNLOAD_DIR or ~/Downloads)"`
	EnvFile     string `long:"env-file" default:".env" description:"Path of the .env file to load"`
	LogLevel    string `long:"log-level" description:"Log level: debug, info, warn, error"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}

	if err := godotenv.Load(opts.EnvFile); err != nil {
		log.Printf("Warning: %s file not found", opts.EnvFile)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if opts.DownloadDir != "" {
		cfg.DownloadDir = opts.DownloadDir
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := zap.S()
	defer logger.Sync()

	handle := opts.Handle
	if handle == "" {
		handle, err = promptHandle(os.Stdin, os.Stdout)
		if err != nil {
			logger.Fatalf("Failed to read channel handle: %v", err)
		}
	}

	ctx := context.Background()
	youtubeClient, err := api.NewYouTubeClient(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize YouTube client: %v", err)
	}

	var recorder pipeline.Recorder
	if cfg.HistoryEnabled() {
		db, err := models.NewDatabase(cfg.DBPath, logger)
		if err != nil {
			logger.Warnf("Export history disabled: %v", err)
		} else {
			defer db.Close()
			recorder = db
		}
	}

	p := pipeline.New(youtubeClient, export.NewExporter(cfg.DownloadDir), recorder, logger)
	p.Progress = os.Stdout

	result, err := p.Run(ctx, handle)
	if err != nil {
		fmt.Printf("Channel with handle %s not found.\n", handle)
		return
	}

	printSummary(os.Stdout, result)
}

func promptHandle(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the YouTube channel handle (e.g., @channelhandle): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	handle := strings.TrimSpace(line)
	if api.NormalizeHandle(handle) == "" {
		return "", errors.New("empty channel handle")
	}
	return handle, nil
}

func printSummary(out io.Writer, result *pipeline.Result) {
	fmt.Fprintf(out, "Videos: %d, comments: %d\n", len(result.Videos), len(result.Comments))
	for _, f := range result.Failures {
		fmt.Fprintf(out, "  warning: %v\n", f)
	}
	if result.Exported() {
		fmt.Fprintf(out, "File has been saved to: %s\n", result.FilePath)
	}
}
