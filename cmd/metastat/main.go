package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"mstat/metastat"
	"mstat/metastat/defs"
	"mstat/metastat/dexcom"
	"mstat/metastat/pkg/extract"
	mhttp "mstat/metastat/pkg/http"
	"mstat/metastat/pkg/mg"
	"mstat/metastat/pkg/report"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	configFile string
	envFile    string
	inputFile  string
	serve      bool
	fetch      bool
	debug      bool
)

func init() {
	flag.StringVar(&configFile, "f", "config.yaml", "config file")
	flag.StringVar(&envFile, "env", ".env", "credentials env file")
	flag.StringVar(&inputFile, "file", "", "exported health log, overrides the config input")
	flag.BoolVar(&serve, "serve", false, "serve the http api and import dexcom readings")
	flag.BoolVar(&fetch, "fetch", false, "import the latest dexcom readings once")
	flag.BoolVar(&debug, "debug", true, "development logging")
	flag.Parse()
}

func main() {
	logger, _ := zap.NewDevelopment()
	if !debug {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	config := defs.DefaultConfig()
	config.Logger = logger

	file, err := os.ReadFile(configFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("no config file, using defaults", zap.String("file", configFile))
	case err != nil:
		logger.Fatal("unable to read config file", zap.Error(err))
	default:
		if err = yaml.Unmarshal(file, &config); err != nil {
			logger.Fatal("unable to parse config file", zap.Error(err))
		}
		logger.Debug("loaded config file", zap.String("file", configFile))
	}

	env, err := defs.LoadEnv(envFile)
	if err != nil {
		logger.Fatal("unable to load env", zap.Error(err))
	}
	config.ApplyEnv(env)

	if inputFile != "" {
		config.Input = inputFile
	}

	loc, err := config.Location()
	if err != nil {
		logger.Fatal("unable to load timezone", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := &metastat.Pipeline{Config: config, Logger: logger}
	for _, format := range config.Formats {
		switch format {
		case defs.FormatCSV:
			pipeline.Reporters = append(pipeline.Reporters, &report.CSVWriter{Dir: config.Output, Location: loc, Logger: logger})
		case defs.FormatXLSX:
			pipeline.Reporters = append(pipeline.Reporters, &report.XLSXWriter{Dir: config.Output, Location: loc, Logger: logger})
		default:
			logger.Fatal("unknown report format", zap.String("format", format))
		}
	}

	var store *mg.MongoStore
	if config.Mongo.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, defs.TimeoutInterval)
		store, err = mg.New(connectCtx, config.Mongo, defs.DefaultDB, logger)
		cancel()
		if err != nil {
			logger.Fatal("unable to create store", zap.Error(err))
		}
		defer store.Disconnect(context.Background())
		pipeline.Reporters = append(pipeline.Reporters, metastat.ReporterFunc(store.WriteReport))
	}

	if fetch || serve {
		if store == nil {
			logger.Fatal("a mongo uri is required to fetch or serve")
		}
		runServer(ctx, config, pipeline, store, logger)
		return
	}

	ex := &extract.Extractor{Logger: logger}
	samples, err := ex.ReadFile(config.Input)
	if err != nil {
		logger.Fatal("unable to read input", zap.String("input", config.Input), zap.Error(err))
	}

	reports, err := pipeline.RunAll(ctx, samples, config.Widths)
	for _, r := range reports {
		logger.Info("finished report",
			zap.String("id", r.ID),
			zap.Float64("width", r.Width),
			zap.Int("count", r.Count),
			zap.Duration("span", r.Span),
		)
	}
	if err != nil {
		logger.Error("some reports failed", zap.Error(err))
		os.Exit(1)
	}
}

func runServer(ctx context.Context, config defs.Config, pipeline *metastat.Pipeline, store *mg.MongoStore, logger *zap.Logger) {
	var fetcher *metastat.Fetcher
	if config.Dexcom.Account != "" {
		fetcher = &metastat.Fetcher{
			Source: dexcom.New(config.Dexcom, logger),
			Store:  store,
			Logger: logger,
		}
	}

	if !serve {
		if fetcher == nil {
			logger.Fatal("a dexcom account is required to fetch")
		}
		n, err := fetcher.FetchAndLoad(ctx)
		if err != nil {
			logger.Fatal("unable to fetch readings", zap.Error(err))
		}
		logger.Info("fetched readings", zap.Int("new", n))
		return
	}

	if fetcher != nil {
		go metastat.ExecuteTask(ctx, defs.DownloaderInterval, func() {
			if _, err := fetcher.FetchAndLoad(ctx); err != nil {
				logger.Warn("unable to fetch readings", zap.Error(err))
			}
		})
	}

	if err := mhttp.New(store, pipeline, logger).Serve(config.HTTP.Addr); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
