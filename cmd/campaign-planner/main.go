package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/campaign-planner/internal/adsource"
	"github.com/iwvelando/campaign-planner/internal/config"
	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/internal/server"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/iwvelando/campaign-planner/pkg/output"
	"github.com/iwvelando/campaign-planner/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	// Logs go to stderr so results on stdout stay machine-readable.
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	mode := flag.String("mode", constants.ModePlan, "what to run: plan, diagnose, serve")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file (serve mode)")
	flag.Parse()

	if err := validation.ValidateMode(*mode); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid mode\", \"error\": \"%v\"}\n", err)
		os.Exit(2)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	var serverConf *server.Config
	loggingConf := conf.Logging
	if *mode == constants.ModeServe {
		serverConf, err = server.LoadConfig(*serverConfigLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
			os.Exit(1)
		}
		if serverConf.Logging != (config.LoggingConfig{}) {
			loggingConf = serverConf.Logging
		}
	}

	logger, err := initializeLogger(loggingConf, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	p, err := conf.NewPlanner(logger)
	if err != nil {
		logger.Fatal("invalid funnel configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	engine, err := conf.NewEngine(logger)
	if err != nil {
		logger.Fatal("invalid diagnosis configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	source := adsource.NewMemorySource()
	if err := conf.SeedSource(source); err != nil {
		logger.Fatal("failed to load ad accounts",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	diagnoser := diagnosis.NewService(logger, engine, source)

	switch *mode {
	case constants.ModePlan:
		input, err := conf.PlanInput()
		if err != nil {
			logger.Fatal("nothing to plan", zap.String("op", "main"), zap.Error(err))
		}
		result, err := p.Plan(input)
		if err != nil {
			logger.Fatal("failed to compute plan", zap.String("op", "main"), zap.Error(err))
		}
		if err := output.Plan(os.Stdout, outputFormat, result); err != nil {
			logger.Fatal("failed to write plan", zap.String("op", "main"), zap.Error(err))
		}

	case constants.ModeDiagnose:
		req, err := conf.DiagnosisRequest()
		if err != nil {
			logger.Fatal("nothing to diagnose", zap.String("op", "main"), zap.Error(err))
		}
		result, err := diagnoser.Diagnose(context.Background(), req)
		if err != nil {
			logger.Fatal("failed to diagnose", zap.String("op", "main"), zap.Error(err))
		}
		if err := output.Diagnosis(os.Stdout, outputFormat, result); err != nil {
			logger.Fatal("failed to write diagnosis", zap.String("op", "main"), zap.Error(err))
		}

	case constants.ModeServe:
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		serverVersion := version
		if serverConf.Version != "" {
			serverVersion = serverConf.Version
		}
		handler, err := server.NewHandler(logger, serverConf.BodySizeBytes(), serverVersion, server.Services{
			Planner:   p,
			Diagnoser: diagnoser,
		}, registry)
		if err != nil {
			logger.Fatal("failed to build HTTP handler", zap.String("op", "main"), zap.Error(err))
		}
		if err := server.ListenAndServe(logger, serverConf, handler); err != nil {
			logger.Fatal("HTTP server stopped", zap.String("op", "main"), zap.Error(err))
		}
	}
}
