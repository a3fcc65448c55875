package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/app"
	"github.com/ternarybob/colligo/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

const usageText = `Usage: colligo [flags] <command> [args]

Commands:
  ingest <path>            Load delimited document files into the excerpt store
  split <group>            Rewrite oversized excerpts within the word budget
  questions <file>         Load a YAML question set
  embed                    Backfill embeddings for excerpts and questions
  extract <group>          Enqueue extraction jobs for a document group
  ask <group>              Enqueue retrieval-grounded QA jobs for a group
  work [limit]             Drain pending generation jobs
  collect <group>          Copy answered QA jobs back onto questions
  report <group>           Merge answered extraction jobs into one report
  route <group> <query>    Answer one query through the two-stage router
  serve                    Run the embedding backfill scheduler until interrupted
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Colligo version %s\n", common.GetVersion())
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	if len(configFiles) == 0 {
		if _, err := os.Stat("colligo.toml"); err == nil {
			configFiles = append(configFiles, "colligo.toml")
		} else if _, err := os.Stat("deployments/local/colligo.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/colligo.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("badger_path", config.Storage.Badger.Path).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	if err := run(application, args); err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("Command failed")
		application.Close()
		os.Exit(1)
	}
}

func run(application *app.App, args []string) error {
	ctx := application.Context()
	command := args[0]
	rest := args[1:]

	switch command {
	case "ingest":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo ingest <path>")
		}
		info, err := os.Stat(rest[0])
		if err != nil {
			return err
		}
		var count int
		if info.IsDir() {
			count, err = application.IngestService.IngestDir(ctx, rest[0])
		} else {
			count, err = application.IngestService.IngestFile(ctx, rest[0])
		}
		if err != nil {
			return err
		}
		logger.Info().Int("excerpts", count).Msg("Ingest complete")
		return nil

	case "split":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo split <group>")
		}
		split, err := application.IngestService.SplitOversized(ctx, rest[0])
		if err != nil {
			return err
		}
		logger.Info().Int("split", split).Msg("Oversized excerpt split complete")
		return nil

	case "questions":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo questions <file>")
		}
		inserted, err := application.QuestionLoader.LoadFile(ctx, rest[0])
		if err != nil {
			return err
		}
		logger.Info().Int("inserted", inserted).Msg("Question set loaded")
		return nil

	case "embed":
		// Partial counts are still reported when the pass ends with errors
		stats, err := application.ProcessingService.ProcessAll(ctx)
		logger.Info().
			Int("excerpts", stats.ExcerptsEmbedded).
			Int("questions", stats.QuestionsEmbedded).
			Dur("duration", stats.Duration).
			Msg("Embedding backfill complete")
		return err

	case "extract":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo extract <group>")
		}
		enqueued, err := application.ReportService.ProduceExtractionJobs(ctx, rest[0])
		if err != nil {
			return err
		}
		logger.Info().Int("jobs", enqueued).Msg("Extraction jobs enqueued")
		return nil

	case "ask":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo ask <group>")
		}
		enqueued, err := application.QAService.ProduceJobs(ctx, rest[0])
		if err != nil {
			return err
		}
		logger.Info().Int("jobs", enqueued).Msg("QA jobs enqueued")
		return nil

	case "work":
		limit := 0
		if len(rest) > 0 {
			parsed, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("invalid limit %q: %w", rest[0], err)
			}
			limit = parsed
		}
		stats, err := application.Worker.ProcessBatch(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Printf("Batch complete: %d answered, %d failed in %s\n",
			stats.Answered, stats.Failed, stats.Duration.Round(time.Millisecond))
		return nil

	case "collect":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo collect <group>")
		}
		updated, err := application.QAService.CollectAnswers(ctx, rest[0])
		if err != nil {
			return err
		}
		logger.Info().Int("updated", updated).Msg("Answers collected")
		return nil

	case "report":
		if len(rest) != 1 {
			return fmt.Errorf("usage: colligo report <group>")
		}
		report, err := application.ReportService.BuildReport(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Println(string(report.Report))
		return nil

	case "route":
		if len(rest) != 2 {
			return fmt.Errorf("usage: colligo route <group> <query>")
		}
		matches, err := application.Index.Search(ctx, rest[0], rest[1], config.Pipeline.TopK)
		if err != nil {
			return err
		}
		var contextText string
		for _, match := range matches {
			contextText += match.Excerpt.Text + "\n\n"
		}
		result, err := application.Router.Route(ctx, rest[1], contextText)
		if err != nil {
			return err
		}
		logger.Info().Str("decision", string(result.Decision)).Msg("Query routed")
		fmt.Println(result.Answer)
		return nil

	case "serve":
		if err := application.Scheduler.Start(config.Processing.Schedule); err != nil {
			return err
		}
		defer application.Scheduler.Stop()

		logger.Info().Msg("Scheduler running - Press Ctrl+C to stop")
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info().Msg("Interrupt signal received")
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
