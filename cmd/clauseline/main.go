// Command clauseline analyzes contract clauses for regulatory compliance
// risk and generates remediation suggestions, using batched LLM calls with
// provider fallback.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/clauseline/clauseline/internal/analysis"
	"github.com/clauseline/clauseline/internal/domain"
	"github.com/clauseline/clauseline/internal/llm"
	"github.com/clauseline/clauseline/internal/llm/configuration"
	"github.com/clauseline/clauseline/internal/llm/fallback"
	"github.com/clauseline/clauseline/internal/llm/registry"
	"github.com/clauseline/clauseline/internal/pipeline"
	"github.com/clauseline/clauseline/internal/remediation"
)

var (
	flagConfig   string
	flagInput    string
	flagOutput   string
	flagChain    string
	flagParallel bool
	flagWorkers  int
	flagVerbose  bool
)

func main() {
	root := &cobra.Command{
		Use:   "clauseline",
		Short: "Contract clause compliance analysis with resilient LLM fallback",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVarP(&flagInput, "input", "i", "-", "clause JSON file, or - for stdin")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "-", "result JSON file, or - for stdout")
	root.PersistentFlags().StringVar(&flagChain, "chain", "", "fallback chain preset (standard, quality, speed, gemini-only)")
	root.PersistentFlags().BoolVar(&flagParallel, "parallel", false, "process batches concurrently")
	root.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker count for parallel mode")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newAnalyzeCmd(), newSuggestCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Classify clauses by regulation, risk, and severity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup()
			if err != nil {
				return err
			}

			clauses, err := readClauses(flagInput)
			if err != nil {
				return err
			}

			task := analysis.NewTask(env.cfg.Batch.PreviewLen)
			findings, err := pipeline.Run[domain.Finding](cmd.Context(), env.orchestrator, task, clauses, env.chain, env.opts)
			if err != nil {
				return err
			}
			return writeJSON(flagOutput, findings)
		},
	}
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Analyze clauses, then generate remediation suggestions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup()
			if err != nil {
				return err
			}

			clauses, err := readClauses(flagInput)
			if err != nil {
				return err
			}

			findings, err := pipeline.Run[domain.Finding](cmd.Context(),
				env.orchestrator, analysis.NewTask(env.cfg.Batch.PreviewLen), clauses, env.chain, env.opts)
			if err != nil {
				return err
			}

			suggestions, err := pipeline.Run[domain.Suggestion](cmd.Context(),
				env.orchestrator, remediation.NewTask(env.cfg.Batch.PreviewLen),
				remediation.UnitsFromFindings(findings), env.chain, env.opts)
			if err != nil {
				return err
			}

			return writeJSON(flagOutput, struct {
				Findings    []domain.Finding    `json:"findings"`
				Suggestions []domain.Suggestion `json:"suggestions"`
			}{findings, suggestions})
		},
	}
}

// runEnv bundles everything a command needs after configuration loading.
type runEnv struct {
	cfg          *configuration.Config
	orchestrator *fallback.Orchestrator
	chain        []registry.Candidate
	opts         pipeline.Options
}

func setup() (*runEnv, error) {
	cfg, err := configuration.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagParallel {
		cfg.Pipeline.Parallel = true
	}
	if flagWorkers > 0 {
		cfg.Pipeline.Workers = flagWorkers
	}

	chainName := cfg.Chain
	if flagChain != "" {
		chainName = flagChain
	}
	chain, err := registry.ChainByName(chainName)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry(cfg.Cooldown)
	return &runEnv{
		cfg:          cfg,
		orchestrator: fallback.NewOrchestrator(client, reg),
		chain:        chain,
		opts:         pipeline.Options{Batch: cfg.Batch, Pipeline: cfg.Pipeline},
	}, nil
}

// readClauses loads a JSON array of clauses, accepting objects with the
// usual id/text aliases or bare strings.
func readClauses(path string) ([]domain.Clause, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading clauses: %w", err)
	}

	var clauses []domain.Clause
	if err := json.Unmarshal(data, &clauses); err != nil {
		var texts []string
		if serr := json.Unmarshal(data, &texts); serr != nil {
			return nil, fmt.Errorf("parsing clauses: %w", err)
		}
		return domain.FromStrings(texts), nil
	}
	return domain.Normalize(clauses), nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
