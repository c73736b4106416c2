// Package main provides dropdownctl, a command line tool that renders
// dropdown templates offline and seeds dictionary stores.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/locvowork/dropdown_export/internal/bootstrap"
	"github.com/locvowork/dropdown_export/internal/config"
	"github.com/locvowork/dropdown_export/internal/domain"
	"github.com/locvowork/dropdown_export/internal/logger"
	"github.com/locvowork/dropdown_export/internal/repository"
	"github.com/locvowork/dropdown_export/internal/service"
	"github.com/locvowork/dropdown_export/pkg/dataflow"
	"github.com/locvowork/dropdown_export/pkg/dropdown"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "dropdownctl",
		Short:        "Generate Excel templates with dropdown lists",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newGenerateCmd(), newSeedCmd())
	return rootCmd
}

type generateOptions struct {
	output       string
	dictFile     string
	workers      int
	inlineLimit  int
	maxRows      int
	cascadeRows  int
	debugLogging bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate [template.yaml]",
		Short: "Render a YAML template into an .xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (default: <template>.xlsx)")
	cmd.Flags().StringVar(&opts.dictFile, "dict", "", "YAML dictionary file for dictionary-backed columns")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "Concurrent dictionary lookups")
	cmd.Flags().IntVar(&opts.inlineLimit, "inline-limit", dropdown.DefaultInlineLimit, "Largest list written inline")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", dropdown.DefaultMaxRows, "Data rows covered by list dropdowns")
	cmd.Flags().IntVar(&opts.cascadeRows, "cascade-rows", dropdown.DefaultMaxCascadeRows, "Data rows covered by second-level dropdowns")
	cmd.Flags().BoolVar(&opts.debugLogging, "debug", false, "Enable debug logging")
	return cmd
}

func runGenerate(ctx context.Context, templatePath string, opts *generateOptions) error {
	logger.InitLogging("", opts.debugLogging)

	data, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	dict := repository.NewStaticDictionary()
	if opts.dictFile != "" {
		if dict, err = repository.LoadStaticDictionary(opts.dictFile); err != nil {
			return err
		}
	}

	svc := service.NewTemplateService(dict, filepath.Dir(templatePath), opts.workers,
		dropdown.WithInlineLimit(opts.inlineLimit),
		dropdown.WithMaxRows(opts.maxRows),
		dropdown.WithMaxCascadeRows(opts.cascadeRows),
	)
	workbook, err := svc.RenderYAML(ctx, data)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = templatePath[:len(templatePath)-len(filepath.Ext(templatePath))] + ".xlsx"
	}
	if err := os.WriteFile(output, workbook, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.InfoLog(ctx, "wrote %s", output)
	return nil
}

type seedOptions struct {
	dictFile string
	target   string
	workers  int
}

func newSeedCmd() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy a YAML dictionary file into a dictionary store",
		Long: `seed reads a YAML dictionary file and upserts its items into the store
named by --target. Connection settings come from the environment (.env).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.dictFile, "dict", "dictionaries.yaml", "YAML dictionary file to load")
	cmd.Flags().StringVar(&opts.target, "target", config.DictionarySourcePostgres, "Store to seed: postgres, datastore, elastic")
	cmd.Flags().IntVar(&opts.workers, "workers", 2, "Dictionaries written concurrently")
	return cmd
}

func runSeed(ctx context.Context, opts *seedOptions) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_DEBUG)

	source, err := repository.LoadStaticDictionary(opts.dictFile)
	if err != nil {
		return err
	}

	store, closeStore, err := bootstrap.OpenDictionaryStore(ctx, opts.target)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := seedStore(ctx, store, source.Items(), opts.workers)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	logger.InfoLog(ctx, "seeded %d dictionaries into %s", n, opts.target)
	return nil
}

// seedStore writes items to store, one dictionary per SaveItems call.
// It returns the number of dictionaries written.
func seedStore(ctx context.Context, store domain.DictionaryWriter, items []domain.DictionaryItem, workers int) (int, error) {
	byDict := make(map[string][]domain.DictionaryItem)
	for _, it := range items {
		byDict[it.DictType] = append(byDict[it.DictType], it)
	}
	dicts := make([]string, 0, len(byDict))
	for dict := range byDict {
		dicts = append(dicts, dict)
	}
	sort.Strings(dicts)

	p := dataflow.New(ctx)
	defer p.Stop()

	err := dataflow.ForEach(p, dataflow.From(p, dicts...), func(ctx context.Context, dict string) error {
		logger.DebugLog(ctx, "seeding dictionary %s (%d items)", dict, len(byDict[dict]))
		return store.SaveItems(ctx, byDict[dict])
	}, dataflow.WithWorkers(workers))
	if err != nil {
		return 0, err
	}
	return len(dicts), nil
}
