package main

import (
	"fmt"
	"path/filepath"

	"github.com/bastiangx/nextword/internal/utils"
	"github.com/bastiangx/nextword/pkg/config"
	"github.com/bastiangx/nextword/pkg/ngram"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newBuildCmd(root *rootOptions) *cobra.Command {
	var (
		out         string
		maxBigrams  int
		maxTrigrams int
	)

	cmd := &cobra.Command{
		Use:   "build [flags] corpus...",
		Short: "Count corpus files into an n-gram dataset",
		Long: `Count bigrams and trigrams in one or more corpus files and write the most
frequent ones as a dataset. Every line is one sentence; n-grams never span
lines. The output format follows the --out extension.`,
		Example: `
  # Build the default JSON dataset
  nextword build --out data/ngrams.json corpus/*.txt

  # Keep every n-gram and write msgpack
  nextword build --out data/ngrams.msgpack --max-bigrams 0 --max-trigrams 0 corpus.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := config.LoadConfigWithPriority(root.configPath)
			if !cmd.Flags().Changed("max-bigrams") {
				maxBigrams = cfg.Build.MaxBigrams
			}
			if !cmd.Flags().Changed("max-trigrams") {
				maxTrigrams = cfg.Build.MaxTrigrams
			}
			format, err := ngram.DetectFormat(out)
			if err != nil {
				return fmt.Errorf("output %s: %w", out, err)
			}

			if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			counter, err := ngram.CountFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			ds := counter.Dataset(maxBigrams, maxTrigrams)
			if err := ngram.WriteFile(out, ds); err != nil {
				return err
			}

			log.Debugf("Counted %d files, wrote %s", len(args), format)
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s: %s sentences, %s bigrams, %s trigrams\n",
				out,
				utils.FormatWithCommas(int64(counter.Sentences())),
				utils.FormatWithCommas(int64(len(ds.Bigrams))),
				utils.FormatWithCommas(int64(len(ds.Trigrams))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data/ngrams.json", "Output dataset file")
	cmd.Flags().IntVar(&maxBigrams, "max-bigrams", 3000, "Most frequent bigrams to keep, 0 keeps all (default from config)")
	cmd.Flags().IntVar(&maxTrigrams, "max-trigrams", 2000, "Most frequent trigrams to keep, 0 keeps all (default from config)")
	return cmd
}
