package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	sitter "github.com/tree-sitter/go-tree-sitter"
	"gopkg.in/yaml.v3"

	ts "github.com/itsaky/go-tree-sitter-android"
	"github.com/itsaky/go-tree-sitter-android/internal/config"
	"github.com/itsaky/go-tree-sitter-android/internal/languages"
)

var (
	ErrNoLanguage     = errors.New("cannot detect language, pass --language")
	ErrRangesRejected = errors.New("included ranges must be ordered and must not overlap")
	ErrSourceTooLarge = errors.New("source exceeds the size limit")
)

const (
	stdinName = "-"

	resultCancelled = "cancelled"
	resultTimedOut  = "timed out"
)

type parseOptions struct {
	language    string
	rangesFile  string
	timeout     time.Duration
	cancelAfter time.Duration
	maxSize     string
}

func parseCmd(cfgFile *string) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a file and print its syntax tree",
		Long: `Parse a file as UTF-16 through a parse session and print the S-expression
of the resulting tree. When the parse is cancelled or times out, the outcome is
printed instead. Byte offsets in a ranges file count UTF-16 bytes, two per
code unit.

Examples:
  tsparse parse Main.java                       # Detect the language from the extension
  cat Main.java | tsparse parse -l java         # Parse stdin
  tsparse parse --timeout 5ms big.json          # Give up after 5ms of engine time
  tsparse parse --cancel-after 20ms big.json    # Cancel from another goroutine
  tsparse parse --ranges ranges.yaml page.html  # Parse only the listed ranges`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*cfgFile)
			if err != nil {
				return err
			}

			mergeConfig(cmd, &opts, cfg)

			logger, err := buildLogger(cfg.Logging, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			path := stdinName
			if len(args) == 1 {
				path = args[0]
			}

			return runParse(cmd.Context(), path, opts, logger, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "language name (default: detect from the file extension)")
	cmd.Flags().StringVar(&opts.rangesFile, "ranges", "", "YAML file listing the byte ranges to parse")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "engine timeout, 0 for none")
	cmd.Flags().DurationVar(&opts.cancelAfter, "cancel-after", 0, "cancel the parse after this long, 0 for never")
	cmd.Flags().StringVar(&opts.maxSize, "max-size", "", "reject sources larger than this, e.g. 16MiB")

	return cmd
}

// mergeConfig fills every flag the user did not set from the config file.
func mergeConfig(cmd *cobra.Command, opts *parseOptions, cfg *config.Config) {
	flags := cmd.Flags()

	if !flags.Changed("language") {
		opts.language = cfg.Parser.Language
	}

	if !flags.Changed("ranges") {
		opts.rangesFile = cfg.Parser.RangesFile
	}

	if !flags.Changed("timeout") {
		opts.timeout = cfg.Parser.Timeout
	}

	if !flags.Changed("cancel-after") {
		opts.cancelAfter = cfg.Parser.CancelAfter
	}

	if !flags.Changed("max-size") {
		opts.maxSize = cfg.Parser.MaxSourceSize
	}
}

func buildLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	if cfg.Format == config.FormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
}

func runParse(ctx context.Context, path string, opts parseOptions, logger *slog.Logger, stdin io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	limit, err := config.ParseSize(opts.maxSize)
	if err != nil {
		return err
	}

	source, err := readSource(path, stdin)
	if err != nil {
		return err
	}

	if limit > 0 && uint64(len(source)) > limit {
		return fmt.Errorf("%w: %s is %s, limit %s", ErrSourceTooLarge, path,
			humanize.IBytes(uint64(len(source))), humanize.IBytes(limit))
	}

	language, err := resolveLanguage(path, opts.language)
	if err != nil {
		return err
	}

	buffer, err := ts.NewTextBufferString(string(source))
	if err != nil {
		return err
	}
	defer buffer.Close()

	parser, err := ts.NewParser(ts.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	defer parser.Close()

	if err := configureParser(parser, language, opts); err != nil {
		return err
	}

	if opts.cancelAfter > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, opts.cancelAfter)
		defer cancel()
	}

	start := time.Now()

	tree, err := parser.ParseCtx(ctx, nil, buffer)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	logger.Info("parsed",
		slog.String("path", path),
		slog.String("size", humanize.IBytes(uint64(buffer.ByteLen()))),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("tree", tree != nil))

	if tree == nil {
		result := resultTimedOut
		if ctx.Err() != nil {
			result = resultCancelled
		}

		_, err = fmt.Fprintln(out, result)

		return err
	}
	defer tree.Close()

	_, err = fmt.Fprintln(out, tree.RootNode().ToSexp())

	return err
}

func configureParser(parser *ts.Parser, language *sitter.Language, opts parseOptions) error {
	if err := parser.SetLanguage(language); err != nil {
		return err
	}

	if err := parser.SetTimeoutMicros(uint64(opts.timeout.Microseconds())); err != nil {
		return err
	}

	if opts.rangesFile == "" {
		return nil
	}

	ranges, err := loadRanges(opts.rangesFile)
	if err != nil {
		return err
	}

	accepted, err := parser.SetIncludedRanges(ranges)
	if err != nil {
		return err
	}

	if !accepted {
		return fmt.Errorf("%w: %s", ErrRangesRejected, opts.rangesFile)
	}

	return nil
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func resolveLanguage(path, name string) (*sitter.Language, error) {
	if name != "" {
		return languages.Lookup(name)
	}

	if path == stdinName {
		return nil, ErrNoLanguage
	}

	_, language, err := languages.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoLanguage, err)
	}

	return language, nil
}

// loadRanges reads a YAML list of ranges. Offsets and columns are UTF-16
// byte counts:
//
//   - start_byte: 0
//     end_byte: 10
//     start_point: {row: 0, column: 0}
//     end_point: {row: 0, column: 10}
func loadRanges(path string) ([]ts.Range, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranges: %w", err)
	}

	var ranges []ts.Range

	if err := yaml.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("failed to decode ranges %s: %w", path, err)
	}

	return ranges, nil
}
