package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/codemod-go/codemod/pkg/bookmark"
	"github.com/codemod-go/codemod/pkg/config"
	"github.com/codemod-go/codemod/pkg/pathfilter"
	"github.com/codemod-go/codemod/pkg/query"
	"github.com/codemod-go/codemod/pkg/review"
	"github.com/codemod-go/codemod/pkg/suggest"
)

type rootFlags struct {
	multiline            bool
	rootDirectory        string
	ignoreCase           bool
	start                string
	end                  string
	extensions           string
	includeExtensionless bool
	excludePaths         string
	acceptAll            bool
	defaultNo            bool
	editor               string
	count                bool
	configFile           string
	debug                bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "codemod [flags] MATCH [SUBST]",
		Short: "Assists with large-scale codebase refactors that require human oversight",
		Long: `codemod assists with large-scale codebase refactors that can be partially
automated but still require human oversight and occasional intervention.

Example: to deprecate your use of the <font> tag, you might run:

  codemod -m -d /home/jrosenstein/www --extensions php,html \
      '<font *color="?(.*?)"?>(.*?)</font>' \
      '<span style="color: $1;">$2</span>'

For each match of the regex you'll be shown a colored diff and asked if you
want to accept the change, reject it, or edit the line in question in your
$EDITOR of choice.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.multiline, "multiline", "m", false,
		"have regex work over multiple lines (e.g. have dot match newlines)")
	cmd.Flags().StringVarP(&flags.rootDirectory, "directory", "d", "",
		"the path whose descendent files are to be explored (default current dir)")
	cmd.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "i", false,
		"perform case-insensitive search")
	cmd.Flags().StringVar(&flags.start, "start", "",
		`a path:line_number position from which to begin exploring, or a percentage (e.g. "25%") of the way through; useful when divvying up the task across people`)
	cmd.Flags().StringVar(&flags.end, "end", "",
		`a path:line_number position just *before* which to stop exploring, or a percentage of the way through`)
	cmd.Flags().StringVar(&flags.extensions, "extensions", "",
		`a comma-delimited list of file extensions to process; supports shell glob patterns (default "*")`)
	cmd.Flags().BoolVar(&flags.includeExtensionless, "include-extensionless", false,
		"also check files without an extension")
	cmd.Flags().StringVar(&flags.excludePaths, "exclude-paths", "",
		"a comma-delimited list of paths to exclude")
	cmd.Flags().BoolVar(&flags.acceptAll, "accept-all", false,
		"automatically accept all changes (use with caution)")
	cmd.Flags().BoolVar(&flags.defaultNo, "default-no", false,
		"make not accepting the change the default prompt answer")
	cmd.Flags().StringVar(&flags.editor, "editor", "",
		`editor for manual intervention, e.g. "vim" or "emacs" (default $EDITOR)`)
	cmd.Flags().BoolVar(&flags.count, "count", false,
		"just print the number of places in the codebase the query matches")
	cmd.Flags().StringVarP(&flags.configFile, "config", "c", ".codemod.yaml",
		"config file path (.yaml or .hcl)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false,
		"enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, flags *rootFlags, args []string) error {
	setupLogging(flags.debug)
	ctx := zerolog.DefaultContextLogger.WithContext(cmd.Context())

	cfg, err := config.Load(ctx, flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cfg, flags)

	match := args[0]
	var substitution *string
	if len(args) == 2 {
		substitution = &args[1]
	}

	var suggestor suggest.Suggestor
	if flags.multiline {
		suggestor, err = suggest.MultilineRegex(match, substitution, flags.ignoreCase)
	} else {
		suggestor, err = suggest.Regex(match, substitution, flags.ignoreCase)
	}
	if err != nil {
		return err
	}

	q := query.New(suggestor,
		query.WithRoot(cfg.RootDirectory),
		query.WithPathFilter(pathfilter.New(cfg.Extensions, cfg.ExcludePaths)),
		query.WithExtensionless(cfg.IncludeExtensionless),
		query.WithStart(flags.start),
		query.WithEnd(flags.end),
	)

	session := &review.Session{
		Editor:    cfg.Editor,
		DefaultNo: cfg.DefaultNo,
		AcceptAll: flags.acceptAll,
		CountOnly: flags.count,
		Bookmarks: bookmark.NewStore("."),
	}
	return session.Run(ctx, q)
}

// applyFlagOverrides layers explicitly-given flags over the config file.
func applyFlagOverrides(cfg *config.Config, flags *rootFlags) {
	if flags.rootDirectory != "" {
		cfg.RootDirectory = flags.rootDirectory
	}
	if flags.extensions != "" {
		cfg.Extensions = strings.Split(flags.extensions, ",")
	}
	if flags.excludePaths != "" {
		cfg.ExcludePaths = strings.Split(flags.excludePaths, ",")
	}
	if flags.includeExtensionless {
		cfg.IncludeExtensionless = true
	}
	if flags.editor != "" {
		cfg.Editor = flags.editor
	}
	if flags.defaultNo {
		cfg.DefaultNo = true
	}
}

// setupLogging configures zerolog based on flags.
func setupLogging(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
