package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"

	"github.com/sublee/opaque/internal/logger"
	opaqueinternal "github.com/sublee/opaque/internal/opaque"
)

var Version = "dev"

func init() {
	opaqueinternal.Version = Version
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd builds the command. Every flag can also be set by an environment
// variable prefixed with OPAQUE_, e.g., OPAQUE_OUTPUT=gen.go.
func rootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("opaque")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "opaque [flags] [packages]",
		Short:         "Generate conversion methods of opaque typedefs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}

	flags := cmd.Flags()
	addFlags(flags)
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	return cmd
}

func addFlags(flags *pflag.FlagSet) {
	flags.StringP("tags", "b", "", "comma-separated build tags")
	flags.BoolP("tests", "t", false, "include tests")
	flags.StringP("output", "o", "opaque_gen.go", "output file name")
	flags.StringP("color", "c", "auto", "colorize (auto|always|never)")
	flags.BoolP("verbose", "v", false, "log debug messages")
}

func run(cmd *cobra.Command, v *viper.Viper, patterns []string) error {
	stderr := cmd.ErrOrStderr()

	color := false
	switch c := v.GetString("color"); c {
	case "auto":
		color = isatty()
	case "always":
		color = true
	case "never":
		color = false
	default:
		err := fmt.Errorf("invalid --color value: %s", c)
		fmt.Fprintln(stderr, err)
		return err
	}

	cfg := logger.DefaultConfig()
	cfg.Output = stderr
	if v.GetBool("verbose") {
		cfg.Level = logger.DebugLevel
	}
	log := logger.NewLogger(cfg)
	ctx := logger.ContextWithLogger(context.Background(), log)

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return err
	}

	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	outs, err := opaqueinternal.Main(ctx, wd, os.Environ(), v.GetString("tags"), v.GetBool("tests"), v.GetString("output"), patterns)
	if err != nil {
		message := err.Error()
		if color {
			message = colorize(message)
		}
		fmt.Fprintln(stderr, message)
		return errors.New("generation failed")
	}

	for out, code := range outs {
		if err := os.WriteFile(out, code, 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return err
		}

		if relOut, err := filepath.Rel(wd, out); err == nil {
			out = relOut
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Generated:", out)
	}
	return nil
}

// isatty reports whether the program is running in a terminal. If it is true,
// we can use ANSI color codes.
func isatty() bool {
	_, err := unix.IoctlGetWinsize(int(os.Stderr.Fd()), unix.TIOCGWINSZ)
	return err == nil
}

// rePos matches the position prefix of an error line, e.g., "a.go:3:11: ".
var rePos = regexp.MustCompile(`(?m)^[^\s:]+\.go:\d+:\d+: `)

// colorize dims the positions and paints the messages red.
func colorize(message string) string {
	const (
		red   = "\033[31m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		if loc := rePos.FindStringIndex(line); loc != nil {
			lines[i] = dim + line[:loc[1]] + reset + red + line[loc[1]:] + reset
		}
	}
	return strings.Join(lines, "\n")
}
