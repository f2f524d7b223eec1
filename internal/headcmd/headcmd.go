// Package headcmd implements the command line interface of finitegen.
// It prints a bounded prefix of a possibly infinite source, similarly to how the coreutils "head" app works.
package headcmd

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/gilacc/finitegen"
	"github.com/gilacc/finitegen/pkg/sourcekit"
	"go.llib.dev/frameless/pkg/cli"
	"go.llib.dev/frameless/pkg/env"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/logging"
	"gopkg.in/yaml.v3"
)

const (
	ErrInvalidOption errorkit.Error = "ErrInvalidOption"
	ErrConfigFile    errorkit.Error = "ErrConfigFile"
)

const (
	SourceLines   = "lines"
	SourceFollow  = "follow"
	SourceCounter = "counter"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EnvConfig names the environment variable that points to the TOML configuration file.
const EnvConfig = "FINITEGEN_CONFIG"

const defaultLimit = 10

// Command prints at most Limit elements of the selected source.
//
// Options are resolved in the following order: flags, environment variables,
// the TOML configuration file and finally the built-in defaults.
type Command struct {
	Limit  int    `flag:"limit,n" env:"FINITEGEN_LIMIT" toml:"limit" desc:"maximum number of elements to print"`
	Source string `flag:"source" env:"FINITEGEN_SOURCE" toml:"source" enum:"lines,follow,counter," desc:"source of the elements"`
	Start  int    `flag:"start" env:"FINITEGEN_START" toml:"start" desc:"first value of the counter source"`
	Format string `flag:"format" env:"FINITEGEN_FORMAT" toml:"format" enum:"text,json,yaml," desc:"output format"`

	Path string `arg:"0" toml:"-" desc:"file to read the lines from, standard input when empty or -"`

	// Unique makes the command print only the distinct elements, in ascending order.
	Unique bool `toml:"-"`
	// Logger is optional, when nil the package level logger is used.
	Logger *logging.Logger `toml:"-"`
}

// Defaults returns a Command with the built-in defaults.
func Defaults() Command {
	return Command{
		Limit:  defaultLimit,
		Source: SourceLines,
		Format: FormatText,
	}
}

// LoadConfig overrides cmd's options with the TOML file that EnvConfig points to.
// Options missing from the file are left untouched.
func LoadConfig(cmd *Command) error {
	path, ok, err := env.Lookup[string](EnvConfig)
	if err != nil {
		return err
	}
	if !ok || path == "" {
		return nil
	}
	if _, err := toml.DecodeFile(path, cmd); err != nil {
		return ErrConfigFile.F("%s: %w", path, err)
	}
	return nil
}

func (cmd Command) Summary() string {
	if cmd.Unique {
		return "print the distinct values among the first N elements of a source"
	}
	return "print the first N elements of a source"
}

func (cmd Command) ServeCLI(w cli.Response, r *cli.Request) {
	ctx := r.Context()
	if err := cmd.serve(ctx, w, r.Body); err != nil {
		cmd.logger().Debug(ctx, "finitegen command failed", logging.ErrField(err))
		handleError(w, r, err)
	}
}

// handleError reports invalid command line usage with cli.ExitCodeBadRequest,
// the same way flag parsing errors are reported.
func handleError(w cli.Response, r *cli.Request, err error) {
	if !errors.Is(err, ErrInvalidOption) && !errors.Is(err, finitegen.ErrNegativeLimit) {
		cli.HandleError(w, r, err)
		return
	}
	w.ExitCode(cli.ExitCodeBadRequest)
	var o io.Writer = w
	if ew, ok := w.(cli.ErrorWriter); ok && ew.Stderr() != nil {
		o = ew.Stderr()
	}
	fmt.Fprintln(o, err.Error())
}

// validate checks the options that bypass flag parsing, such as the ones coming from the configuration file.
func (cmd Command) validate() error {
	switch cmd.Source {
	case SourceLines, SourceFollow, SourceCounter:
	default:
		return ErrInvalidOption.F("unknown source: %q", cmd.Source)
	}
	switch cmd.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return ErrInvalidOption.F("unknown format: %q", cmd.Format)
	}
	if cmd.Source == SourceFollow && !cmd.hasPath() {
		return ErrInvalidOption.F("the %s source requires a file path", SourceFollow)
	}
	return nil
}

func (cmd Command) hasPath() bool {
	return cmd.Path != "" && cmd.Path != "-"
}

func (cmd Command) serve(ctx context.Context, w io.Writer, body io.Reader) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	cmd.logger().Debug(ctx, "generating bounded output",
		logging.Field("source", cmd.Source),
		logging.Field("limit", cmd.Limit),
		logging.Field("format", cmd.Format),
		logging.Field("unique", cmd.Unique))

	switch cmd.Source {
	case SourceCounter:
		gen, err := finitegen.New(sourcekit.Counter(cmd.Start), cmd.Limit)
		if err != nil {
			return err
		}
		return output(ctx, cmd, w, gen)

	case SourceFollow:
		cursor, err := sourcekit.Follow(ctx, cmd.Path)
		if err != nil {
			return err
		}
		defer cursor.Close()
		gen, err := finitegen.FromCursor[string](cursor, cmd.Limit)
		if err != nil {
			return err
		}
		err = output(ctx, cmd, w, gen)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	default: // SourceLines
		var in io.Reader = struct{ io.Reader }{Reader: body} // hides Close, standard input is not ours
		if cmd.hasPath() {
			f, err := os.Open(cmd.Path)
			if err != nil {
				return err
			}
			in = f
		}
		cursor := sourcekit.Lines(in)
		defer cursor.Close()
		gen, err := finitegen.FromCursor[string](cursor, cmd.Limit)
		if err != nil {
			return err
		}
		return output(ctx, cmd, w, gen)
	}
}

func output[T cmp.Ordered](ctx context.Context, cmd Command, w io.Writer, gen finitegen.Generator[T]) error {
	if !cmd.Unique && cmd.Format == FormatText {
		var n int
		err := gen.ForEach(func(v T) error {
			n++
			_, err := fmt.Fprintln(w, v)
			return err
		})
		cmd.logger().Debug(ctx, "bounded output is done", logging.Field("count", n))
		return err
	}

	var vs []T
	if cmd.Unique {
		set, err := finitegen.ToSet(gen)
		if err != nil {
			return err
		}
		vs = slices.Sorted(maps.Keys(set))
	} else {
		var err error
		vs, err = gen.Collect()
		if err != nil {
			return err
		}
	}
	if vs == nil {
		vs = make([]T, 0)
	}
	cmd.logger().Debug(ctx, "bounded output is done", logging.Field("count", len(vs)))
	return encode(w, cmd.Format, vs)
}

func encode[T any](w io.Writer, format string, vs []T) error {
	switch format {
	case FormatJSON:
		return json.NewEncoder(w).Encode(vs)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(vs); err != nil {
			return errorkit.Merge(err, enc.Close())
		}
		return enc.Close()
	default:
		for _, v := range vs {
			if _, err := fmt.Fprintln(w, v); err != nil {
				return err
			}
		}
		return nil
	}
}

type debugLogger interface {
	Debug(ctx context.Context, msg string, ds ...logging.Detail)
}

type pkgLogger struct{}

func (pkgLogger) Debug(ctx context.Context, msg string, ds ...logging.Detail) {
	logger.Debug(ctx, msg, ds...)
}

func (cmd Command) logger() debugLogger {
	if cmd.Logger != nil {
		return cmd.Logger
	}
	return pkgLogger{}
}
