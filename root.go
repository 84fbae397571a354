package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"fuzzyhl/internal/config"
	"fuzzyhl/internal/highlighter"
	"fuzzyhl/internal/log"
	"fuzzyhl/internal/pager"
	"fuzzyhl/internal/readfile"
	"fuzzyhl/internal/render"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	closeLog func()
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"format":           "format",
	"output":           "output",
	"theme":            "theme",
	"color":            "color",
	"engine":           "engine",
	"lang":             "lang",
	"identifiers-only": "identifiers_only",
	"dump-ast":         "dump_ast",
	"standalone":       "standalone",
	"pager":            "pager",
	"workers":          "workers",
	"cache-size":       "cache_size",
	"debug-log":        "debug_log",
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{v: viper.New(), stdin: stdin, stdout: stdout, stderr: stderr}
}

func (a *app) rootCmd() *cobra.Command {
	d := config.Defaults()

	cmd := &cobra.Command{
		Use:   "fuzzyhl [file...]",
		Short: "Highlight C and C++ source",
		Long: `fuzzyhl classifies C and C++ tokens with a fuzzy parser that tolerates
incomplete code, then renders them as terminal colors, HTML, semantic HTML
or LaTeX. With no file, or "-", it reads standard input.`,
		Args:              cobra.ArbitraryArgs,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runHighlight,
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetVersionTemplate("fuzzyhl {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./.fuzzyhl.yaml or ~/.config/fuzzyhl/config.yaml)")
	flags.StringP("format", "f", d.Format, "output format: stdout, html, shtml or latex")
	flags.StringP("output", "o", d.Output, "write output to this file instead of stdout")
	flags.String("theme", d.Theme, "chroma style used for colors")
	flags.String("color", d.Color, "terminal colors: auto, always or never")
	flags.String("engine", d.Engine, "classifier: fuzzy or tree-sitter")
	flags.String("lang", d.Lang, "dialect: auto, c or cpp")
	flags.Bool("identifiers-only", d.IdentifiersOnly, "only highlight keywords, types, names and macros")
	flags.Bool("dump-ast", d.DumpAST, "print the syntax tree instead of highlighting")
	flags.Bool("standalone", d.Standalone, "emit a complete HTML or LaTeX document")
	flags.Bool("pager", d.Pager, "show terminal output in a scrollable viewer")
	flags.Int("workers", d.Workers, "files highlighted in parallel (0 = one per CPU)")
	flags.Int("cache-size", d.CacheSize, "highlight results kept in memory")
	flags.String("debug-log", d.DebugLog, "write debug log to this file")

	for name, key := range flagKeys {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	cmd.AddCommand(newSymbolsCmd(a), newConfigCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if cfg.DebugLog != "" {
		closeLog, err := log.Init(cfg.DebugLog)
		if err != nil {
			return err
		}
		a.closeLog = closeLog
	}
	if err := cfg.Validate(); err != nil {
		log.ErrorErr(log.CatConfig, "invalid configuration", err)
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	log.Debug(log.CatCLI, "command", "name", cmd.Name(), "args", len(args))
	return nil
}

// close releases the debug log, if one was opened.
func (a *app) close() {
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

func (a *app) workers() int {
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (a *app) readInputs(args []string) ([]highlighter.Request, error) {
	if len(args) == 0 {
		args = []string{""}
	}
	reqs := make([]highlighter.Request, 0, len(args))
	for _, path := range args {
		src, name, err := readfile.Read(path, a.stdin)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, highlighter.Request{Name: name, Src: src})
	}
	return reqs, nil
}

// openOutput returns the destination and a close function that reports
// the close error.
func (a *app) openOutput() (io.Writer, func() error, error) {
	path := a.cfg.Output
	if path == "" || path == "-" {
		return a.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, f.Close, nil
}

func (a *app) runHighlight(cmd *cobra.Command, args []string) (err error) {
	resolved, err := a.cfg.Resolve()
	if err != nil {
		return err
	}

	reqs, err := a.readInputs(args)
	if err != nil {
		return err
	}
	opts := highlighter.Options{
		Dialect:         resolved.Dialect,
		Engine:          resolved.Engine,
		IdentifiersOnly: a.cfg.IdentifiersOnly,
		DumpAST:         a.cfg.DumpAST,
	}
	for i := range reqs {
		reqs[i].Options = opts
	}

	h := highlighter.New(highlighter.Config{CacheSize: a.cfg.CacheSize, Workers: a.workers()})
	results := h.HighlightAll(cmd.Context(), reqs)
	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("%s: %w", res.Name, res.Err)
		}
	}

	w, closeOut, err := a.openOutput()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if a.cfg.DumpAST {
		return writeASTs(w, results)
	}

	ropts := render.Options{
		Palette:    resolved.Palette,
		Color:      resolved.Color,
		Standalone: a.cfg.Standalone,
		Env:        render.EnvMap(os.Environ()),
	}
	usePager := a.cfg.Pager && resolved.Format == render.TerminalColor && w == a.stdout && render.IsTerminal(a.stdout)
	if usePager && ropts.Color == render.ModeAuto {
		ropts.Color = render.ModeAlways
	}
	renderer, err := render.New(resolved.Format, ropts)
	if err != nil {
		return err
	}

	if !usePager {
		return renderAll(w, renderer, results)
	}
	var buf bytes.Buffer
	if err := renderAll(&buf, renderer, results); err != nil {
		return err
	}
	return pager.Run(pagerTitle(results), buf.String(), a.stdin, a.stdout)
}

func renderAll(w io.Writer, renderer render.Renderer, results []highlighter.Result) error {
	for _, res := range results {
		doc := render.Document{Name: res.Name, Src: res.Src, Spans: res.Spans}
		if err := renderer.Render(w, doc); err != nil {
			return err
		}
		log.Debug(log.CatRender, "rendered", "file", res.Name, "spans", len(res.Spans), "cached", res.Cached)
	}
	return nil
}

func writeASTs(w io.Writer, results []highlighter.Result) error {
	for _, res := range results {
		if len(results) > 1 {
			if _, err := fmt.Fprintf(w, "== %s ==\n", res.Name); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
		if _, err := io.WriteString(w, res.AST); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

func pagerTitle(results []highlighter.Result) string {
	names := make([]string, len(results))
	for i, res := range results {
		names[i] = res.Name
	}
	return strings.Join(names, ", ")
}
