package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fuzzyhl/internal/fuzzy"
	"fuzzyhl/internal/lang"
	"fuzzyhl/internal/lexer"
	"fuzzyhl/internal/log"
	"fuzzyhl/internal/render"
	"fuzzyhl/internal/symbols"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newSymbolsCmd(a *app) *cobra.Command {
	var query string
	var kinds []string

	cmd := &cobra.Command{
		Use:   "symbols [file...]",
		Short: "List functions, types, variables and macros declared in the inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSymbols(args, query, kinds)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "fuzzy filter; best matches first")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "only these kinds: function, type, variable, macro")
	return cmd
}

func (a *app) runSymbols(args []string, query string, kinds []string) error {
	resolved, err := a.cfg.Resolve()
	if err != nil {
		return err
	}
	allowed := make(map[symbols.Kind]bool, len(kinds))
	for _, k := range kinds {
		kind := symbols.Kind(strings.ToLower(strings.TrimSpace(k)))
		switch kind {
		case symbols.KindFunction, symbols.KindType, symbols.KindVariable, symbols.KindMacro:
			allowed[kind] = true
		default:
			return fmt.Errorf("invalid kind %q (use function, type, variable or macro)", k)
		}
	}

	reqs, err := a.readInputs(args)
	if err != nil {
		return err
	}
	var all []symbols.Symbol
	for _, req := range reqs {
		dialect := resolved.Dialect
		if dialect == lang.Auto {
			dialect = lang.DetectWithContent(req.Name, req.Src)
		}
		tree := fuzzy.Parse(req.Src, lexer.Lex(req.Src, dialect))
		for _, sym := range symbols.Collect(req.Name, tree) {
			if len(allowed) == 0 || allowed[sym.Kind] {
				all = append(all, sym)
			}
		}
	}
	matches := symbols.Filter(all, query)
	log.Debug(log.CatCLI, "symbols", "total", len(all), "matches", len(matches), "query", query)

	w, closeOut, err := a.openOutput()
	if err != nil {
		return err
	}
	werr := writeSymbols(w, a.symbolStyle(w, resolved.Color), all, matches, query)
	if cerr := closeOut(); cerr != nil && werr == nil {
		werr = fmt.Errorf("close output: %w", cerr)
	}
	return werr
}

func (a *app) symbolStyle(w io.Writer, mode render.ColorMode) lipgloss.Style {
	lr := lipgloss.NewRenderer(w)
	if mode == render.ModeAuto {
		f, _ := w.(*os.File)
		mode = render.DetectMode(f, render.EnvMap(os.Environ()))
	}
	if mode == render.ModeNever {
		lr.SetColorProfile(termenv.Ascii)
	} else {
		lr.SetColorProfile(termenv.ANSI)
	}
	return lr.NewStyle().Bold(true).Underline(true)
}

// writeSymbols prints "file:line:col<TAB>kind<TAB>name" per match, with
// the query's matched runes emphasized.
func writeSymbols(w io.Writer, hit lipgloss.Style, all []symbols.Symbol, matches []symbols.Match, query string) error {
	for _, m := range matches {
		sym := all[m.Index]
		name := emphasize(sym.Name, symbols.Positions(sym.Name, query), hit)
		if _, err := fmt.Fprintf(w, "%s:%d:%d\t%s\t%s\n", sym.File, sym.Line, sym.Col, sym.Kind, name); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

func emphasize(s string, positions []int, style lipgloss.Style) string {
	if len(positions) == 0 {
		return s
	}
	marked := make(map[int]bool, len(positions))
	for _, p := range positions {
		marked[p] = true
	}
	var b strings.Builder
	i := 0
	for _, r := range s {
		if marked[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
		i++
	}
	return b.String()
}
