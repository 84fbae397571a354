package highlighter

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fuzzyhl/internal/classify"
	"fuzzyhl/internal/fuzzy"
	"fuzzyhl/internal/lang"
	"fuzzyhl/internal/lexer"
	"fuzzyhl/internal/log"
	"fuzzyhl/internal/treesitter"

	sitter "github.com/smacker/go-tree-sitter"
)

type Engine string

const (
	EngineFuzzy      Engine = "fuzzy"
	EngineTreeSitter Engine = "tree-sitter"
)

func ParseEngine(v string) (Engine, error) {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "", string(EngineFuzzy):
		return EngineFuzzy, nil
	case string(EngineTreeSitter), "treesitter", "ts":
		return EngineTreeSitter, nil
	default:
		return "", fmt.Errorf("invalid engine %q (use fuzzy or tree-sitter)", v)
	}
}

// Options controls one highlight call. The zero value lexes by detected
// dialect with the fuzzy engine.
type Options struct {
	Dialect         lang.ID
	Engine          Engine
	IdentifiersOnly bool
	DumpAST         bool
}

type Request struct {
	Name    string
	Src     []byte
	Options Options
}

// Result carries either Spans or, in dump mode, AST. Err is set only by
// the batch API when the context ends before the request ran, or when the
// tree-sitter engine fails.
type Result struct {
	Name    string
	Src     []byte
	Dialect lang.ID
	Spans   []classify.Span
	AST     string
	Stats   fuzzy.Stats
	Cached  bool
	Err     error
}

// Highlight runs lexer, fuzzy parser and classifier over src. It is pure
// and safe for concurrent use.
func Highlight(src []byte, opts Options) Result {
	dialect := opts.Dialect
	if dialect == lang.Auto {
		dialect = lang.CPP
	}

	tokens := lexer.Lex(src, dialect)
	tree := fuzzy.Parse(src, tokens)
	res := Result{Src: src, Dialect: dialect, Stats: tree.Stats}
	if opts.DumpAST {
		res.AST = fuzzy.Dump(tree)
		return res
	}
	res.Spans = classify.Classify(tree, classify.Options{IdentifiersOnly: opts.IdentifiersOnly})
	return res
}

type Config struct {
	CacheSize int
	Workers   int
}

// Highlighter memoizes results and fans multi-file work out to a worker
// pool. Each worker owns its tree-sitter parser.
type Highlighter struct {
	cache   *spanLRU
	workers int
}

func New(cfg Config) *Highlighter {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Highlighter{
		cache:   newSpanLRU(cfg.CacheSize),
		workers: workers,
	}
}

func (h *Highlighter) normalizeRequest(req Request) Request {
	if req.Options.Engine == "" {
		req.Options.Engine = EngineFuzzy
	}
	if req.Options.Dialect == lang.Auto {
		req.Options.Dialect = lang.DetectWithContent(req.Name, req.Src)
	}
	return req
}

// Highlight serves one request, from the cache when possible.
func (h *Highlighter) Highlight(ctx context.Context, req Request) Result {
	var parser *sitter.Parser
	return h.highlightWithParser(ctx, &parser, req)
}

// HighlightAll runs reqs on the worker pool and returns results in request
// order. Requests not started before ctx ends carry ctx.Err().
func (h *Highlighter) HighlightAll(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	workers := min(h.workers, len(reqs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var parser *sitter.Parser
			for i := range tasks {
				if err := ctx.Err(); err != nil {
					results[i] = Result{Name: reqs[i].Name, Src: reqs[i].Src, Err: err}
					continue
				}
				results[i] = h.highlightWithParser(ctx, &parser, reqs[i])
			}
		}()
	}

	for i := range reqs {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	return results
}

func (h *Highlighter) highlightWithParser(ctx context.Context, parser **sitter.Parser, req Request) Result {
	req = h.normalizeRequest(req)
	key := cacheKeyForRequest(req)
	if entry, ok := h.cache.Get(key); ok {
		log.Debug(log.CatCache, "hit", "file", req.Name, "bytes", len(req.Src))
		return Result{
			Name:    req.Name,
			Src:     req.Src,
			Dialect: req.Options.Dialect,
			Spans:   entry.spans,
			AST:     entry.ast,
			Stats:   entry.stats,
			Cached:  true,
		}
	}

	var res Result
	switch req.Options.Engine {
	case EngineTreeSitter:
		if *parser == nil {
			*parser = sitter.NewParser()
		}
		res = highlightTreeSitter(ctx, *parser, req)
	default:
		res = Highlight(req.Src, req.Options)
		log.Debug(log.CatLex, "lexed", "file", req.Name, "dialect", res.Dialect, "tokens", res.Stats.Tokens)
		log.Debug(log.CatParse, "parsed",
			"file", req.Name,
			"implicit_closes", res.Stats.ImplicitCloses,
			"stray_closers", res.Stats.StrayClosers,
			"templates", res.Stats.TemplateLists,
			"rejected_templates", res.Stats.RejectedTemplates)
	}
	res.Name = req.Name
	if res.Err != nil {
		log.ErrorErr(log.CatClassify, "highlight failed", res.Err, "file", req.Name)
		return res
	}

	h.cache.Set(key, cacheEntry{key: key, spans: res.Spans, ast: res.AST, stats: res.Stats})
	log.Debug(log.CatClassify, "classified", "file", req.Name, "engine", req.Options.Engine, "spans", len(res.Spans))
	return res
}

func highlightTreeSitter(ctx context.Context, parser *sitter.Parser, req Request) Result {
	res := Result{Src: req.Src, Dialect: req.Options.Dialect}
	if req.Options.DumpAST {
		res.AST, res.Err = treesitter.Dump(ctx, parser, req.Src, req.Options.Dialect)
		return res
	}
	res.Spans, res.Err = treesitter.Classify(ctx, parser, req.Src, req.Options.Dialect, req.Options.IdentifiersOnly)
	return res
}
