package tree_sitter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/itsaky/go-tree-sitter-android"
	spanParse           = "tree_sitter.parse"
)

// A stateful object that is used to produce a [Tree] from a [TextBuffer].
//
// A parser wraps exactly one [Engine] and runs at most one parse round at a
// time. A round is started with [Parser.BeginRound], runs the engine once
// with [Parser.ParseRound] and is finished with [Parser.EndRound];
// [Parser.Parse] does all three. While a round is active any goroutine may
// call [Parser.RequestCancellation], which makes the engine give up at its
// next checkpoint and return no tree.
type Parser struct {
	engine Engine

	// mu guards installing, clearing and reading the token slot, and every
	// engine call other than the parse itself.
	mu     sync.Mutex
	token  atomic.Pointer[CancellationToken]
	closed atomic.Bool

	logger        *slog.Logger
	meter         metric.Meter
	metrics       *ParseMetrics
	tracer        trace.Tracer
	engineLogging bool
}

// An option configuring a [Parser].
type Option func(*Parser)

// Log round and cancellation events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// Record parse metrics with meter instead of the global meter provider.
func WithMeter(meter metric.Meter) Option {
	return func(p *Parser) {
		p.meter = meter
	}
}

// Create spans with tracer instead of the global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Parser) {
		p.tracer = tracer
	}
}

// Forward the engine's own parse and lex messages to the logger. Only
// engines that accept a log callback, such as [SitterEngine], support it.
func WithEngineLogging() Option {
	return func(p *Parser) {
		p.engineLogging = true
	}
}

// Create a new parser backed by a go-tree-sitter engine.
func NewParser(opts ...Option) (*Parser, error) {
	return NewParserWithEngine(NewEngine(), opts...)
}

// Create a new parser that drives the given engine. The parser takes
// ownership of the engine and closes it in [Parser.Close].
func NewParserWithEngine(engine Engine, opts ...Option) (*Parser, error) {
	if engine == nil {
		return nil, ErrNullArgument
	}

	p := &Parser{engine: engine}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.meter == nil {
		p.meter = otel.Meter(instrumentationName)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(instrumentationName)
	}

	metrics, err := NewParseMetrics(p.meter)
	if err != nil {
		engine.Close()
		return nil, err
	}
	p.metrics = metrics

	if sink, ok := engine.(engineLogSink); ok && p.engineLogging {
		sink.SetLogger(engineLogger(p.logger.With(slog.String("component", "engine"))))
	}

	return p, nil
}

// Start a parse round: install a fresh cancellation token on the parser
// and on the engine.
//
// Fails with [ErrAlreadyParsing] if a round is already active; the active
// round is not disturbed.
func (p *Parser) BeginRound() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrDestroyed
	}
	if p.token.Load() != nil {
		return ErrAlreadyParsing
	}

	token := newCancellationToken()
	p.token.Store(token)
	p.engine.SetCancellationFlag(token.Flag())

	p.metrics.roundStarted(context.Background())
	p.logger.Debug("parse round started")
	return nil
}

// Run the engine once inside the active round.
//
// The buffer is borrowed for the duration of the call: mutating it from
// another goroutine fails with [ErrBufferBorrowed] until the call returns.
// A nil tree with a nil error means the round was cancelled or timed out.
func (p *Parser) ParseRound(oldTree *Tree, source *TextBuffer) (*Tree, error) {
	return p.parseRound(context.Background(), oldTree, source)
}

func (p *Parser) parseRound(ctx context.Context, oldTree *Tree, source *TextBuffer) (*Tree, error) {
	if source == nil {
		return nil, ErrNullArgument
	}

	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		return nil, ErrDestroyed
	}
	token := p.token.Load()
	if token == nil {
		p.mu.Unlock()
		return nil, ErrNotParsing
	}
	if !token.claim() {
		p.mu.Unlock()
		return nil, ErrAlreadyParsing
	}
	timeoutMicros := p.engine.TimeoutMicros()
	p.mu.Unlock()

	data, release, err := source.borrow()
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	tree := p.engine.ParseEncoded(oldTree, data, EncodingUTF16)
	elapsed := time.Since(start)

	p.mu.Lock()
	cancelled := token.Cancelled()
	token.finish(tree == nil && cancelled)
	p.mu.Unlock()

	outcome := OutcomeOK
	if tree == nil {
		switch {
		case cancelled:
			outcome = OutcomeCancelled
		case timeoutMicros > 0:
			outcome = OutcomeTimedOut
		default:
			outcome = OutcomeNoTree
		}
	}
	p.metrics.RecordRound(ctx, outcome, elapsed)
	p.logger.DebugContext(ctx, "parse round finished",
		slog.String(attrOutcome, outcome),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", elapsed),
	)

	return tree, nil
}

// Finish the active round: remove the token from the engine and release
// it. Must be called once for every successful [Parser.BeginRound], also
// when the round was cancelled.
//
// A round whose parse was stopped by cancellation resets the engine so the
// next round starts from scratch instead of resuming the abandoned parse. If the parser was
// closed during the round, the engine is released here.
func (p *Parser) EndRound() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.token.Load()
	if token == nil {
		if p.closed.Load() {
			return ErrDestroyed
		}
		return ErrNotParsing
	}

	p.engine.SetCancellationFlag(nil)
	p.token.Store(nil)
	aborted := token.aborted.Load()
	token.release()

	p.metrics.roundEnded(context.Background())
	p.logger.Debug("parse round ended", slog.Bool("cancelled", aborted))

	if p.closed.Load() {
		p.engine.Close()
		return nil
	}
	if aborted {
		p.engine.Reset()
	}
	return nil
}

// Parse the contents of source.
//
// # Arguments:
//   - `oldTree` A previous syntax tree parsed from the same document. If the
//     text of the document has changed since `oldTree` was created, then you
//     must edit `oldTree` to match the new text using [Tree.Edit].
//   - `source` The buffer to parse. It is borrowed until Parse returns.
//
// Returns a nil tree without error when the parse was cancelled through
// [Parser.RequestCancellation] or hit the timeout.
func (p *Parser) Parse(oldTree *Tree, source *TextBuffer) (*Tree, error) {
	return p.ParseCtx(context.Background(), oldTree, source)
}

// Parse the contents of source, cancelling the round when ctx is done.
func (p *Parser) ParseCtx(ctx context.Context, oldTree *Tree, source *TextBuffer) (*Tree, error) {
	if source == nil {
		return nil, ErrNullArgument
	}

	ctx, span := p.tracer.Start(ctx, spanParse,
		trace.WithAttributes(attribute.Int("tree_sitter.source.bytes", source.ByteLen())),
	)
	defer span.End()

	if err := p.BeginRound(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	finish := make(chan struct{})
	watcherDone := make(chan struct{})
	if ctx.Done() != nil {
		go func() {
			defer close(watcherDone)
			select {
			case <-ctx.Done():
				p.RequestCancellation()
			case <-finish:
			}
		}()
	} else {
		close(watcherDone)
	}

	tree, err := p.parseRound(ctx, oldTree, source)
	close(finish)
	// The watcher must not outlive this round, or it could cancel the next.
	<-watcherDone

	if endErr := p.EndRound(); endErr != nil && err == nil {
		err = endErr
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		tree.Close()
		return nil, err
	}

	span.SetAttributes(attribute.Bool("tree_sitter.tree.present", tree != nil))
	return tree, nil
}

// Ask the active round to stop. Safe to call from any goroutine at any
// time.
//
// Returns true if a round was active and its flag is now set, including
// when it was already set by an earlier request. Returns false when there
// is nothing to cancel, also when the round's parse has already returned.
func (p *Parser) RequestCancellation() bool {
	p.mu.Lock()
	token := p.token.Load()
	if token != nil && token.finished.Load() {
		token = nil
	}
	if token != nil {
		token.Cancel()
	}
	p.mu.Unlock()

	ctx := context.Background()
	if token == nil {
		p.metrics.RecordCancellation(ctx, false)
		p.logger.Debug("cannot cancel parsing, no parse is in progress")
		return false
	}

	p.metrics.RecordCancellation(ctx, true)
	p.logger.Debug("cancellation flag has been set")
	return true
}

// Report whether a round is active.
func (p *Parser) Parsing() bool {
	return p.token.Load() != nil
}

// Set the language that the parser should use for parsing.
func (p *Parser) SetLanguage(language *sitter.Language) error {
	if language == nil {
		return ErrNullArgument
	}
	return p.withIdleEngine(func(engine Engine) error {
		return engine.SetLanguage(language)
	})
}

// Get the parser's current language.
func (p *Parser) Language() (*sitter.Language, error) {
	var language *sitter.Language
	err := p.withEngine(func(engine Engine) {
		language = engine.Language()
	})
	return language, err
}

// Instruct the parser to start the next parse from the beginning instead of
// resuming a parse that timed out.
func (p *Parser) Reset() error {
	return p.withIdleEngine(func(engine Engine) error {
		engine.Reset()
		return nil
	})
}

// Set the maximum duration in microseconds that parsing should be allowed
// to take before halting. Zero means no limit.
//
// A timeout is the engine's own abort mechanism. Like a cancellation it
// makes the round return a nil tree.
func (p *Parser) SetTimeoutMicros(timeoutMicros uint64) error {
	return p.withIdleEngine(func(engine Engine) error {
		engine.SetTimeoutMicros(timeoutMicros)
		return nil
	})
}

// Get the duration in microseconds that parsing is allowed to take.
func (p *Parser) TimeoutMicros() (uint64, error) {
	var timeout uint64
	err := p.withEngine(func(engine Engine) {
		timeout = engine.TimeoutMicros()
	})
	return timeout, err
}

// Set the ranges of text that the parser should include when parsing.
//
// If `ranges` is empty, the entire document is parsed. Otherwise the ranges
// must be ordered and must not overlap; see [ValidateRanges]. A rejected
// set returns false and leaves the previously configured ranges in place.
// The error is reserved for a closed or busy parser.
func (p *Parser) SetIncludedRanges(ranges []Range) (bool, error) {
	if err := ValidateRanges(ranges); err != nil {
		p.logger.Debug("included ranges rejected", slog.Any("error", err))
		return false, nil
	}

	accepted := false
	err := p.withIdleEngine(func(engine Engine) error {
		accepted = engine.SetIncludedRanges(CloneRanges(ranges))
		return nil
	})
	return accepted, err
}

// Get the ranges of text that the parser will include when parsing.
func (p *Parser) IncludedRanges() ([]Range, error) {
	var ranges []Range
	err := p.withEngine(func(engine Engine) {
		ranges = CloneRanges(engine.IncludedRanges())
	})
	return ranges, err
}

// Destroy the parser. Every later operation except [Parser.EndRound] fails
// with [ErrDestroyed].
//
// If a round is active it is cancelled and the engine is released when that
// round ends.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrDestroyed
	}
	p.closed.Store(true)

	if token := p.token.Load(); token != nil {
		token.Cancel()
		p.logger.Debug("parser closed during a round, engine release deferred")
		return nil
	}

	p.engine.Close()
	return nil
}

func (p *Parser) withEngine(fn func(Engine)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrDestroyed
	}
	fn(p.engine)
	return nil
}

func (p *Parser) withIdleEngine(fn func(Engine) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrDestroyed
	}
	if p.token.Load() != nil {
		return ErrAlreadyParsing
	}
	return fn(p.engine)
}
