package revise

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/csheth/vibewrite/internal/diff"
	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/paragraph"
	"github.com/csheth/vibewrite/internal/suggest"
)

// ProgressStatus is the state of one paragraph during a pass.
type ProgressStatus string

const (
	ProgressQueued    ProgressStatus = "queued"
	ProgressWorking   ProgressStatus = "working"
	ProgressDone      ProgressStatus = "done"
	ProgressUnchanged ProgressStatus = "unchanged"
	ProgressFailed    ProgressStatus = "failed"
)

// ProgressEvent reports the state of one paragraph. Total is the number of
// paragraphs that were sent for revision.
type ProgressEvent struct {
	Index  int
	Total  int
	Status ProgressStatus
	Err    error
}

// Failure records a paragraph whose revision produced no suggestion.
type Failure struct {
	Index int
	Kind  llm.ErrorKind
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("paragraph %d: %v", f.Index, f.Err)
}

// Report summarises an Analyze pass.
type Report struct {
	Paragraphs  int
	Requested   int
	Suggestions []suggest.Suggestion
	Unchanged   []int
	Failures    []Failure
}

type outcome struct {
	requested bool
	original  string
	revised   string
	unchanged bool
	failure   *Failure
}

// Analyze requests a rewrite for every non-empty paragraph of text and
// stores a suggestion for each one that came back different. Per-paragraph
// failures are collected in the report; the returned error is only set when
// ctx ends before all requests finish, in which case nothing is stored.
func (e *Engine) Analyze(ctx context.Context, text string, opts Options) (Report, error) {
	opts = opts.withDefaults()
	paragraphs := paragraph.Segment(text)
	outcomes := make([]outcome, len(paragraphs))

	var work []paragraph.Paragraph
	for _, p := range paragraphs {
		if !p.Empty() {
			work = append(work, p)
		}
	}
	total := len(work)
	for _, p := range work {
		emit(opts, ProgressEvent{Index: p.Index, Total: total, Status: ProgressQueued})
	}

	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for _, p := range work {
		g.Go(func() error {
			outcomes[p.Index] = e.request(ctx, p, total, opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	if opts.Replace {
		e.store.Clear()
	}
	report := Report{Paragraphs: len(paragraphs), Requested: total}
	for index, out := range outcomes {
		switch {
		case !out.requested:
		case out.failure != nil:
			report.Failures = append(report.Failures, *out.failure)
		case out.unchanged:
			report.Unchanged = append(report.Unchanged, index)
		default:
			script := diff.Compute(out.original, out.revised)
			id, err := e.store.Create(index, out.original, out.revised, script)
			if err != nil {
				log.Printf("[revise] paragraph %d not stored: %v", index, err)
				report.Failures = append(report.Failures, Failure{Index: index, Kind: KindValidation, Err: err})
				continue
			}
			if sg, ok := e.store.Get(id); ok {
				report.Suggestions = append(report.Suggestions, sg)
			}
		}
	}
	return report, nil
}

func (e *Engine) request(ctx context.Context, p paragraph.Paragraph, total int, opts Options) outcome {
	out := outcome{requested: true, original: p.Trimmed()}
	emit(opts, ProgressEvent{Index: p.Index, Total: total, Status: ProgressWorking})

	fail := func(kind llm.ErrorKind, err error) outcome {
		if ctx.Err() == nil {
			log.Printf("[revise] paragraph %d failed (%s): %v", p.Index, kind, err)
		}
		out.failure = &Failure{Index: p.Index, Kind: kind, Err: err}
		emit(opts, ProgressEvent{Index: p.Index, Total: total, Status: ProgressFailed, Err: err})
		return out
	}

	if n := utf8.RuneCountInString(out.original); n > llm.MaxParagraphRunes {
		return fail(KindValidation, fmt.Errorf("%w: %d characters (limit %d)", llm.ErrTooLong, n, llm.MaxParagraphRunes))
	}

	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	raw, err := e.client.Revise(reqCtx, out.original)
	if errors.Is(err, llm.ErrTooLong) {
		return fail(KindValidation, err)
	}
	if err != nil {
		return fail(llm.KindOf(err), err)
	}

	revised := singleParagraph(norm.NFC.String(strings.TrimSpace(raw)))
	if opts.MinLength > 0 && utf8.RuneCountInString(revised) < opts.MinLength {
		return fail(KindValidation, fmt.Errorf("%w: %d characters, want at least %d", ErrValidation, utf8.RuneCountInString(revised), opts.MinLength))
	}
	if revised == out.original || revised == norm.NFC.String(out.original) {
		out.unchanged = true
		emit(opts, ProgressEvent{Index: p.Index, Total: total, Status: ProgressUnchanged})
		return out
	}
	out.revised = revised
	emit(opts, ProgressEvent{Index: p.Index, Total: total, Status: ProgressDone})
	return out
}

// singleParagraph folds paragraph breaks in a reply into line breaks so
// applying it never changes the paragraph count of the document.
func singleParagraph(text string) string {
	for strings.Contains(text, paragraph.Separator) {
		text = strings.ReplaceAll(text, paragraph.Separator, "\n")
	}
	return text
}

func emit(opts Options, ev ProgressEvent) {
	if opts.OnProgress != nil {
		opts.OnProgress(ev)
	}
}
