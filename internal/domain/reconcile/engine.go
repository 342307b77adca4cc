// Package reconcile drives the evidence parser and the matchers over one
// block of payment text and produces an ordered list of outcomes.
//
// The engine is pure: it performs no I/O, keeps no state between calls and
// never mutates the roster snapshot, so a single Engine may serve concurrent
// callers.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/eshaffer321/tuition-reconciler/internal/domain/evidence"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/roster"
)

// maxFragmentRunes caps the fragment kept on the terminal outcome.
const maxFragmentRunes = 200

// Engine reconciles payment text against a roster.
type Engine struct {
	config  Config
	matcher *matcher.Matcher
}

// NewEngine creates an engine with the given config
func NewEngine(config Config) *Engine {
	return &Engine{
		config:  config,
		matcher: matcher.NewMatcher(config.matcherConfig()),
	}
}

// WithSimilarity replaces the name scoring function.
func (e *Engine) WithSimilarity(fn matcher.Similarity) *Engine {
	e.matcher.WithSimilarity(fn)
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Reconcile runs the three phases over text: roster scanning, labelled
// names, then per-line amounts. The result is never empty.
func (e *Engine) Reconcile(text string, entries []roster.Entry) []Outcome {
	lines := evidence.SplitLines(text)
	r := &run{
		engine:  e,
		entries: entries,
		named:   make(map[int64]roster.Entry),
		seen:    make(map[string]bool),
		scanned: make(map[int]bool),
	}

	r.scanNames(lines)
	r.labelledNames(lines)
	r.amounts(lines)

	if len(r.outcomes) == 0 {
		return []Outcome{{
			Kind:           KindUnmatched,
			Reason:         ReasonNoInformation,
			SourceFragment: truncate(strings.TrimSpace(evidence.NormalizeText(text)), maxFragmentRunes),
		}}
	}
	return r.outcomes
}

// run is the per-call state of one Reconcile invocation.
type run struct {
	engine   *Engine
	entries  []roster.Entry
	named    map[int64]roster.Entry
	outcomes []Outcome
	seen     map[string]bool

	// lines whose text already produced a roster hit or a tie
	scanned map[int]bool
}

func (r *run) scanNames(lines []evidence.Line) {
	scan := evidence.ScanRoster(lines, r.entries, r.engine.config.scanOptions())

	for _, hit := range scan.Hits {
		r.scanned[hit.Line] = true
		r.named[hit.Entry.ID] = hit.Entry
		r.emit(Outcome{
			Kind:           KindNameMatch,
			Entries:        []roster.Entry{hit.Entry},
			SourceFragment: hit.Fragment,
			Line:           hit.Line,
			Score:          100,
		})
	}

	for _, amb := range scan.Ambiguous {
		r.scanned[amb.Line] = true
		r.emit(Outcome{
			Kind:           KindUnmatched,
			Reason:         ReasonAmbiguousName,
			Entries:        amb.Entries,
			SourceFragment: amb.Fragment,
			Line:           amb.Line,
		})
	}
}

// labelledNames feeds every "name: ..." value to the name matcher. A line
// that roster scanning already explained only contributes new matches.
func (r *run) labelledNames(lines []evidence.Line) {
	for _, name := range evidence.ExtractLabeledNames(lines) {
		res := r.engine.matcher.MatchName(name.Value, r.entries)

		if res.Matched() {
			if _, ok := r.named[res.Entry.ID]; ok {
				continue
			}
			r.named[res.Entry.ID] = *res.Entry
			r.emit(Outcome{
				Kind:           KindNameMatch,
				Entries:        []roster.Entry{*res.Entry},
				SourceFragment: name.Fragment,
				Line:           name.Line,
				Score:          res.Score,
			})
			continue
		}

		if res.Unqualified || r.scanned[name.Line] {
			continue
		}

		reason := ReasonNameNotFound
		if res.Contenders > 1 && res.Score >= r.engine.config.NameMatchThreshold {
			reason = ReasonAmbiguousName
		}
		r.emit(Outcome{
			Kind:           KindUnmatched,
			Reason:         reason,
			SourceFragment: name.Fragment,
			Line:           name.Line,
			Score:          res.Score,
		})
	}
}

func (r *run) amounts(lines []evidence.Line) {
	window := r.engine.config.window()

	for _, line := range lines {
		found := evidence.ExtractAmount(line, window)

		for _, a := range found.Anomalies {
			r.emit(Outcome{
				Kind:           KindParseAnomaly,
				Reason:         ReasonMalformedNumber,
				SourceFragment: a.Fragment,
				Line:           a.Line,
			})
		}

		if found.Amount != nil {
			r.amount(*found.Amount)
		}
	}
}

func (r *run) amount(a evidence.Amount) {
	if r.attributed(a.Value) {
		return
	}

	base := Outcome{
		Amount:         a.Value,
		SourceFragment: a.Fragment,
		Line:           a.Line,
	}

	single := r.engine.matcher.MatchAmount(a.Value, r.entries)
	if single.Matched() {
		base.Kind = KindAmountMatch
		base.Entries = []roster.Entry{*single.Entry}
		r.emit(base)
		return
	}

	combo := r.engine.matcher.ResolveCombination(a.Value, r.entries)
	if combo.Matched() {
		base.Kind = KindCombinedAmountMatch
		base.Entries = combo.Entries
		r.emit(base)
		return
	}

	base.Kind = KindUnmatched
	switch {
	case single.Ambiguous():
		base.Reason = ReasonAmbiguousAmount
		base.Entries = single.Tied
	case combo.Exhausted:
		base.Reason = ReasonSearchBudgetExhausted
	default:
		base.Reason = ReasonNoCandidate
	}
	r.emit(base)
}

// attributed reports whether value matches a fee of a student that was
// already identified by name.
func (r *run) attributed(value int64) bool {
	for _, e := range r.named {
		if e.HasFeeWithin(value, r.engine.config.AmountTolerance) {
			return true
		}
	}
	return false
}

// emit appends o unless the same fact was already reported.
func (r *run) emit(o Outcome) {
	key := dedupeKey(o)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.outcomes = append(r.outcomes, o)
}

// dedupeKey identifies a fact. A name match is a fact about a student
// wherever the name appeared. Every other outcome is a fact about its own
// fragment: two lines showing the same amount are two deposits, while the
// same line repeated verbatim is one.
func dedupeKey(o Outcome) string {
	if o.Kind == KindNameMatch {
		return fmt.Sprintf("%s|%v", o.Kind, o.StudentIDs())
	}
	return fmt.Sprintf("%s|%s|%v|%d|%s", o.Kind, o.Reason, o.StudentIDs(), o.Amount, o.SourceFragment)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
