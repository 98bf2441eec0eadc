// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package narrative turns finished layer snapshots into short comments about
// the riskiest thing that happened to each world.
package narrative

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/lineage"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/world"
)

// Thresholds used to judge a world's situation.
const (
	LowIncome = 40_000.0
	// BufferShare is the share of income below which cash counts as a thin buffer.
	BufferShare = 0.25
)

// Comment is one remark about a world's latest layer.
type Comment struct {
	WorldID  int64
	World    string
	Event    string
	Text     string
	Severity int
}

// ThisLayerEvent returns the event a world went through in its latest
// layer. Tokens recording that nothing happened report false; earlier
// tokens are never consulted.
func ThisLayerEvent(rec world.Record) (string, bool) {
	if len(rec.TrajectoryEvents) == 0 {
		return "", false
	}
	last := rec.TrajectoryEvents[len(rec.TrajectoryEvents)-1]
	if !event.Occurred(last) {
		return "", false
	}
	return last, true
}

// Partners draws partner names for marriage comments from an explicit
// random source.
type Partners struct {
	rng  *rand.Rand
	pool []string
}

// NewPartners returns a picker over the curated world names.
func NewPartners(rng *rand.Rand) *Partners {
	return &Partners{rng: rng, pool: lineage.CuratedNames}
}

// Pick returns a name different from exclude.
func (p *Partners) Pick(exclude string) string {
	candidates := p.pool
	if slices.Contains(candidates, exclude) {
		candidates = slices.DeleteFunc(slices.Clone(candidates), func(n string) bool { return n == exclude })
	}
	if len(candidates) == 0 {
		return "their partner"
	}
	return candidates[p.rng.IntN(len(candidates))]
}

// MostRisky returns the highest-severity comment for a world's latest
// layer. Ties keep the first candidate. It reports false when the latest
// layer holds nothing worth commenting on.
func MostRisky(rec world.Record, partners *Partners) (Comment, bool) {
	tag, ok := ThisLayerEvent(rec)
	if !ok {
		return Comment{}, false
	}
	name, _ := event.ParseTag(tag)
	r, ok := rules[name]
	if !ok {
		return Comment{}, false
	}

	s := assess(rec)
	if r.partner && partners != nil {
		s.partner = partners.Pick(s.name)
	}

	best := Comment{WorldID: rec.ID, World: s.name, Event: name, Text: s.render(r.text), Severity: r.base}
	for _, b := range r.bonuses {
		if b.when(s) && r.base+b.extra > best.Severity {
			best.Text = s.render(b.text)
			best.Severity = r.base + b.extra
		}
	}
	return best, true
}

// Explain returns one comment per world that has something to report,
// riskiest first.
func Explain(doc snapshot.Document, partners *Partners) []Comment {
	var out []Comment
	for _, rec := range doc.Worlds {
		if c, ok := MostRisky(rec, partners); ok {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b Comment) int { return cmp.Compare(b.Severity, a.Severity) })
	return out
}

// Describe renders the single riskiest comment of a document under label.
func Describe(label string, doc snapshot.Document, partners *Partners) string {
	var best *Comment
	for _, rec := range doc.Worlds {
		c, ok := MostRisky(rec, partners)
		if ok && (best == nil || c.Severity > best.Severity) {
			best = &c
		}
	}
	if best == nil {
		return fmt.Sprintf("%s: No particularly dangerous events in this file.", label)
	}
	return fmt.Sprintf("%s:\n- %s", label, best.Text)
}

// DescribeFile loads a layer file and describes its riskiest comment.
func DescribeFile(path string, partners *Partners) (string, error) {
	doc, err := snapshot.Load(path)
	if err != nil {
		return "", err
	}
	return Describe(path, doc, partners), nil
}

type situation struct {
	name       string
	partner    string
	kids       bool
	debt       bool
	thinBuffer bool
	lowIncome  bool
	unwell     bool
}

func assess(rec world.Record) situation {
	name := rec.Name
	if name == "" {
		name = "This person"
	}
	return situation{
		name:       name,
		kids:       rec.Children > 0,
		debt:       rec.CurrentLoan > 0,
		thinBuffer: rec.CurrentIncome > 0 && rec.Cash < rec.CurrentIncome*BufferShare,
		lowIncome:  rec.CurrentIncome < LowIncome,
		unwell:     rec.HealthStatus != "" && rec.HealthStatus != world.HealthHealthy,
	}
}

func (s situation) render(text string) string {
	partner := s.partner
	if partner == "" {
		partner = "their partner"
	}
	return strings.NewReplacer("{name}", s.name, "{partner}", partner).Replace(text)
}
