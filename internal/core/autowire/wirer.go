// Package autowire connects freshly assembled components to each other: for
// each {source, target} pair it finds live components by type name, picks a
// member on the target through a ranked matcher chain and assigns the source
// reference through the property bridge's set path. Wiring is best effort;
// one failed pair never aborts the batch. Callers run Wire on the host loop.
package autowire

import (
	"fmt"
	"strings"

	"github.com/scenewire/scenewire/internal/core/fields"
	"github.com/scenewire/scenewire/internal/core/observability/log"
	"github.com/scenewire/scenewire/internal/core/scene"
)

// Pair names one desired connection. Event optionally names a source event
// that makes the pair wireable at runtime when no member matches.
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Event  string `json:"eventName,omitempty"`
}

type Wired struct {
	Pair       Pair   `json:"pair"`
	Member     string `json:"member,omitempty"`
	Mode       string `json:"mode"`
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
}

type Failure struct {
	Pair   Pair   `json:"pair"`
	Reason string `json:"reason"`
}

type Report struct {
	Wired  []Wired   `json:"wired"`
	Failed []Failure `json:"failed"`
}

func (r Report) AllWired() bool { return len(r.Failed) == 0 }

type Wirer struct {
	scene    *scene.Scene
	registry *fields.Registry
	matchers []Matcher
	log      log.Log
}

func New(sc *scene.Scene, registry *fields.Registry, logger log.Log) *Wirer {
	if logger == nil {
		logger = log.Nop()
	}
	return &Wirer{
		scene:    sc,
		registry: registry,
		matchers: DefaultMatchers(),
		log:      logger.With(log.String("component", "autowire")),
	}
}

// Use replaces the ranked matcher chain.
func (w *Wirer) Use(matchers ...Matcher) {
	w.matchers = matchers
}

// Wire connects every pair. With atomic set, all pairs are validated first
// and nothing is assigned unless every pair can be; the default applies each
// pair independently.
func (w *Wirer) Wire(pairs []Pair, atomic bool) Report {
	report := Report{Wired: []Wired{}, Failed: []Failure{}}
	plans := make([]*plan, 0, len(pairs))
	for _, p := range pairs {
		pl, err := w.plan(p)
		if err != nil {
			report.Failed = append(report.Failed, Failure{Pair: p, Reason: err.Error()})
			continue
		}
		plans = append(plans, pl)
	}

	if atomic && len(report.Failed) > 0 {
		for _, pl := range plans {
			report.Failed = append(report.Failed, Failure{Pair: pl.pair, Reason: "not applied: atomic batch failed"})
		}
		w.log.Warn("atomic wiring aborted",
			log.Int("pairs", len(pairs)),
			log.Int("failed", len(report.Failed)))
		return report
	}

	for _, pl := range plans {
		if err := w.apply(pl); err != nil {
			report.Failed = append(report.Failed, Failure{Pair: pl.pair, Reason: err.Error()})
			continue
		}
		report.Wired = append(report.Wired, Wired{
			Pair:       pl.pair,
			Member:     pl.member,
			Mode:       pl.mode,
			SourcePath: pl.source.Entity().Path(),
			TargetPath: pl.targetPath(),
		})
	}
	w.log.Debug("wiring finished",
		log.Int("wired", len(report.Wired)),
		log.Int("failed", len(report.Failed)))
	return report
}

// plan is one validated pair, ready to apply.
type plan struct {
	pair     Pair
	source   scene.Component
	srcType  fields.ComponentType
	target   scene.Component
	member   string
	mode     string
	value    any
	eventTie bool
}

func (p *plan) targetPath() string {
	if p.target != nil {
		return p.target.Entity().Path()
	}
	return p.source.Entity().Path()
}

func (w *Wirer) plan(pair Pair) (*plan, error) {
	source, srcType, ok := w.findComponent(pair.Source)
	if !ok {
		return nil, fmt.Errorf("source component not found: %s", pair.Source)
	}
	target, tgtType, ok := w.findComponent(pair.Target)
	if !ok {
		return nil, fmt.Errorf("target component not found: %s", pair.Target)
	}

	members := scanOrder(tgtType)
	for _, matcher := range w.matchers {
		for _, m := range members {
			if !matcher.Match(m, srcType) {
				continue
			}
			// a matched member must still be able to hold the source
			if m.Type.Kind == fields.KindComponent && m.Type.To != "" && !srcType.AssignableTo(m.Type.To) {
				continue
			}
			pl := &plan{
				pair: pair, source: source, srcType: srcType,
				target: target, member: m.Name, mode: matcher.Name,
				value: any(source),
			}
			if m.Type.Kind == fields.KindEntity {
				pl.value = source.Entity()
			}
			return pl, nil
		}
	}

	if pair.Event != "" && srcType.HasEvent(pair.Event) {
		return &plan{pair: pair, source: source, srcType: srcType, target: target, mode: "event", eventTie: true}, nil
	}
	return nil, fmt.Errorf("no matching member on %s for %s", tgtType.Name, pair.Source)
}

func (w *Wirer) apply(pl *plan) error {
	if pl.eventTie {
		// runtime subscription is deferred to when the host runs the graph
		return nil
	}
	if err := w.registry.Set(pl.target, pl.member, pl.value); err != nil {
		return fmt.Errorf("assigning %s.%s: %w", pl.target.TypeName(), pl.member, err)
	}
	return nil
}

// findComponent scans the scene depth first for a component whose type name
// equals name, then for one whose type name contains it case-insensitively.
// Scene order breaks ties.
func (w *Wirer) findComponent(name string) (scene.Component, fields.ComponentType, bool) {
	if c, ct, ok := w.scan(func(tn string) bool { return tn == name }); ok {
		return c, ct, true
	}
	lower := strings.ToLower(name)
	return w.scan(func(tn string) bool {
		return strings.Contains(strings.ToLower(tn), lower)
	})
}

func (w *Wirer) scan(match func(typeName string) bool) (scene.Component, fields.ComponentType, bool) {
	var (
		found   scene.Component
		foundCT fields.ComponentType
	)
	w.scene.Walk(func(e *scene.Entity) bool {
		for _, c := range e.Components() {
			if !match(c.TypeName()) {
				continue
			}
			ct, ok := w.registry.Lookup(c.TypeName())
			if !ok {
				continue
			}
			found, foundCT = c, ct
			return false
		}
		return true
	})
	return found, foundCT, found != nil
}
