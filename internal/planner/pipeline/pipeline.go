// internal/planner/pipeline/pipeline.go
package pipeline

import (
	"time"

	"itinerary-workers/internal/models"
	"itinerary-workers/internal/planner/links"
)

// Stage names reported to the observer.
const (
	StageLinkify   = "linkify"
	StageImages    = "images"
	StageWidgets   = "widgets"
	StageNormalize = "normalize"
	StageValidate  = "validate"
)

// StageObserver receives per-stage timings.
type StageObserver interface {
	ObserveStage(stage string, d time.Duration)
}

type Options struct {
	Factory        *links.Factory
	ImagesDisabled bool
	// Widgets defaults to DefaultWidgets(Factory) when nil.
	Widgets []models.WidgetDescriptor
	// Denylist defaults to DefaultDenylist when empty.
	Denylist []string
	// SkipValidation is set for documents that are trusted by construction.
	SkipValidation bool
}

// Pipeline composes the stages. It holds no per-document state.
type Pipeline struct {
	observer StageObserver
}

func New(observer StageObserver) *Pipeline {
	return &Pipeline{observer: observer}
}

// Process runs every stage in order. A generic-content match returns the transformed
// document together with an error wrapping ErrGenericContent.
func (p *Pipeline) Process(doc string, opts Options) (string, error) {
	factory := opts.Factory
	if factory == nil {
		factory = links.For("")
	}
	widgets := opts.Widgets
	if widgets == nil {
		widgets = DefaultWidgets(factory)
	}

	doc = p.timed(StageLinkify, func() string { return Linkify(doc, factory) })
	doc = p.timed(StageImages, func() string { return ResolveImages(doc, factory, opts.ImagesDisabled) })

	var err error
	doc, err = p.timedErr(StageWidgets, func() (string, error) { return InjectWidgets(doc, widgets) })
	if err != nil {
		return "", err
	}
	doc, err = p.timedErr(StageNormalize, func() (string, error) { return NormalizeLinks(doc, factory) })
	if err != nil {
		return "", err
	}

	if opts.SkipValidation {
		return doc, nil
	}
	start := time.Now()
	err = DetectGeneric(doc, opts.Denylist)
	p.observe(StageValidate, time.Since(start))
	return doc, err
}

func (p *Pipeline) timed(stage string, fn func() string) string {
	start := time.Now()
	out := fn()
	p.observe(stage, time.Since(start))
	return out
}

func (p *Pipeline) timedErr(stage string, fn func() (string, error)) (string, error) {
	start := time.Now()
	out, err := fn()
	p.observe(stage, time.Since(start))
	return out, err
}

func (p *Pipeline) observe(stage string, d time.Duration) {
	if p != nil && p.observer != nil {
		p.observer.ObserveStage(stage, d)
	}
}
