// Package importer turns a pasted syllabus or an uploaded image/PDF into
// study tasks by asking an AI extractor for candidate records and
// normalizing whatever comes back.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sadopc/cramr/internal/study"
)

var (
	ErrEmptyInput     = errors.New("nothing to import")
	ErrNotConfigured  = errors.New("AI extractor is not configured")
	ErrParse          = errors.New("could not process the study plan")
	ErrNoTasks        = errors.New("no tasks found in the study plan")
	ErrImportInFlight = errors.New("an import is already running")
)

// Input is the user's raw plan: either text or file bytes, never both.
type Input struct {
	Text     string
	Data     []byte
	MIMEType string
}

// Empty reports whether there is nothing to send upstream.
func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && len(in.Data) == 0
}

// IsFile reports whether the input carries file bytes.
func (in Input) IsFile() bool {
	return len(in.Data) > 0
}

// Request is what an Extractor receives: the input and the planning
// constraints to generate against.
type Request struct {
	Input    Input
	Settings study.Settings
	Now      time.Time
}

// Extractor asks an upstream model for candidate task records.
// Implementations return ErrNotConfigured when credentials are missing or
// rejected; any other error is treated as a processing failure.
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]RawTask, error)
}

// Motivator produces a short encouraging message for the dashboard.
type Motivator interface {
	Motivate(ctx context.Context, completed, total int) (string, error)
}

// FallbackMotivation is shown when no Motivator is available or it fails.
const FallbackMotivation = "Keep pushing! Your hard work is paving the way to success."

// Pipeline runs one import at a time through an Extractor.
type Pipeline struct {
	extractor Extractor
	running   atomic.Bool
}

func NewPipeline(e Extractor) *Pipeline {
	return &Pipeline{extractor: e}
}

// Running reports whether an import is in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Import extracts and normalizes tasks from in. It either returns at least
// one task or an error; there is no partial success.
func (p *Pipeline) Import(ctx context.Context, in Input, cfg study.Settings, now time.Time) ([]study.Task, error) {
	if in.Empty() {
		return nil, ErrEmptyInput
	}
	if p.extractor == nil {
		return nil, ErrNotConfigured
	}
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrImportInFlight
	}
	defer p.running.Store(false)

	start := time.Now()
	raw, err := p.extractor.Extract(ctx, Request{Input: in, Settings: cfg, Now: now})
	if err != nil {
		log.Printf("[importer] extract failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		if errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		if errors.Is(err, ErrParse) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	tasks := make([]study.Task, 0, len(raw))
	for _, r := range raw {
		tasks = append(tasks, Normalize(r, cfg, now))
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}
	log.Printf("[importer] extracted %d tasks in %s", len(tasks), time.Since(start).Round(time.Millisecond))
	return tasks, nil
}
