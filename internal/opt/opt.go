// Package opt wires the optimization passes into a pipeline and drives
// them over many methods in parallel.
package opt

import (
	"sync"

	"github.com/tliron/commonlog"

	"dexopt/internal/cfg"
	"dexopt/internal/copyprop"
	"dexopt/internal/cse"
	"dexopt/internal/ir"
	"dexopt/internal/localdce"
	"dexopt/internal/typeinf"
)

var log = commonlog.GetLogger("opt")

// Pass is a single transformation over one method.
type Pass interface {
	Name() string
	Run(m *cfg.Method) bool // reports whether the method changed
}

// Pipeline runs passes in order.
type Pipeline struct {
	passes []Pass
}

func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

func (p *Pipeline) Add(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run applies every pass to the method and reports whether any changed it.
func (p *Pipeline) Run(m *cfg.Method) bool {
	changed := false
	for _, pass := range p.passes {
		if pass.Run(m) {
			log.Debugf("%s: %s changed the method", m.Name, pass.Name())
			changed = true
		}
	}
	return changed
}

// CSEPass adapts the CSE planner/patcher to the Pass interface, running
// the cleanup passes on methods it changed, the way the original pipeline
// finalizes a forwarding.
type CSEPass struct {
	Resolver ir.FieldResolver
	Cleanup  bool

	mu    sync.Mutex
	stats cse.Stats
}

func NewCSEPass(resolver ir.FieldResolver, cleanup bool) *CSEPass {
	return &CSEPass{Resolver: resolver, Cleanup: cleanup}
}

func (p *CSEPass) Name() string { return "common-subexpression-elimination" }

func (p *CSEPass) Run(m *cfg.Method) bool {
	elim := cse.New(m.Graph, p.Resolver)
	changed := elim.Patch(typeinf.NewOracle())
	if changed && p.Cleanup {
		copyprop.Pass{}.Run(m)
		localdce.Pass{}.Run(m)
	}
	p.mu.Lock()
	p.stats.Add(elim.Stats())
	p.mu.Unlock()
	return changed
}

// Stats returns the accumulated statistics across every method this pass
// instance has processed.
func (p *CSEPass) Stats() cse.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// RunParallel fans methods out over a bounded worker pool, runs the CSE
// pipeline on each, and reduces the statistics. Each method is analyzed
// by exactly one worker; the passes share no per-method state, so the
// reduction is the only synchronization point.
func RunParallel(methods []*cfg.Method, resolver ir.FieldResolver, workers int, cleanup bool) cse.Stats {
	if workers < 1 {
		workers = 1
	}
	pass := NewCSEPass(resolver, cleanup)

	work := make(chan *cfg.Method)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range work {
				pass.Run(m)
			}
		}()
	}
	for _, m := range methods {
		work <- m
	}
	close(work)
	wg.Wait()

	stats := pass.Stats()
	log.Infof("%s=%d %s=%d",
		cse.MetricResultsCaptured, stats.ResultsCaptured,
		cse.MetricEliminatedInstructions, stats.InstructionsEliminated)
	return stats
}
