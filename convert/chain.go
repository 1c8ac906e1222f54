package convert

import (
	"context"
	"fmt"
	"os"
)

// runChain executes a strategy's techniques in priority order. The first
// technique whose artifact validates wins; every other outcome — error,
// malformed result, missing/empty artifact, timeout, missing capability — is
// recorded as an attempt failure and the chain advances.
//
// A technique declared on a capability the probe did not find is counted as
// an immediate "unavailable" failure, so exhaustion errors always enumerate
// the full declared chain.
func (e *Engine) runChain(ctx context.Context, strat *Strategy, job *Job) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ChainTimeout)
	defer cancel()

	attempts := make([]AttemptFailure, 0, len(strat.Techniques))

	for _, tech := range strat.Techniques {
		if cap, ok := e.missingCapability(tech); ok {
			attempts = append(attempts, AttemptFailure{
				Technique: tech.Name,
				Reason:    fmt.Sprintf("unavailable: requires %s", cap),
			})
			continue
		}

		// The caller gave up (or the chain deadline passed): stop trying,
		// report what we have.
		if ctx.Err() != nil {
			attempts = append(attempts, AttemptFailure{
				Technique: tech.Name,
				Reason:    "not attempted: " + ctx.Err().Error(),
			})
			continue
		}

		// A failed prior attempt may have left a stale or partial file at
		// the target path; clear it so this attempt starts clean.
		clearStaleTarget(job.OutputPath)

		e.logger.Debug("attempting technique",
			"job_id", job.ID, "strategy", strat.Name, "technique", tech.Name)

		raw, err := tech.Run(ctx, job)
		if err != nil {
			e.logger.Warn("technique failed",
				"job_id", job.ID, "strategy", strat.Name,
				"technique", tech.Name, "error", err)
			attempts = append(attempts, AttemptFailure{Technique: tech.Name, Reason: err.Error()})
			continue
		}

		path, err := NormalizeResult(raw)
		if err != nil {
			// Malformed shape or invalid artifact: this technique's failure,
			// not the job's.
			e.logger.Warn("technique result rejected",
				"job_id", job.ID, "technique", tech.Name, "error", err)
			attempts = append(attempts, AttemptFailure{Technique: tech.Name, Reason: err.Error()})
			continue
		}

		return &Result{
			OutputPath:    path,
			TechniqueUsed: tech.Name,
			Warnings:      resultWarnings(raw),
		}, nil
	}

	e.logger.Error("all techniques exhausted",
		"job_id", job.ID, "strategy", strat.Name, "attempts", len(attempts))
	return nil, &AllTechniquesFailedError{Strategy: strat.Name, Attempts: attempts}
}

func (e *Engine) missingCapability(tech Technique) (Capability, bool) {
	for _, cap := range tech.Needs {
		if !e.caps.Has(cap) {
			return cap, true
		}
	}
	return "", false
}

// clearStaleTarget removes an empty leftover at the target path. Non-empty
// files are left alone: a concurrent job never shares an output path, so a
// non-empty file here is a prior technique's partial work about to be
// overwritten by the next attempt anyway.
func clearStaleTarget(path string) {
	info, err := os.Stat(path)
	if err == nil && info.Size() == 0 {
		_ = os.Remove(path)
	}
}
