// Package approval holds the chain rules of the sequential approval
// workflow: the error taxonomy and the pure invariants over an ordered set
// of steps. Nothing here touches persistence.
package approval

import (
	"sort"

	"github.com/bamin2/dgc-hr-sub004/internal/domain/entity"
)

// NextQueued returns the queued step with the lowest step number, or nil
// when none remains.
func NextQueued(steps []*entity.ApprovalStep) *entity.ApprovalStep {
	var next *entity.ApprovalStep
	for _, s := range steps {
		if s.Status != entity.StepStatusQueued {
			continue
		}
		if next == nil || s.StepNumber < next.StepNumber {
			next = s
		}
	}
	return next
}

// Active returns the chain's single pending step, or nil for a terminal
// chain.
func Active(steps []*entity.ApprovalStep) *entity.ApprovalStep {
	for _, s := range steps {
		if s.Status == entity.StepStatusPending {
			return s
		}
	}
	return nil
}

// Outcome reports the chain's terminal outcome, or ok=false while the chain
// is still in flight. A chain is terminal when any step is rejected or all
// steps are approved.
func Outcome(steps []*entity.ApprovalStep) (entity.Outcome, bool) {
	if len(steps) == 0 {
		return "", false
	}
	allApproved := true
	for _, s := range steps {
		if s.Status == entity.StepStatusRejected {
			return entity.OutcomeRejected, true
		}
		if s.Status != entity.StepStatusApproved {
			allApproved = false
		}
	}
	if allApproved {
		return entity.OutcomeApproved, true
	}
	return "", false
}

// Validate checks the structural invariants of a chain: contiguous 1-based
// step numbers, at most one pending step, everything below the active step
// approved, and nothing pending after a rejection.
func Validate(steps []*entity.ApprovalStep) bool {
	if len(steps) == 0 {
		return true
	}

	ordered := make([]*entity.ApprovalStep, len(steps))
	copy(ordered, steps)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StepNumber < ordered[j].StepNumber
	})

	pending := 0
	rejected := false
	for i, s := range ordered {
		if s.StepNumber != i+1 {
			return false
		}
		switch s.Status {
		case entity.StepStatusPending:
			pending++
			// every earlier step must already be approved
			for _, prev := range ordered[:i] {
				if prev.Status != entity.StepStatusApproved {
					return false
				}
			}
		case entity.StepStatusRejected:
			rejected = true
		}
		if rejected && s.Status == entity.StepStatusPending {
			return false
		}
	}
	return pending <= 1
}
