package pinn

import (
	"fmt"
	"sort"

	"github.com/pinn-ml/pinn/tensor"
)

// Loss computes the composite training loss: for every role, the mean
// squared residual between prediction and target, scaled by that role's
// weight, summed into a single differentiable scalar.
//
// Predictions and targets must carry identical role keys; a mismatch is
// an error and no fallback role is synthesized. A nil weights map (or a
// missing entry) defaults the role's weight to 1.0.
//
// Shape mismatches between a role's prediction and target panic inside
// the tensor arithmetic; they are caller errors, not recovered here.
func Loss(preds, targets map[Role]*tensor.Tensor, weights map[Role]float64) (*tensor.Tensor, error) {
	if err := checkRoles(preds, targets); err != nil {
		return nil, err
	}

	// Deterministic accumulation order.
	roles := make([]Role, 0, len(preds))
	for role := range preds {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	total := tensor.Zeros(tensor.Shape{1, 1})
	for _, role := range roles {
		w := 1.0
		if weights != nil {
			if ww, ok := weights[role]; ok {
				w = ww
			}
		}

		res := preds[role].Sub(targets[role])
		total = total.Add(res.Square().Mean().Scale(w))
	}
	return total, nil
}

// checkRoles verifies that predictions and targets carry the same keys.
func checkRoles(preds, targets map[Role]*tensor.Tensor) error {
	for role := range preds {
		if _, ok := targets[role]; !ok {
			return fmt.Errorf("pinn: role mismatch: %q predicted but has no target", role)
		}
	}
	for role := range targets {
		if _, ok := preds[role]; !ok {
			return fmt.Errorf("pinn: role mismatch: %q has a target but no prediction", role)
		}
	}
	return nil
}
