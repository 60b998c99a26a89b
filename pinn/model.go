// Package pinn implements the physics-informed training workflow: the
// prediction router over role-keyed point sets, the weighted multi-term
// loss assembler and the optimizer drivers (quasi-Newton and
// first-order).
package pinn

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/pinn-ml/pinn/nn"
	"github.com/pinn-ml/pinn/tensor"
)

// Role names a point-set's part in the composite loss.
type Role string

const (
	// RoleData is direct solution supervision at interior points.
	RoleData Role = "u"
	// RoleDirichlet constrains the solution value on the boundary.
	RoleDirichlet Role = "diri"
	// RoleNeumann constrains du/dx on the boundary.
	RoleNeumann Role = "nuem"
	// RoleResidual enforces the PDE residual at collocation points,
	// with a conventionally zero target.
	RoleResidual Role = "f"
)

// PointSet is a triple of equal-length (n,1) columns: coordinates and
// target values. Coordinates must be gradient-tracked when the set feeds
// a derivative role (Neumann or residual). Point sets are immutable once
// constructed.
type PointSet struct {
	X *tensor.Tensor
	Y *tensor.Tensor
	U *tensor.Tensor
}

// Len returns the number of points.
func (p *PointSet) Len() int {
	return p.X.Shape()[0]
}

// Model couples the network with the training state: the per-iteration
// loss history and the resting predictions/loss after a training run.
type Model struct {
	net *nn.Network

	lossHistory []float64
	preds       map[Role]*tensor.Tensor
	loss        float64
}

// New creates a model with a freshly initialized network for the given
// layer sizes. A nil src uses the global random source.
func New(layers []int, src rand.Source) (*Model, error) {
	net, err := nn.NewNetwork(layers, src)
	if err != nil {
		return nil, err
	}
	return &Model{net: net}, nil
}

// Network returns the underlying network.
func (m *Model) Network() *nn.Network {
	return m.net
}

// LossHistory returns the recorded loss values, one per completed loss
// evaluation, in order. The history is append-only and never truncated
// during a run.
func (m *Model) LossHistory() []float64 {
	return m.lossHistory
}

// Predictions returns the resting prediction bundle stored by the last
// training run, or nil before any training.
func (m *Model) Predictions() map[Role]*tensor.Tensor {
	return m.preds
}

// Loss returns the resting loss stored by the last training run.
func (m *Model) Loss() float64 {
	return m.loss
}

// Forward dispatches each requested role's point set to the matching
// evaluator and assembles the keyed prediction bundle:
//
//	u, diri -> network output
//	nuem    -> du/dx (first component of the first derivatives)
//	f       -> Laplacian residual
//
// When no roles are given, all roles present in sets are evaluated.
// Forward is pure with respect to model state: it reads the current
// parameter values and mutates nothing.
func (m *Model) Forward(sets map[Role]*PointSet, roles ...Role) (map[Role]*tensor.Tensor, error) {
	if len(roles) == 0 {
		roles = sortedRoles(sets)
	}

	preds := make(map[Role]*tensor.Tensor, len(roles))
	for _, role := range roles {
		set, ok := sets[role]
		if !ok {
			return nil, fmt.Errorf("pinn: no point set for role %q", role)
		}

		switch role {
		case RoleData, RoleDirichlet:
			preds[role] = m.net.Evaluate(set.X, set.Y)

		case RoleNeumann:
			ux, _, err := m.net.FirstDerivatives(set.X, set.Y)
			if err != nil {
				return nil, fmt.Errorf("pinn: role %q: %w", role, err)
			}
			preds[role] = ux

		case RoleResidual:
			f, err := m.net.PDEResidual(set.X, set.Y)
			if err != nil {
				return nil, fmt.Errorf("pinn: role %q: %w", role, err)
			}
			preds[role] = f

		default:
			return nil, fmt.Errorf("pinn: unknown role %q", role)
		}
	}
	return preds, nil
}

// sortedRoles returns the roles present in sets in a stable order.
func sortedRoles(sets map[Role]*PointSet) []Role {
	roles := make([]Role, 0, len(sets))
	for role := range sets {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}
