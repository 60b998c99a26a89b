package pinn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/pinn-ml/pinn/autodiff"
	"github.com/pinn-ml/pinn/nn"
	"github.com/pinn-ml/pinn/optim"
	"github.com/pinn-ml/pinn/tensor"
)

// Training evaluates the loss over the boundary and collocation roles
// only; direct data (RoleData) is held out of the optimization the same
// way the reference workflow holds it out for validation.
var trainRoleOrder = []Role{RoleDirichlet, RoleNeumann, RoleResidual}

// LBFGSConfig configures the quasi-Newton training path.
type LBFGSConfig struct {
	MaxIterations  int     // Outer iteration budget (default: 300)
	MaxEvaluations int     // Loss evaluation budget (default: unlimited)
	GradTolerance  float64 // Gradient-norm convergence tolerance (default: 1e-5)
	LossTolerance  float64 // Loss-change convergence tolerance (default: 1e-7)
	HistorySize    int     // Curvature pairs kept by L-BFGS (default: 10)

	Weights map[Role]float64 // Per-role loss weights (default: all 1.0)
}

func (c *LBFGSConfig) setDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 300
	}
	if c.GradTolerance == 0 {
		c.GradTolerance = 1e-5
	}
	if c.LossTolerance == 0 {
		c.LossTolerance = 1e-7
	}
	if c.HistorySize == 0 {
		c.HistorySize = 10
	}
}

// TrainLBFGS trains the model with a limited-memory BFGS optimizer.
//
// The optimizer is handed a re-evaluation closure and invokes it an
// internally determined number of times per step (line search included).
// Each invocation follows the same discipline as the first-order path:
// clear parameter gradients, route the training roles through the
// network, assemble the loss, record it in the history (printing every
// 100th entry), then compute all parameter gradients with a single
// differentiation call and attach them positionally.
//
// Training stops when either tolerance is met or the budget is
// exhausted. Afterwards the parameters take the solution point and one
// final forward pass is stored as the model's resting prediction and
// loss state.
func (m *Model) TrainLBFGS(sets map[Role]*PointSet, cfg LBFGSConfig) error {
	cfg.setDefaults()

	roles, targets, err := trainingData(sets)
	if err != nil {
		return err
	}

	params := m.net.Parameters()
	x0 := flattenParams(params)

	// Validate the whole pipeline once so the closure below cannot fail:
	// gonum's Func/Grad callbacks have no error path.
	if preds, err := m.Forward(sets, roles...); err != nil {
		return err
	} else if _, err := Loss(preds, targets, cfg.Weights); err != nil {
		return err
	}

	// Shared closure with a last-point cache: gonum requests Func and
	// Grad separately at the same location, but the loss and all
	// gradients come out of one evaluation.
	var (
		lastX    []float64
		lastLoss float64
		lastGrad []float64
	)
	evaluate := func(x []float64) (float64, []float64) {
		if lastX != nil && floats.Equal(lastX, x) {
			return lastLoss, lastGrad
		}
		setParams(params, x)
		loss, grad, err := m.closure(sets, roles, targets, cfg.Weights, params)
		if err != nil {
			// Ruled out by the validation pass above.
			panic(fmt.Sprintf("pinn: loss evaluation failed mid-optimization: %v", err))
		}
		lastX = append(lastX[:0], x...)
		lastLoss, lastGrad = loss, grad
		return loss, grad
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			loss, _ := evaluate(x)
			return loss
		},
		Grad: func(grad, x []float64) {
			_, g := evaluate(x)
			copy(grad, g)
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: cfg.GradTolerance,
		MajorIterations:   cfg.MaxIterations,
		FuncEvaluations:   cfg.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.LossTolerance,
			Iterations: 10,
		},
	}
	method := &optimize.LBFGS{Store: cfg.HistorySize}

	result, optErr := optimize.Minimize(problem, x0, settings, method)
	if result != nil {
		setParams(params, result.X)
	}

	if err := m.storeRestingState(sets, roles, targets, cfg.Weights); err != nil {
		return err
	}
	if optErr != nil {
		return fmt.Errorf("pinn: L-BFGS: %w", optErr)
	}
	return nil
}

// Train runs the first-order fallback path: exactly epochs iterations,
// each one loss evaluation (same closure discipline as TrainLBFGS)
// followed by a single optimizer step. There is no early stopping.
func (m *Model) Train(epochs int, sets map[Role]*PointSet, weights map[Role]float64, opt optim.Optimizer) error {
	roles, targets, err := trainingData(sets)
	if err != nil {
		return err
	}
	params := m.net.Parameters()

	for i := 0; i < epochs; i++ {
		opt.ZeroGrad()
		if _, _, err := m.closure(sets, roles, targets, weights, params); err != nil {
			return err
		}
		opt.Step()
	}

	return m.storeRestingState(sets, roles, targets, weights)
}

// closure performs one full loss evaluation: zero gradients, forward
// over the training roles, assemble the loss, append it to the history
// (logging every 100th entry), then one differentiation call against
// the flat parameter list with positional attachment.
//
// A single explicit Grad call is used instead of a whole-graph backward
// traversal: the residual branch has already consumed the graph twice
// for second derivatives, and this keeps the parameter sweep joint over
// all loss terms.
func (m *Model) closure(sets map[Role]*PointSet, roles []Role, targets map[Role]*tensor.Tensor, weights map[Role]float64, params []*nn.Parameter) (float64, []float64, error) {
	for _, p := range params {
		p.ZeroGrad()
	}

	preds, err := m.Forward(sets, roles...)
	if err != nil {
		return 0, nil, err
	}
	lossT, err := Loss(preds, targets, weights)
	if err != nil {
		return 0, nil, err
	}
	loss := lossT.Item()

	m.lossHistory = append(m.lossHistory, loss)
	if n := len(m.lossHistory); n%100 == 0 {
		fmt.Printf("iter %d: loss %.6e\n", n, loss)
	}

	paramTensors := make([]*tensor.Tensor, len(params))
	for i, p := range params {
		paramTensors[i] = p.Tensor()
	}
	grads, err := autodiff.Grad(lossT, paramTensors, false)
	if err != nil {
		return 0, nil, err
	}
	for i, p := range params {
		p.SetGrad(grads[i])
	}

	return loss, flattenGrads(grads), nil
}

// storeRestingState runs a final forward pass and loss computation and
// stores them as the model's post-training state.
func (m *Model) storeRestingState(sets map[Role]*PointSet, roles []Role, targets map[Role]*tensor.Tensor, weights map[Role]float64) error {
	preds, err := m.Forward(sets, roles...)
	if err != nil {
		return err
	}
	lossT, err := Loss(preds, targets, weights)
	if err != nil {
		return err
	}
	m.preds = preds
	m.loss = lossT.Item()
	return nil
}

// trainingData selects the training roles present in sets (Dirichlet,
// Neumann, residual — in that order) and collects their targets.
func trainingData(sets map[Role]*PointSet) ([]Role, map[Role]*tensor.Tensor, error) {
	var roles []Role
	targets := make(map[Role]*tensor.Tensor)
	for _, role := range trainRoleOrder {
		set, ok := sets[role]
		if !ok {
			continue
		}
		roles = append(roles, role)
		targets[role] = set.U
	}
	if len(roles) == 0 {
		return nil, nil, fmt.Errorf("pinn: no trainable point sets (need at least one of %v)", trainRoleOrder)
	}
	return roles, targets, nil
}

// flattenParams packs all parameter values into one vector, in parameter
// order. This vector is the quasi-Newton optimizer's variable set.
func flattenParams(params []*nn.Parameter) []float64 {
	n := 0
	for _, p := range params {
		n += p.Tensor().NumElements()
	}
	x := make([]float64, 0, n)
	for _, p := range params {
		x = append(x, p.Tensor().Data()...)
	}
	return x
}

// flattenGrads packs per-parameter gradients into one vector aligned
// with flattenParams.
func flattenGrads(grads []*tensor.Tensor) []float64 {
	n := 0
	for _, g := range grads {
		n += g.NumElements()
	}
	x := make([]float64, 0, n)
	for _, g := range grads {
		x = append(x, g.Data()...)
	}
	return x
}

// setParams writes a flat vector back into the parameter tensors.
func setParams(params []*nn.Parameter, x []float64) {
	offset := 0
	for _, p := range params {
		data := p.Tensor().Data()
		copy(data, x[offset:offset+len(data)])
		offset += len(data)
	}
}
