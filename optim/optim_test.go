package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinn-ml/pinn/autodiff"
	"github.com/pinn-ml/pinn/nn"
	"github.com/pinn-ml/pinn/optim"
	"github.com/pinn-ml/pinn/tensor"
)

// quadStep runs one gradient evaluation of (w - 3)² and attaches the
// gradient to the parameter, mirroring the training loop's discipline.
func quadStep(t *testing.T, p *nn.Parameter) float64 {
	t.Helper()

	w := p.Tensor()
	loss := w.Sub(tensor.Scalar(3)).Square().Sum()
	grads, err := autodiff.Grad(loss, []*tensor.Tensor{w}, false)
	require.NoError(t, err)
	p.SetGrad(grads[0])
	return loss.Item()
}

func TestSGDMinimizesQuadratic(t *testing.T) {
	p := nn.NewParameter("w", tensor.Scalar(0))
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	for i := 0; i < 100; i++ {
		opt.ZeroGrad()
		quadStep(t, p)
		opt.Step()
	}

	assert.InDelta(t, 3, p.Tensor().Item(), 1e-6, "minimum of (w-3)²")
}

func TestSGDMomentumMinimizesQuadratic(t *testing.T) {
	p := nn.NewParameter("w", tensor.Scalar(0))
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.05, Momentum: 0.9})

	for i := 0; i < 300; i++ {
		opt.ZeroGrad()
		quadStep(t, p)
		opt.Step()
	}

	assert.InDelta(t, 3, p.Tensor().Item(), 1e-4)
}

func TestSGDSingleStep(t *testing.T) {
	// w = 1, loss = (w-3)², dloss/dw = 2(w-3) = -4. One step with
	// lr = 0.1 moves w to 1.4.
	p := nn.NewParameter("w", tensor.Scalar(1))
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{LR: 0.1})

	quadStep(t, p)
	opt.Step()
	assert.InDelta(t, 1.4, p.Tensor().Item(), 1e-12)
}

func TestAdamMinimizesQuadratic(t *testing.T) {
	p := nn.NewParameter("w", tensor.Scalar(0))
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.1})

	losses := make([]float64, 0, 200)
	for i := 0; i < 200; i++ {
		opt.ZeroGrad()
		losses = append(losses, quadStep(t, p))
		opt.Step()
	}

	assert.InDelta(t, 3, p.Tensor().Item(), 1e-2)
	assert.Less(t, losses[len(losses)-1], losses[0])
}

func TestAdamFirstStepMagnitude(t *testing.T) {
	// With bias correction the very first Adam step has magnitude close
	// to the learning rate, independent of the gradient scale.
	p := nn.NewParameter("w", tensor.Scalar(100))
	opt := optim.NewAdam([]*nn.Parameter{p}, optim.AdamConfig{LR: 0.001})

	quadStep(t, p)
	opt.Step()
	assert.InDelta(t, 0.001, math.Abs(100-p.Tensor().Item()), 1e-6)
}

func TestZeroGradClearsAttachedGradients(t *testing.T) {
	p := nn.NewParameter("w", tensor.Scalar(1))
	opt := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{})

	quadStep(t, p)
	require.NotNil(t, p.Grad())

	opt.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestStepSkipsParametersWithoutGradient(t *testing.T) {
	active := nn.NewParameter("a", tensor.Scalar(1))
	idle := nn.NewParameter("b", tensor.Scalar(5))
	opt := optim.NewAdam([]*nn.Parameter{active, idle}, optim.AdamConfig{LR: 0.1})

	quadStep(t, active)
	opt.Step()

	assert.NotEqual(t, 1.0, active.Tensor().Item(), "gradient-bearing parameter moves")
	assert.Equal(t, 5.0, idle.Tensor().Item(), "parameter without gradient stays put")
}

func TestLearningRateAccessors(t *testing.T) {
	sgd := optim.NewSGD(nil, optim.SGDConfig{})
	assert.Equal(t, 0.01, sgd.GetLR(), "SGD default learning rate")
	sgd.SetLR(0.5)
	assert.Equal(t, 0.5, sgd.GetLR())

	adam := optim.NewAdam(nil, optim.AdamConfig{})
	assert.Equal(t, 0.001, adam.GetLR(), "Adam default learning rate")
}
