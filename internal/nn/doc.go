// Package nn is the small modelling library shadow models are built from.
//
// Modules operate on row-major batches held in gonum dense matrices:
// an input of shape [batch, features] goes in, an output of shape
// [batch, out] comes out. Parameters keep their values in flat float64
// slices so that weight-state files can be copied into them in place.
//
//	model := nn.NewSequential(
//	    nn.NewLinear(16, 32, true, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(32, 4, true, rng),
//	)
//	out := model.Forward(x)      // [batch, 4]
//	model.Backward(gradOut)      // accumulates Parameter.Grad
package nn
