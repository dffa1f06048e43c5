// Package interaction derives ranked node-to-node interactions between two
// consecutive layers.
//
// Each layer kind has its own policy, selected by a switch in [Extract]:
//
//   - InnerProduct: weight times input, top-K by magnitude
//   - DropOut: surviving activations, summed per node pair
//   - ReLU: activation change for units that fired
//   - LRN: log of the normalization ratio
//   - Softmax: activations rescaled into [0, 1]
//   - Pooling: a dense field, no discrete interactions
//
// Image shaped ReLU and LRN layers also produce a [DenseField] instead of
// a list. Every other kind yields an empty [Result].
package interaction
