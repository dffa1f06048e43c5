// Package tensor provides read-only views over the activations and
// parameters of a single network layer.
//
// The package defines the data shared by every stage of the scene build:
//
//   - [Snapshot]: the activation tensor of one layer for one input
//   - [Meta]: the layer kind and its parameter tensors
//   - [Kind]: closed set of layer kinds the extractors dispatch on
//
// Shapes are either rank 2 ([1, N], a flat layer) or rank 4
// ([1, C, H, W], an image layer). Other ranks can be stored but most
// consumers reject them with [ErrUnsupportedShape].
//
// # Thread Safety
//
// Snapshots and metas are never mutated after construction and may be
// shared freely between goroutines.
package tensor
