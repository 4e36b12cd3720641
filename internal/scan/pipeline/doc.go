// Package pipeline provides the real-time scanning pipeline that
// orchestrates processing stages from raw mesh updates through the
// accepted hypothesis set.
//
// This package is the composition root: it imports from the layer
// packages (mesh, classify, hypothesis), but none of those packages
// import pipeline.
package pipeline
