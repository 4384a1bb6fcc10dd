// Package graph defines the core document model for Patchboard: nodes,
// connections, and the immutable revision snapshot they live in.
package graph
