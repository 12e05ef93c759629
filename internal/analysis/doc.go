// Package analysis post-processes stored sampling runs: per-mover
// acceptance statistics, path-length distributions, interface crossing
// probabilities, and committor estimates from shooting-point data.
package analysis
