package store

import (
	"fmt"
	"math"
	"runtime"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

// VectorBackend names a vector store implementation.
type VectorBackend string

const (
	// VectorBackendFlat is the exact brute-force scan (default).
	VectorBackendFlat VectorBackend = "flat"

	// VectorBackendHNSW is the approximate coder/hnsw graph.
	VectorBackendHNSW VectorBackend = "hnsw"
)

// VectorBackends lists the accepted backend names.
var VectorBackends = []VectorBackend{VectorBackendFlat, VectorBackendHNSW}

// NewVectorStore creates a VectorStore using the specified backend.
// An empty backend selects flat.
func NewVectorStore(backend string, cfg VectorStoreConfig) (VectorStore, error) {
	switch VectorBackend(backend) {
	case VectorBackendFlat, "":
		return NewFlatStore(cfg)
	case VectorBackendHNSW:
		return NewHNSWStore(cfg)
	default:
		return nil, rerrors.Newf(rerrors.ErrCodeConfigInvalid,
			"unknown vector backend: %s (valid options: flat, hnsw)", backend)
	}
}

// acceleratedWorkers resolves the worker count for an accelerated scan.
// Fewer than two usable CPUs means there is nothing to accelerate with.
func acceleratedWorkers(cfg VectorStoreConfig) (int, error) {
	procs := runtime.GOMAXPROCS(0)
	if procs < 2 {
		return 0, rerrors.Newf(rerrors.ErrCodeDeviceUnavailable,
			"accelerated search requested but only %d CPU is available", procs).
			WithSuggestion("Disable use_accelerated_device or raise GOMAXPROCS")
	}
	workers := cfg.Workers
	if workers <= 0 || workers > procs {
		workers = procs
	}
	return workers, nil
}

// dimensionMismatch builds the fatal error for a vector of the wrong length.
func dimensionMismatch(expected, got int) error {
	return rerrors.Newf(rerrors.ErrCodeDimensionMismatch,
		"dimension mismatch: expected %d, got %d", expected, got).
		WithDetail("expected", fmt.Sprint(expected)).
		WithDetail("got", fmt.Sprint(got))
}

// prepareVector copies v, normalizing it when requested.
func prepareVector(v []float32, normalize bool) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	if normalize {
		normalizeVectorInPlace(out)
	}
	return out
}

// normalizeVectorInPlace normalizes a vector to unit length in place.
func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	invMagnitude := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= invMagnitude
	}
}

// squaredL2 returns the squared Euclidean distance between a and b.
func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
