// Package bedrock provides a runtime-generic dynamic array ("vector") for Go.
//
// A Vector is a contiguous, growable buffer of fixed-size elements whose byte
// size (the stride) is chosen at construction time rather than fixed by a
// static type. It is the foundation container for workloads that move raw,
// homogeneous records around without caring what they mean: wire frames,
// columnar payloads, packed numeric data.
//
// Two surfaces are offered:
//
//   - Vector: the type-erased byte-stride container. Use it when the element
//     size is only known at runtime, or when the same code path must handle
//     different element kinds.
//   - Of[T]: a typed view over a Vector for the common case where the element
//     type is known at compile time. Stride is derived from unsafe.Sizeof.
//
// # Quick Start
//
//	v, err := bedrock.NewOf[uint64](0) // default capacity
//	if err != nil {
//	    panic(err)
//	}
//	defer v.Raw().Release()
//
//	_ = v.Push(42)
//	_ = v.Push(7)
//
//	_ = v.Filter(func(x uint64) (bool, error) {
//	    return x%2 == 0, nil
//	})
//
// # Growth and Pointer Invalidation
//
// When a mutating operation needs more room than the current capacity, the
// buffer grows to max(capacity*GrowFactor, required). Any slice or pointer
// previously returned by At, AtUnchecked, End or Bytes is invalidated by the
// next call that may reallocate or shift elements. This contract is not
// enforced at runtime; callers must scope returned views to end before the
// next mutating call.
//
// # Concurrency
//
// A Vector assumes exclusive single-owner access and performs no internal
// synchronization. Share one across goroutines only behind your own lock.
// The snapshot and blobstore packages, which are shared infrastructure, are
// safe for concurrent use.
//
// # Persistence
//
// The container itself has no persistence format. The snapshot package
// serializes a Vector to a checksummed binary frame (optionally compressed)
// and the blobstore package stores those frames locally or in S3/MinIO.
package bedrock
