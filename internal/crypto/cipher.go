// Package crypto implements the per-client and per-ship stream ciphers used
// by the wire protocol: RC4 for DC/GC clients and the shipgate link, and a
// PSO "PC" rolling keystream cipher for PC clients (spec.md §4.1).
//
// Every session owns two independent cipher states, one per direction.
// Mixing them, or sharing one state across directions, silently corrupts the
// stream after the first odd-length packet (spec.md §9).
package crypto

// Stream is a symmetric, stateful stream cipher that encrypts or decrypts a
// byte slice in place. Each call advances the cipher's internal state, so
// the same Stream must never be used concurrently from more than one
// goroutine.
type Stream interface {
	// XORKeyStream encrypts or decrypts data in place (the two operations
	// are identical for a stream cipher).
	XORKeyStream(data []byte)
}
