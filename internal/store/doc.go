// Package store provides secure persistence for the wallet link.
//
// Three SecureStore backends hold opaque items: FileSecureStore (one sealed
// file per item), SQLiteSecureStore (one sealed row per item) and
// MemoryStore (process lifetime only). File and SQLite items are sealed with
// ChaCha20-Poly1305 under a scrypt-derived key. All methods are
// concurrency-safe via internal locking.
//
// On top of any backend:
//   - IdentityStore keeps the dapp key pair under IdentityStorageKey
//   - SessionStore keeps the session record under SessionStorageKey
package store
