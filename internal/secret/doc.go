// Package secret provides a wiped-on-close buffer for key material that only
// needs to live for the duration of a single seal or unseal call.
//
// On Linux a [Buffer] is allocated outside the Go heap via
// mmap(MAP_ANONYMOUS), locked into RAM with mlock and excluded from core
// dumps. When the kernel refuses (RLIMIT_MEMLOCK exhausted, seccomp), the
// buffer falls back to heap memory; [Buffer.Locked] reports which one was
// used. In both cases Close zeroes the contents before releasing them.
//
// After Close, any access panics. Close is idempotent.
package secret
