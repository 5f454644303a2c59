// Package keystore defines the key management capability the sealing core
// depends on, and ships a software implementation of it.
//
// [KeyStore] is the contract: it generates, stores and deletes RSA key pairs
// and named AES keys, stores opaque named byte blobs ("passwords"), and
// performs the raw RSA-OAEP and AES-CBC operations. Hardware-backed or
// platform key stores can implement it directly.
//
// [Software] implements KeyStore in-process on top of a [Backend], which only
// has to persist named byte values. Three backends are available:
//
//   - [MemoryBackend]: process-local maps, the default.
//   - badgerstore: an embedded badger database, optionally encrypted at rest.
//   - sqlstore: any database reachable through gorm.
//
// Lookups of absent items return nil (or false) without an error. Errors are
// reserved for storage or cryptographic failures.
package keystore
