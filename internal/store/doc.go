// Package store owns the SQLite database lifecycle: opening with the required
// pragmas, schema migrations, the bootstrap admin account, whole-database
// snapshots, and aggregate statistics.
//
// All other components (auth, filestore, formdata, audit) operate through a
// *Store. The audit logger deliberately opens its own Store on the same path
// so that log contention can never block or fail a primary write.
package store
