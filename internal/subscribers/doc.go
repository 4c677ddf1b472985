// Package subscribers persists the set of broadcast recipients.
//
// Three interchangeable backends sit behind the Store interface:
//
//   - redis:  a shared Redis set, safe for multiple processes
//   - file:   a JSON list in one local file, single-process use
//   - sqlite: a SQLite table, single host
//
// The backend is selected once at startup via Open; every other component
// depends only on Store and is agnostic to the driver in use.
package subscribers
