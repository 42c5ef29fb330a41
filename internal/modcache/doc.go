// Package modcache provides a module registry and a shared export cache with
// support for isolated ("fresh") loads.
//
// Modules are identified by string and produced by a Factory. Packages that
// provide a module register it from init, the same way database drivers
// register with database/sql:
//
//	func init() {
//	    modcache.Register("canvas", func(*modcache.Loader) (any, error) {
//	        return canvas.NewBackend(), nil
//	    })
//	}
//
// A Loader caches the exports of every module it loads through Require. A
// second Require of the same identifier returns the cached value.
// FreshRequire runs the factory again and returns a brand new exports value
// without touching the cached entry, so other callers keep seeing the shared
// instance. Dependencies the factory itself Requires are cached as usual.
//
// # Scoped Bindings
//
// Some plugins expect to find the charting library either in a well-known
// global slot or in the module cache under the library's identifier.
// WithGlobal and WithModule publish a value for the duration of a callback
// and restore the previous state on every exit path, including panics.
// Scopes on one Loader are serialised, so two concurrent scopes never see each
// other's bindings.
//
// # Thread Safety
//
// Registry and Loader are safe for concurrent use.
package modcache
