// Package dispatch implements the Request Dispatcher (§4.E): the
// top-level entry point that strips virtual/asset/base prefixes and
// routes a request to a shim module, the route-info endpoint, a
// lazy-loaded ESM module, a static asset, an app-router route handler, a
// legacy API handler, or a page route — in that fixed decision order.
package dispatch
