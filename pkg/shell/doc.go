// Package shell synthesizes the bootstrap HTML document served for every
// page-route request: environment injection, import map, the React Refresh
// preamble, the HMR client, and the mount script that drives client-side
// routing by lazy-importing transformed page and layout modules.
//
// A Synthesizer never touches the VFS or the transformer directly; callers
// (the dispatcher) supply everything it needs through Config and Data so
// the synthesizer stays a pure string-builder.
package shell
