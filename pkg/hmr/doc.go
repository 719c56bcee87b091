// Package hmr implements the HMR Notifier (§4.F): it watches the
// pages-routed, app-routed, and public-assets VFS trees and classifies
// every change into an update-or-full-reload event, fanned out over an
// in-process emitter and a gorilla/websocket postMessage-shaped channel.
package hmr
