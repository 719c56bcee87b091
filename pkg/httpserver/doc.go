// Package httpserver is the HTTP front door: it exposes a Dispatcher over
// real net/http using chi for routing, translates inbound/outbound bodies
// between http.Request/ResponseWriter and the dispatcher's Request/
// Response/StreamCallbacks shapes, and upgrades the HMR channel to a
// websocket.
package httpserver
