package dispatch

import (
	"encoding/json"
	"net/url"
)

// routeInfoResponse is the JSON shape returned by the route-info endpoint
// (§4.E step 5, consumed by the client router's popstate handler per
// §4.D step 9).
type routeInfoResponse struct {
	Params map[string]any `json:"params"`
	Found  bool           `json:"found"`
}

// serveRouteInfo implements §4.E step 5.
func (d *Dispatcher) serveRouteInfo(rawURL string) *Response {
	u, err := url.Parse(rawURL)
	if err != nil {
		return jsonResponse(400, mustJSON(routeInfoResponse{Params: map[string]any{}, Found: false}))
	}
	pathname := u.Query().Get("pathname")

	entry, found := d.Resolver.ResolvePage(pathname)
	if !found {
		return jsonResponse(200, mustJSON(routeInfoResponse{Params: map[string]any{}, Found: false}))
	}

	params := make(map[string]any, len(entry.Params))
	for name, v := range entry.Params {
		if v.IsMulti {
			params[name] = v.Multi
		} else {
			params[name] = v.Single
		}
	}
	return jsonResponse(200, mustJSON(routeInfoResponse{Params: params, Found: true}))
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"params":{},"found":false}`)
	}
	return data
}
