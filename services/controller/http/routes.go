package http

import (
	"net/http"
	"strings"

	"github.com/02loveslollipop/climate-controller/services/controller/climate"
)

// Body selects how a snapshot is serialized.
type Body int

const (
	BodyHTML Body = iota
	BodyJSON
)

// Route is one entry of the request table.
type Route struct {
	Path     string
	Override climate.Override
	Body     Body
}

// Routes lists every recognized GET target. Anything else gets DefaultRoute.
var Routes = []Route{
	{Path: "/data", Override: climate.None, Body: BodyJSON},
	{Path: "/fanOn", Override: climate.FanOn, Body: BodyHTML},
	{Path: "/fanOff", Override: climate.FanOff, Body: BodyHTML},
	{Path: "/lampOn", Override: climate.LampOn, Body: BodyHTML},
	{Path: "/lampOff", Override: climate.LampOff, Body: BodyHTML},
}

// DefaultRoute serves the status page without touching the actuators.
var DefaultRoute = Route{Path: "/", Override: climate.None, Body: BodyHTML}

// Classify maps a raw request line ("GET /data HTTP/1.1") to its route.
// Malformed lines and non-GET methods fall through to DefaultRoute.
func Classify(requestLine string) Route {
	fields := strings.Fields(requestLine)
	if len(fields) < 2 || fields[0] != http.MethodGet {
		return DefaultRoute
	}
	return Lookup(fields[1])
}

// Lookup finds the route for a request target. The query string is ignored.
func Lookup(target string) Route {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	for _, route := range Routes {
		if route.Path == target {
			return route
		}
	}
	return DefaultRoute
}
