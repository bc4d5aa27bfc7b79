package contracts

// Route is the hint attached to an event telling the output path which
// side(s) it should be rendered on. The monitoring path re-tags every
// mirrored copy with the recorder's live route, so the hint carried by
// a captured event only matters until it reaches the recorder.
type Route uint8

const (
	// RouteNone suppresses live rendering of the event.
	RouteNone Route = iota
	// RouteLeft renders the event on the left output only.
	RouteLeft
	// RouteRight renders the event on the right output only.
	RouteRight
	// RouteBoth renders the event on both outputs.
	RouteBoth
)

// String returns the route name used in logs and configuration files.
func (r Route) String() string {
	switch r {
	case RouteLeft:
		return "left"
	case RouteRight:
		return "right"
	case RouteBoth:
		return "both"
	}
	return "none"
}

// ParseRoute maps a configuration string to a Route. Unknown values
// fall back to RouteBoth, the live-monitoring default.
func ParseRoute(s string) Route {
	switch s {
	case "none":
		return RouteNone
	case "left":
		return RouteLeft
	case "right":
		return RouteRight
	}
	return RouteBoth
}
