package domain

// RouteLabel is the closed set of intents the classifier may return.
type RouteLabel string

const (
	RouteProduct RouteLabel = "PRODUCT"
	RouteOrder   RouteLabel = "ORDER"
	RouteBilling RouteLabel = "BILLING"
	RouteRefund  RouteLabel = "REFUND"
	RouteUnknown RouteLabel = "UNKNOWN"
)

// ParseRouteLabel maps classifier output onto the closed label set.
// Anything outside the set collapses to RouteUnknown so ambiguity is
// resolved by asking the user, never by guessing.
func ParseRouteLabel(s string) RouteLabel {
	switch RouteLabel(s) {
	case RouteProduct, RouteOrder, RouteBilling, RouteRefund:
		return RouteLabel(s)
	default:
		return RouteUnknown
	}
}
