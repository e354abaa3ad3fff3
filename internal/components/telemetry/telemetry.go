package telemetry

// API is an abstraction over logging/metrics.
// This allows for assertions and tests for working logging/metrics to exist.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that has broken in a way that should be addressed.
	//
	// The `id` names the component that broke, not the line that broke. A failed HTTP request
	// made by the moderngov client's Get method is reported as `client.get`, details like the
	// url or the status go in the params.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	ReportBroken(id string, params ...any)

	// ReportWarning reports a scenario that does not necessarily indicate brokenness, but may be
	// subject to investigation.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports some debug information that will be ignored in production
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current count of a specific event at the current time, these counts
	// should not be summed but interpreted as points of data over time.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace before passing it on, packages
// wrap the API they are given so their reports can be told apart.
type ScopedAPI struct {
	prefix string
	inner  API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{prefix: namespace + ": ", inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.prefix+id, params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.prefix+id, params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.prefix+msg, params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.prefix+id, count)
}
