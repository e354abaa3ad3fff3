package assert

// NotNil panics when value is nil, it is meant for constructor preconditions
// where a nil dependency can only be a programming error.
func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}
