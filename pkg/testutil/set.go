package testutil

// Set sets *p to v and restores the old value when the test is cleaned up.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}
