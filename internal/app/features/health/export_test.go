package health

import "time"

// SetClock replaces the handler's clock in tests.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }
