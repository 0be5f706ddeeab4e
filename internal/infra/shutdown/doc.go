// Package shutdown coordinates graceful process termination.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("http server", srv.Shutdown)
//	err := h.Wait(ctx) // SIGINT, SIGTERM or h.Trigger()
package shutdown
