package manifest

// HandlerType enumerates the supported handler kinds.
type HandlerType string

const (
	// HandlerInproc routes to a handler registered with core.Register.
	HandlerInproc HandlerType = "inproc"
)

// Handler names served by the registry.
const (
	HandlerDNSHandle = "dns.handle"
	HandlerDNSState  = "dns.state"
)
