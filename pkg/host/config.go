package host

// Config is the host server configuration.
type Config struct {
	// Address to listen on (e.g., ":6061")
	ListenAddr string

	// BodyLimit caps the size of an invocation body in bytes.
	// Zero uses fiber's default (4 MiB).
	BodyLimit int
}
