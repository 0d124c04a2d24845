package arena

// Conn is a client connection attached to a session. Implementations must not block in
// Send and must not invoke handlers synchronously from Send or Close.
type Conn interface {
	// Send queues msg for delivery and reports whether it was accepted. A rejected send
	// means the connection is going away and OnClose will follow.
	Send(msg []byte) bool
	Close()
	Bind(h Handlers)
}

type Handlers struct {
	OnMessage func(raw []byte)
	OnClose   func()
}
