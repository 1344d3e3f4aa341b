package interfaces

// ConnState is the lifecycle state of the shared stream connection.
// Consumers only ever observe this state; transport failures are never
// surfaced to them as errors.
type ConnState string

const (
	ConnStateDisconnected ConnState = "disconnected"
	ConnStateConnecting   ConnState = "connecting"
	ConnStateConnected    ConnState = "connected"
	ConnStateReconnecting ConnState = "reconnecting"
)

func (s ConnState) String() string {
	return string(s)
}

// Live reports whether pushed data can currently arrive. During any other
// state the UI should treat snapshots as possibly stale, not as errors.
func (s ConnState) Live() bool {
	return s == ConnStateConnected
}
