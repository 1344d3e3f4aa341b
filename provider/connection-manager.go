package provider

import (
	"github.com/rupeex/go-rupeex-client/config"
	"github.com/rupeex/go-rupeex-client/provider/rupeex"
)

// ConnectionManager wires the single stream connection, the pull channel and
// the authenticator for the whole application session. Domain stores share
// these; none of them may close or reconfigure the connection.
type ConnectionManager struct {
	StreamClient  *rupeex.StreamClient
	SyncAPI       *rupeex.SyncAPI
	StreamAPI     *rupeex.StreamAPI
	Authenticator *rupeex.Authenticator
}

func NewConnectionManager(conf *config.Config) *ConnectionManager {
	streamClient := rupeex.NewStreamClient(conf.StreamEndpoint)

	return &ConnectionManager{
		StreamClient:  streamClient,
		SyncAPI:       rupeex.NewSyncAPI(conf.RestEndpoint, conf.HTTPTimeout),
		StreamAPI:     rupeex.NewStreamAPI(streamClient),
		Authenticator: rupeex.NewAuthenticator(streamClient),
	}
}

func (cm *ConnectionManager) Init() error {
	return cm.StreamClient.Connect()
}

func (cm *ConnectionManager) Close() {
	cm.Authenticator.Stop()
	cm.StreamClient.Close()
}
