package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rupeex/go-rupeex-client/config"
	promclient "github.com/rupeex/go-rupeex-client/infrastructure/prometheus"
	"github.com/rupeex/go-rupeex-client/logger"
	"github.com/rupeex/go-rupeex-client/provider"
	"github.com/rupeex/go-rupeex-client/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file")
	flag.Parse()

	log := logger.GetLogger()

	conf, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if err := log.Configure(conf.LogLevel, conf.LogFile, conf.LogMaxSizeMB); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	go promclient.StartPromClientServer(conf.MetricsAddr)

	cm := provider.NewConnectionManager(conf)
	if err := cm.Init(); err != nil {
		log.WithError(err).Fatal("failed to start the stream connection")
	}

	ctx := context.Background()

	session := usecase.NewSession(cm, conf)
	if err := session.Start(ctx); err != nil {
		log.WithError(err).Warn("initial market-rates pull failed, will refetch on reconnect")
	}

	if conf.CredentialToken != "" {
		if err := session.Login(ctx, conf.CredentialToken); err != nil {
			log.WithError(err).Warn("login failed, continuing with public data only")
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	session.Stop()
	cm.Close()
}
