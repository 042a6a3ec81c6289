package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mqttdash/internal/artnet"
	"mqttdash/internal/clientmqtt"
	"mqttdash/internal/config"
	"mqttdash/internal/dashboard"
	"mqttdash/internal/handlers"
	"mqttdash/internal/logger"
	"mqttdash/internal/metrics"
	"mqttdash/internal/server"
)

const (
	messageBuffer   = 64
	shutdownTimeout = 5 * time.Second
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "configs/conf.toml", "Path to configuration file")
}

func main() {
	flag.Parse()
	cfg, err := config.NewConfig(configFile)
	if err != nil {
		fmt.Printf("configuration file read error: %v", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Printf("failed to create a logger: %v", err)
		os.Exit(1)
	}

	log.With(logger.Fields{"module": "logger"}).Debug("newLogger created ok")

	defs := BrokerDefinitions(cfg.Brokers)
	store := dashboard.NewStore(defs, dashboard.Options{
		AnimationSpeed: time.Duration(cfg.Dashboard.AnimationSpeed) * time.Millisecond,
		Loading:        cfg.Dashboard.Loading,
		Empty:          cfg.Dashboard.Empty,
	})
	log.With(logger.Fields{"module": "dashboard"}).Infof("%d subscriptions on %d brokers", store.Len(), len(defs))

	m := metrics.New()
	m.SetSubscriptions(store.Len())

	hub := handlers.NewHub(cfg.Dashboard.Header)
	presenters := []dashboard.Presenter{hub}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	var a *artnet.ArtNet
	if cfg.ArtNet.Enabled {
		a, err = artnet.NewController(log, cfg.ArtNet)
		if err != nil {
			log.With(logger.Fields{"module": "art-net"}).Errorf("error while creating a new controller art-net. %v", err)
			os.Exit(1)
		}
		if err = a.Start(ctx); err != nil {
			log.Error("failed to start art-net service:", err.Error())
			os.Exit(1)
		}
		presenters = append(presenters, a)
		log.With(logger.Fields{"module": "art-net"}).Debug("NewController created ok")
	}

	// Канал для передачи.
	msgCh := make(chan dashboard.Message, messageBuffer)

	pipeline := dashboard.NewPipeline(store, log.With(logger.Fields{"module": "dashboard"}), m, presenters...)
	go pipeline.Run(ctx, msgCh)

	manager := clientmqtt.NewManager(log, cfg.MQTT.ClientID, cfg.MQTT.Qos, msgCh)
	for _, reg := range dashboard.Registrations(uuid.NewString(), defs) {
		if err := manager.AddBroker(ctx, reg); err != nil {
			log.With(logger.Fields{"module": "mqtt"}).Errorf("failed to register broker %s: %v", reg.URL, err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	handler := handlers.NewHandler(store, hub, m.Handler(), log)
	srv := server.New(cfg.HTTP.Listen, handler.InitRoutes())
	go func() {
		log.With(logger.Fields{"module": "http"}).Infof("listening on %s", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Error("http server stopped:", err.Error())
			cancel()
		}
	}()

	<-ctx.Done()

	if err := manager.Stop(); err != nil {
		log.Error("failed to stop MQTT service:", err.Error())
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop http server:", err.Error())
	}

	if a != nil {
		a.Stop()
	}

	log.Info("shutdown complete")
}

// BrokerDefinitions преобразует структуры конфигурации.
func BrokerDefinitions(brokers []config.BrokerConf) []dashboard.BrokerDefinition {
	defs := make([]dashboard.BrokerDefinition, 0, len(brokers))
	for _, b := range brokers {
		def := dashboard.BrokerDefinition{URL: b.URL}
		if b.Port != nil {
			def.Port = *b.Port
		}
		if b.Auth != nil {
			def.Auth = &dashboard.Auth{User: b.Auth.User, Pass: b.Auth.Pass}
		}
		for _, s := range b.Subscriptions {
			def.Subscriptions = append(def.Subscriptions, subscriptionConfig(s))
		}
		defs = append(defs, def)
	}
	return defs
}

func subscriptionConfig(s config.SubscriptionConf) dashboard.SubscriptionConfig {
	out := dashboard.SubscriptionConfig{
		Topic:           s.Topic,
		Label:           s.Label,
		Suffix:          s.Suffix,
		Icon:            s.Icon,
		ShowLabelAsIcon: s.ShowLabelAsIcon,
		Position:        config.DefaultPosition,
		Decimals:        config.DefaultDecimals,
		Factor:          s.Factor.Float(),
		Offset:          s.Offset.Float(),
	}
	if s.Position != nil && *s.Position != 0 {
		out.Position = *s.Position
	}
	if s.Decimals != nil {
		out.Decimals = *s.Decimals
	}
	for _, c := range s.Colors {
		out.Colors = append(out.Colors, dashboard.ColorRule{
			UpTo:   float64(c.UpTo),
			Label:  c.Label,
			Value:  c.Value,
			Suffix: c.Suffix,
		})
	}
	for _, c := range s.Conversion {
		out.Conversion = append(out.Conversion, dashboard.ConversionRule{From: string(c.From), To: string(c.To)})
	}
	if s.DMX != nil {
		out.DMX = &dashboard.DMXAddr{Universe: s.DMX.Universe, Channel: s.DMX.Channel}
	}
	return out
}
