package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/MinhQuan1102/news-website/pkg/api"
	"github.com/MinhQuan1102/news-website/pkg/auth"
	"github.com/MinhQuan1102/news-website/pkg/storage"
	"github.com/MinhQuan1102/news-website/pkg/storage/memdb"
	"github.com/MinhQuan1102/news-website/pkg/storage/mongo"
)

type Config struct {
	ServiceName string `toml:"serviceName"`

	HTTPAddr   string `toml:"httpAddr"`
	LogLevel   string `toml:"logLevel"`
	KafkaAddr  string `toml:"kafkaAddr"`
	KafkaTopic string `toml:"kafkaTopic"`
	KafkaBatch int    `toml:"kafkaBatch"`
}

func main() {
	var (
		configPath string
		httpAddr   string
		logLevel   string
		kafkaAddr  string
		kafkaTopic string
		dev        bool
	)

	flag.StringVar(&configPath, "config", "cmd/server/config.toml", "Path to TOML config file")
	flag.StringVar(&httpAddr, "http", "", "HTTP server address in the form 'host:port'.")
	flag.StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error.")
	flag.StringVar(&kafkaAddr, "kafka", "", "Kafka server address in the form 'host:port'.")
	flag.StringVar(&kafkaTopic, "topic", "", "Kafka topic.")
	flag.BoolVar(&dev, "dev", false, "Run the server in development mode with in-memory DB.")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("[server] no .env file loaded: %v", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		log.Fatalf("[server] failed to load config file %s: %v", configPath, err)
	}

	// Override config with flags if set
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if kafkaAddr != "" {
		cfg.KafkaAddr = kafkaAddr
	}
	if kafkaTopic != "" {
		cfg.KafkaTopic = kafkaTopic
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8090"
	}

	if !strings.Contains(cfg.HTTPAddr, ":") {
		log.Warn("[server] use ':' before port number, e.g. ':8080'")
	}

	switch cfg.LogLevel {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("[server] JWT_SECRET not set")
	}

	var sdb storage.Storage

	switch dev {
	case false:
		conf, err := mongo.NewConfig()
		if err != nil {
			log.Fatalf("[server] invalid mongo config: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		db, err := mongo.New(ctx, conf)
		if err != nil {
			log.Fatalf("[server] failed to initialize storage instance, DB connection not established: %v", err)
		}
		if err := db.Ping(ctx); err != nil {
			log.Fatalf("[server] %v: %v", storage.ErrDBNotResponding, err)
		}
		log.Infof("[server] connected to mongo: %s:%s/%s", conf.Host, conf.Port, conf.DBName)

		defer func() {
			closeCtx, closeRelease := context.WithTimeout(context.Background(), 10*time.Second)
			defer closeRelease()
			db.Close(closeCtx)
			log.Info("[server] disconnected from DB")
		}()

		sdb = db

	case true:
		log.Info("[server] running with in-memory DB")
		db := memdb.New()
		seedDevUser(db, secret)
		sdb = db
	}

	var kafkaWriter *kafka.Writer
	if cfg.KafkaAddr != "" && cfg.KafkaTopic != "" {
		kafkaWriter = &kafka.Writer{
			Addr:      kafka.TCP(cfg.KafkaAddr),
			Topic:     cfg.KafkaTopic,
			BatchSize: cfg.KafkaBatch,
		}
		if err := createTopic(kafkaWriter.Addr.String(), kafkaWriter.Topic); err != nil {
			log.Warnf("[server] failed to create Kafka topic: %v", err)
		}
		defer kafkaWriter.Close()
	} else {
		log.Warn("[server] kafka was not configured, access logs will not be sent to Kafka")
	}

	api := api.New(cfg.ServiceName, sdb, secret, kafkaWriter)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Infof("[server] starting on %v", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}
}

// seedDevUser creates a user in the in-memory store and logs a ready-to-use
// bearer token, so authenticated endpoints can be exercised in dev mode.
func seedDevUser(db *memdb.Store, secret string) {
	user, err := db.AddUser(context.Background(), storage.User{
		Username: "dev",
		Email:    "dev@localhost",
	})
	if err != nil {
		log.Fatalf("[server] failed to seed dev user: %v", err)
	}

	token, err := auth.NewToken(secret, user.ID, auth.DefaultTokenTTL)
	if err != nil {
		log.Fatalf("[server] failed to issue dev token: %v", err)
	}
	log.Infof("[server] dev user %v, bearer token: %s", user.ID, token)
}

func createTopic(broker, topic string) error {
	conn, err := kafka.DialContext(context.Background(), "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	return conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}
