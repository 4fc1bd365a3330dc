package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/5w1tchy/passmeter/internal/api/handlers"
	"github.com/5w1tchy/passmeter/internal/api/handlers/admin"
	"github.com/5w1tchy/passmeter/internal/api/handlers/meter"
	mw "github.com/5w1tchy/passmeter/internal/api/middlewares"
	"github.com/5w1tchy/passmeter/internal/api/router"
	"github.com/5w1tchy/passmeter/internal/blacklist"
	"github.com/5w1tchy/passmeter/internal/logging"
	"github.com/5w1tchy/passmeter/internal/maintenance"
	"github.com/5w1tchy/passmeter/internal/metrics/evalqueue"
	"github.com/5w1tchy/passmeter/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/passmeter/internal/security/jwt"
	"github.com/5w1tchy/passmeter/internal/security/password"
	"github.com/5w1tchy/passmeter/internal/session"
	s3store "github.com/5w1tchy/passmeter/internal/storage/s3"
	"github.com/5w1tchy/passmeter/internal/store/evaluations"
	"github.com/5w1tchy/passmeter/internal/validate"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	log := logging.New(logging.FromEnv())
	mw.SetLogger(log)

	if err := validate.Env(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	for _, w := range validate.HardeningWarnings(os.Getenv("APP_ENV")) {
		log.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis (optional)
	rdb, err := newRedis()
	if err != nil {
		log.Fatal().Err(err).Msg("redis config")
	}
	if rdb != nil {
		// Fail fast if Redis isn't reachable
		if err := validate.PingRedis(rdb, 2*time.Second); err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		log.Info().Msg("connected to redis")
	} else {
		log.Warn().Msg("redis not configured; rate limits and stats cache disabled")
	}

	// Postgres (optional)
	db, err := sqlconnect.ConnectDB(ctx)
	switch {
	case errors.Is(err, sqlconnect.ErrNotConfigured):
		log.Warn().Msg("DATABASE_URL not set; evaluation audit disabled")
	case err != nil:
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	var evStore *evaluations.Store
	if db != nil {
		defer db.Close()
		if err := evaluations.EnsureSchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("ensure schema")
		}
		evStore = evaluations.New(db)
		log.Info().Msg("connected to postgres")
	}

	// Blacklist: built-in + file + S3 + DB
	src := blacklist.SourcesFromEnv()
	if db != nil {
		src.DB = db
	}
	if s3cfg := s3store.ConfigFromEnv(); s3cfg.Configured() {
		bucket, err := s3store.Open(ctx, s3cfg)
		if err != nil {
			log.Warn().Err(err).Msg("s3 client; skipping S3 blacklist")
		} else {
			src.S3 = bucket
		}
	}
	common, report := blacklist.Load(ctx, src, log)

	sessCfg := session.LoadConfig()
	sessions := session.NewStore(sessCfg)
	sessions.StartSweeper(ctx, time.Minute, func(n int) {
		log.Debug().Int("removed", n).Msg("expired sessions swept")
	})

	signer, err := jwtutil.NewSigner(jwtutil.LoadConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("session signer")
	}

	var (
		queue      *evalqueue.Queue
		events     meter.Recorder
		adminStore admin.Store
	)
	if evStore != nil {
		queue = evalqueue.Start(evStore, 10000, 2, log)
		events = queue
		adminStore = evStore
		maintenance.StartEvaluationRetention(ctx, evStore, maintenance.RetentionConfigFromEnv(), log)
	}

	meterH := meter.NewHandler(sessions, signer, sessCfg.TTL, common, password.LoadParamsFromEnv(), events)

	checks := map[string]handlers.Check{}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}

	mux := router.Router(meterH, signer, rdb, checks)
	router.MountAdmin(mux, admin.NewHandler(rdb, adminStore, sessions, queue, report), os.Getenv("ADMIN_API_KEY"))

	tb := mw.NewRedisTokenBucket(rdb, 5, 20, mw.PerIPKey("tb"))
	sw := mw.NewRedisSlidingWindow(rdb, 3000, 60*time.Minute, mw.PerIPKey("sw"))

	secureMux := mw.Chain(
		mux,
		mw.RequestID,
		mw.Recovery,
		mw.Cors,
		mw.ResponseTimeMiddleware,
		mw.SecurityHeaders,
		mw.BodySizeLimit,
		tb.Middleware,
		sw.Middleware,
		mw.Compression,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           secureMux,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		cert, key := os.Getenv("TLS_CERT_FILE"), os.Getenv("TLS_KEY_FILE")
		log.Info().Str("addr", server.Addr).Bool("tls", cert != "").Msg("server is running")
		var err error
		if cert != "" && key != "" {
			err = server.ListenAndServeTLS(cert, key)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("error starting server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	queue.Shutdown()
}
