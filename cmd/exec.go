package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"parking-system/config"
	"parking-system/internal/handlers"
	"parking-system/internal/notify"
	"parking-system/internal/services"
	"parking-system/monitoring"
	"parking-system/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the parkhaus command. Flags override the environment.
func NewRootCmd() *cobra.Command {
	cfg := config.LoadConfig()
	var rate string

	rootCmd := &cobra.Command{
		Use:           "parkhaus",
		Short:         "Car park ticket machine console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("rate") {
				value, err := decimal.NewFromString(rate)
				if err != nil {
					return fmt.Errorf("invalid --rate %q: %w", rate, err)
				}
				cfg.RatePerMinute = value
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Start(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	rootCmd.Flags().StringVar(&cfg.FacilityName, "name", cfg.FacilityName, "facility name")
	rootCmd.Flags().IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "number of parking slots")
	rootCmd.Flags().StringVar(&rate, "rate", cfg.RatePerMinute.String(), "fee per started minute")
	rootCmd.Flags().BoolVar(&cfg.EnableMetrics, "metrics", cfg.EnableMetrics, "serve prometheus metrics")

	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// Start wires the facility to its notifiers and runs the console menu until
// the operator quits.
func Start(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	monitor := monitoring.NewMonitor(registry, cfg.FacilityName)
	monitor.SetCapacity(cfg.Capacity)

	notifiers := notify.Multi{notify.NewConsole(out), monitor}

	// Redis display board
	if cfg.RedisURL != "" {
		redisClient, err := utils.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		display := notify.NewRedisDisplay(redisClient, cfg.DisplayKeyPrefix())
		notifiers = append(notifiers, guard(cfg, display, logger))
	}

	// PubNub feed
	if cfg.PubNubEnabled() {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pnConfig.UUID = fmt.Sprintf("parkhaus-%s", strings.ToLower(cfg.FacilityName))

		pn := pubnub.NewPubNub(pnConfig)
		channel := fmt.Sprintf("parking-%s", strings.ToLower(cfg.FacilityName))
		notifiers = append(notifiers, guard(cfg, notify.NewPubNubFeed(pn, channel), logger))
	}

	if cfg.EnableMetrics {
		server := startMetricsServer(cfg.MetricsPort, registry, logger)
		defer stopMetricsServer(server, 5*time.Second, logger)
	}

	facility, err := services.NewFacility(
		cfg.FacilityName,
		cfg.Capacity,
		cfg.RatePerMinute,
		services.WithNotifier(notifiers),
		services.WithPaymentRecorder(monitor),
		services.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("Facility open",
		"facility", cfg.FacilityName,
		"capacity", cfg.Capacity,
		"rate_per_minute", cfg.RatePerMinute.String(),
		"currency", cfg.Currency,
	)

	menu := handlers.NewMenu(facility, notifiers, cfg.Currency, in, out, logger)
	if err := menu.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Facility closed", "facility", cfg.FacilityName, "free_slots", facility.FreeCount())
	return nil
}

func guard(cfg *config.Config, sink notify.Sink, logger *slog.Logger) *notify.Guarded {
	breaker := notify.NewBreaker(sink.Name(), uint32(cfg.NotifyMaxFailures), cfg.NotifyCooldown)
	return notify.NewGuarded(sink, breaker, cfg.NotifyTimeout, logger)
}

func startMetricsServer(port string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return server
}

func stopMetricsServer(server *http.Server, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Metrics server shutdown failed", "error", err)
	}
}
