package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stsysd/bathtiles/api"
	"github.com/stsysd/bathtiles/config"
	"github.com/stsysd/bathtiles/ingest"
)

func newServeCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Host calendars over HTTP",
		Long: `Host calendars over HTTP. Settings come from the environment:
BATHTILES_API_KEY (required), BATHTILES_SERVER_PORT, BATHTILES_STYLE_FILE,
BATHTILES_KAFKA_BROKERS, BATHTILES_KAFKA_TOPIC and BATHTILES_KAFKA_GROUP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), deps)
		},
	}
}

func serve(ctx context.Context, deps Deps) error {
	// 設定の読み込み
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	style, err := config.LoadStyle(cfg.StyleFile)
	if err != nil {
		return err
	}
	opts, err := style.Options()
	if err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	if deps.Now != nil {
		opts.Now = deps.Now
	}

	st := deps.NewStore()
	defer st.Close()

	// サーバーインスタンスの作成
	server := api.NewServer(st, cfg, opts)

	if cfg.IngestEnabled() {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		logger := slog.New(slog.NewJSONHandler(deps.Stderr, nil))
		consumer, err := deps.NewConsumer(ingest.Config{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroup,
		}, server.Metrics().ObserveImporter("kafka", st), logger)
		if err != nil {
			return fmt.Errorf("failed to start kafka consumer: %w", err)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("Kafka consumer stopped: %v", err)
			}
		}()
	}

	// サーバーの起動
	return deps.Serve(server, ":"+cfg.Port)
}
