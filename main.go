package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"cogbot/internal/bot"
	"cogbot/internal/common"
	"cogbot/internal/config"
	"cogbot/internal/events"
	"cogbot/internal/meme"
	"cogbot/internal/midjourney"
	"cogbot/internal/mirror"
	"cogbot/internal/store"
	"cogbot/internal/validate"
)

var errInvalidData = errors.New("the game data is not valid")

var rootCmd = &cobra.Command{
	Use:           "cogbot",
	Short:         "cogbot - Discord bot with channel mirrors, a MidJourney relay, GIFs and events",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve every cog",
	RunE:  runBot,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the consistency of cats.json and abilities.json",
	RunE:  runValidate,
}

var (
	dataFlag    string
	resultsFlag string
)

func init() {
	validateCmd.Flags().StringVar(&dataFlag, "data", "data", "Directory holding cats.json and abilities.json")
	validateCmd.Flags().StringVar(&resultsFlag, "results", "validation_results", "Directory the results are written to")
	rootCmd.AddCommand(runCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInvalidData) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func runBot(cmd *cobra.Command, args []string) error {

	setupLogging(os.Getenv("LOG_LEVEL"))
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.TenorAPIKey == "" {
		log.Warn().Msg("TENOR_API_KEY is not set, randomgif will fail")
	}
	tenor := meme.NewTenor(cfg.TenorBaseURL, cfg.TenorAPIKey, common.Restriction{Requests: config.DefaultTenorRequestsPerInterval, Duration: time.Minute}, nil)
	clock := common.RealClock{}

	discordBot, err := bot.NewBot(cfg.DiscordToken, cfg.Prefix,
		mirror.New(st, cfg.MirrorInterval, common.Restriction{Requests: 5, Duration: 5 * time.Second}),
		midjourney.New(st, clock, cfg.SessionMaxAge),
		meme.New(tenor, nil),
		events.New(st, clock, cfg.NotificationChannelName),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return discordBot.Run(ctx)
}

func runValidate(cmd *cobra.Command, args []string) error {

	setupLogging(os.Getenv("LOG_LEVEL"))
	valid, err := validate.Run(cmd.OutOrStdout(), dataFlag, resultsFlag, time.Now())
	if err != nil {
		return err
	}
	if !valid {
		return errInvalidData
	}
	return nil
}
