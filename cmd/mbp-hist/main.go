// Copyright (c) 2024 Neomantra Corp
//
// NOTE: this talks to the live Kraken history API, handle with care!
//

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/neomantra/ymdflag"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mbp "github.com/krakenquant/mbpreplay"
	"github.com/krakenquant/mbpreplay/hist"
	mbp_tui "github.com/krakenquant/mbpreplay/internal/tui"
)

///////////////////////////////////////////////////////////////////////////////

const defaultBaseURL = "https://futures.kraken.com/api/history/v3"

var (
	krakenApiKey string
	baseURL      string
	resourceRoot string

	sinceFlag ymdDateFlag
	untilFlag ymdDateFlag

	useForce bool
	useTUI   bool
)

///////////////////////////////////////////////////////////////////////////////
// ymdDateFlag is a pflag.Value for a YYYYMMDD day argument, rendering back
// as YYYYMMDD with ymdflag.TimeToYMD (per-day files use YMDFileName's
// MM_DD_YYYY form instead).

type ymdDateFlag struct {
	t   time.Time
	set bool
}

func (f *ymdDateFlag) String() string {
	if !f.set {
		return ""
	}
	return fmt.Sprintf("%d", ymdflag.TimeToYMD(f.t))
}

func (f *ymdDateFlag) Set(s string) error {
	t, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid YYYYMMDD date %q: %w", s, err)
	}
	f.t = t
	f.set = true
	return nil
}

func (f *ymdDateFlag) Type() string { return "YYYYMMDD" }

///////////////////////////////////////////////////////////////////////////////

func requireKrakenApiKey() string {
	if krakenApiKey == "" {
		krakenApiKey = viper.GetString("kraken_api_key")
	}
	if krakenApiKey == "" {
		fmt.Fprint(os.Stderr, "Kraken API key not set. Use --key, KRAKEN_HIST_API_KEY, or kraken_api_key in mbp-hist.yaml.\n")
		os.Exit(1)
	}
	return krakenApiKey
}

func requireNoError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func requireHumanConfirmation(promptTitle string, verbName string) {
	doVerb := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Affirmative(fmt.Sprintf("Yes, %s", verbName)).
				Negative("No, Cancel").
				Title(promptTitle).
				Value(&doVerb),
		))
	if err := form.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "confirmation error: %s\n", err.Error())
		os.Exit(1)
	}
	if !doVerb {
		os.Exit(0)
	}
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	_ = godotenv.Load() // optional .env, missing file is not an error

	viper.SetEnvPrefix("mbp_hist")
	viper.AutomaticEnv()
	viper.SetConfigName("mbp-hist")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // optional config file

	if envKey := os.Getenv("KRAKEN_HIST_API_KEY"); envKey != "" {
		viper.SetDefault("kraken_api_key", envKey)
	}

	rootCmd.PersistentFlags().StringVarP(&krakenApiKey, "key", "k", "", "Kraken history API key (or KRAKEN_HIST_API_KEY envvar)")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "u", defaultBaseURL, "Base URL of the Kraken history API")
	rootCmd.PersistentFlags().StringVarP(&resourceRoot, "root", "r", ".", "Root directory of the snapshot/trade resource tree")
	viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("resource_root", rootCmd.PersistentFlags().Lookup("root"))

	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().VarP(&sinceFlag, "since", "s", "First day to download, as YYYYMMDD")
	downloadCmd.Flags().VarP(&untilFlag, "until", "e", "Last day to download (inclusive), as YYYYMMDD. Defaults to --since.")
	downloadCmd.Flags().BoolVarP(&useForce, "force", "f", false, "Skip the confirmation prompt")
	downloadCmd.Flags().BoolVarP(&useTUI, "tui", "t", false, "Show a live per-chunk drain dashboard while downloading")
	downloadCmd.MarkFlagRequired("since")

	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsMarkdownCmd)
	docsCmd.AddCommand(docsManCmd)
	docsCmd.PersistentFlags().StringVarP(&docsOutputDir, "output", "o", "./docs", "Output directory for generated docs")
	docsCmd.PersistentFlags().BoolVar(&docsEnableAutoGenTag, "enableAutoGenTag", false, "Include the auto-generation timestamp footer")
	docsMarkdownCmd.Flags().BoolVar(&docsHugo, "hugo", false, "Generate Hugo-compatible markdown with front matter")

	err := rootCmd.Execute()
	requireNoError(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "mbp-hist",
	Short: "mbp-hist downloads Kraken historical order/execution events and replays them into MBP snapshot files.",
	Long:  "mbp-hist downloads Kraken historical order/execution events and replays them into MBP snapshot files.",
}

var downloadCmd = &cobra.Command{
	Use:     "download <feedcode>",
	Aliases: []string{"dl"},
	Short:   "Downloads and replays one or more days for a feedcode",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		feedcode := args[0]
		asset, err := mbp.FeedcodeToAsset(feedcode)
		requireNoError(err)
		market, err := mbp.FeedcodeToMarket(feedcode)
		requireNoError(err)

		since := sinceFlag.t
		until := since
		if untilFlag.set {
			until = untilFlag.t
		}
		if until.Before(since) {
			fmt.Fprint(os.Stderr, "--until must not be before --since\n")
			os.Exit(1)
		}
		days := int(until.Sub(since).Hours()/24) + 1

		if !useForce {
			requireHumanConfirmation(
				fmt.Sprintf("Download %d day(s) of %s into %s?", days, feedcode, viper.GetString("resource_root")),
				"Download")
		}

		apiKey := requireKrakenApiKey()
		client := hist.NewClient(viper.GetString("base_url"), apiKey)
		builder, err := hist.NewBuilder(client, viper.GetString("resource_root"), asset, market)
		requireNoError(err)

		var dashboardErr chan error
		var progressCh chan hist.ChunkProgressMsg
		if useTUI {
			progressCh = make(chan hist.ChunkProgressMsg, 2*hist.DefaultChunkCount)
			builder.SetProgressCh(progressCh)
			tuiCh := make(chan mbp_tui.ChunkProgressMsg, cap(progressCh))
			go mbp_tui.PumpProgress(progressCh, tuiCh)

			dashboardErr = make(chan error, 1)
			go func() {
				dashboardErr <- mbp_tui.Run(mbp_tui.Config{
					Feedcode:   feedcode,
					Date:       since.Format("2006-01-02"),
					ChunkCount: hist.DefaultChunkCount,
					ProgressCh: tuiCh,
				})
			}()
		}

		ctx := context.Background()
		for day := since; !day.After(until); day = day.AddDate(0, 0, 1) {
			if err := builder.BuildDay(ctx, day); err != nil {
				requireNoError(err)
			}
			fmt.Fprintf(os.Stdout, "built %s %s\n", feedcode, day.Format("2006-01-02"))
		}

		if dashboardErr != nil {
			builder.SetProgressCh(nil)
			close(progressCh)
			requireNoError(<-dashboardErr)
		}
	},
}
