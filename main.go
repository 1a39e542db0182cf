package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"glossa/lang"
	"glossa/mic"
	"glossa/session"
	"glossa/stt"
	"glossa/translate"
	"glossa/tui"
)

var logger *log.Logger

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(listenCmd)
	rootCmd.AddCommand(languagesCmd)
	rootCmd.AddCommand(setupCmd)

	rootCmd.PersistentFlags().
		String("deepgram-api-key", "", "Deepgram API key")
	rootCmd.PersistentFlags().String("openai-api-key", "", "OpenAI API key")
	rootCmd.PersistentFlags().String("gemini-api-key", "", "Gemini API key")
	rootCmd.PersistentFlags().
		String("gateway-url", "", "Transcription gateway websocket URL")
	rootCmd.PersistentFlags().
		String("gateway-api-key", "", "Transcription gateway API key")
	rootCmd.PersistentFlags().
		String("translator", "openai", "Translation backend (openai or gemini)")

	listenCmd.Flags().String("from", "es", "Source language code")
	listenCmd.Flags().String("to", "en", "Target language code")

	viper.BindPFlag(
		"deepgram_api_key",
		rootCmd.PersistentFlags().Lookup("deepgram-api-key"),
	)
	viper.BindPFlag(
		"openai_api_key",
		rootCmd.PersistentFlags().Lookup("openai-api-key"),
	)
	viper.BindPFlag(
		"gemini_api_key",
		rootCmd.PersistentFlags().Lookup("gemini-api-key"),
	)
	viper.BindPFlag(
		"gateway_url",
		rootCmd.PersistentFlags().Lookup("gateway-url"),
	)
	viper.BindPFlag(
		"gateway_api_key",
		rootCmd.PersistentFlags().Lookup("gateway-api-key"),
	)
	viper.BindPFlag(
		"translator",
		rootCmd.PersistentFlags().Lookup("translator"),
	)
	viper.BindPFlag("source_lang", listenCmd.Flags().Lookup("from"))
	viper.BindPFlag("target_lang", listenCmd.Flags().Lookup("to"))
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/glossa")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	logger = log.New(os.Stderr)
}

var rootCmd = &cobra.Command{
	Use:   "glossa",
	Short: "Glossa shows a live translated transcript of your microphone",
	Long: `Glossa captures microphone audio, streams it to a speech
recognition service, and shows each finished utterance alongside its
translation in an append-only transcript.`,
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Start listening and show the live transcript",
	Run:   runListen,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported language codes",
	Run:   runLanguages,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure API keys and defaults",
	Run:   runSetup,
}

func runListen(cmd *cobra.Command, args []string) {
	transport, err := buildTransport()
	if err != nil {
		logger.Fatal("transport", "error", err)
	}

	translator, err := buildTranslator(cmd.Context())
	if err != nil {
		logger.Fatal("translator", "error", err)
	}

	snapshots := make(chan session.Snapshot, 8)
	ctrl := session.New(
		mic.NewPortAudio(logger),
		transport,
		translator,
		logger,
		tui.Notifier(snapshots),
	)

	source := viper.GetString("source_lang")
	target := viper.GetString("target_lang")
	if err := ctrl.SetLanguages(source, target); err != nil {
		logger.Fatal("languages", "error", err)
	}

	if err := tui.Run(ctrl, snapshots); err != nil {
		ctrl.Close()
		logger.Fatal("ui", "error", err)
	}
	ctrl.Close()
}

func buildTransport() (stt.Transport, error) {
	if url := viper.GetString("gateway_url"); url != "" {
		return stt.NewGatewayTransport(
			url,
			viper.GetString("gateway_api_key"),
			logger,
		), nil
	}
	if key := viper.GetString("deepgram_api_key"); key != "" {
		return stt.NewDeepgramTransport(key, logger), nil
	}
	return nil, fmt.Errorf(
		"no transcription backend configured; set gateway_url or deepgram_api_key",
	)
}

// buildTranslator may return nil when no backend is configured; turns
// then finalize untranslated rather than failing the session.
func buildTranslator(ctx context.Context) (translate.Translator, error) {
	switch backend := viper.GetString("translator"); backend {
	case "openai":
		key := viper.GetString("openai_api_key")
		if key == "" {
			logger.Warn("no OpenAI API key; translations disabled")
			return nil, nil
		}
		return translate.NewOpenAITranslator(key), nil
	case "gemini":
		key := viper.GetString("gemini_api_key")
		if key == "" {
			logger.Warn("no Gemini API key; translations disabled")
			return nil, nil
		}
		return translate.NewGeminiTranslator(ctx, key)
	default:
		return nil, fmt.Errorf("unknown translator backend %q", backend)
	}
}

func runLanguages(cmd *cobra.Command, args []string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Code", "Language"})
	for _, code := range lang.Codes() {
		table.Append([]string{code, lang.Name(code)})
	}
	table.Render()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
