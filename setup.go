package main

import (
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"glossa/lang"
)

func runSetup(cmd *cobra.Command, args []string) {
	logger.Info("Starting glossa setup...")

	deepgramKey := viper.GetString("deepgram_api_key")
	openaiKey := viper.GetString("openai_api_key")
	geminiKey := viper.GetString("gemini_api_key")
	sourceLang := viper.GetString("source_lang")
	targetLang := viper.GetString("target_lang")
	if sourceLang == "" {
		sourceLang = "es"
	}
	if targetLang == "" {
		targetLang = "en"
	}

	var langOptions []huh.Option[string]
	for _, code := range lang.Codes() {
		langOptions = append(
			langOptions,
			huh.NewOption(lang.Name(code), code),
		)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Enter your Deepgram API Key").
				Value(&deepgramKey),
			huh.NewInput().
				Title("Enter your OpenAI API Key").
				Value(&openaiKey),
			huh.NewInput().
				Title("Enter your Google Cloud (Gemini) API Key").
				Value(&geminiKey),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default source language").
				Options(langOptions...).
				Value(&sourceLang),
			huh.NewSelect[string]().
				Title("Default target language").
				Options(langOptions...).
				Value(&targetLang),
		),
	)

	if err := form.Run(); err != nil {
		logger.Fatal("Error during setup", "error", err)
	}

	viper.Set("deepgram_api_key", deepgramKey)
	viper.Set("openai_api_key", openaiKey)
	viper.Set("gemini_api_key", geminiKey)
	viper.Set("source_lang", sourceLang)
	viper.Set("target_lang", targetLang)

	if err := viper.WriteConfig(); err != nil {
		if err := viper.SafeWriteConfigAs("config.yaml"); err != nil {
			logger.Fatal("Error saving configuration", "error", err)
		}
	}

	logger.Info("Setup completed successfully!")
}
