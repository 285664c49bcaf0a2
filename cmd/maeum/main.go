package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "maeum",
	Short: "Emotion support chat, diary and community backend",
	Long: `maeum serves the emotion support API: an empathetic chat companion,
a mood diary with feedback, an anonymous community feed, emotion statistics
and shareable conversations. The same chat and diary flows are available
through a Telegram bot.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, botCmd, classifyCmd, feedbackCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
