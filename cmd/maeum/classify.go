package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xaenox/maeum/internal/classifier"
	"github.com/xaenox/maeum/internal/feedback"
	"github.com/xaenox/maeum/internal/models"
)

var showScores bool

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Classify the emotion of a message",
	Long: `Classify the emotion of a message with the keyword classifier and print
the label. With --scores every label's keyword score is printed too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		clf := classifier.NewDefaultClassifier()
		out := cmd.OutOrStdout()

		label := clf.Classify(text)
		fmt.Fprintln(out, label)
		if showScores {
			for _, s := range clf.Scores(text) {
				fmt.Fprintf(out, "  %-8s %d\n", s.Label, s.Value)
			}
		}
		return nil
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback <label>...",
	Short: "Print the diary feedback for a set of emotion labels",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		labels := make([]models.EmotionLabel, 0, len(args))
		for _, a := range args {
			labels = append(labels, models.EmotionLabel(strings.ToLower(a)))
		}
		fmt.Fprintln(cmd.OutOrStdout(), feedback.ComposeFeedback(labels))
		return nil
	},
}

func init() {
	classifyCmd.Flags().BoolVar(&showScores, "scores", false, "print per-label keyword scores")
}
