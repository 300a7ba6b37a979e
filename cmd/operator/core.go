package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easeaico/gridcare/internal/assistant"
	"github.com/easeaico/gridcare/internal/brain"
	"github.com/easeaico/gridcare/internal/config"
	"github.com/easeaico/gridcare/internal/emotion"
	"github.com/easeaico/gridcare/internal/forecast"
	"github.com/easeaico/gridcare/internal/intent"
	"github.com/easeaico/gridcare/internal/kafka"
	"github.com/easeaico/gridcare/internal/types"
)

func (c *cli) classifyCmd() *cobra.Command {
	var requestType string
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify the intent of a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), intent.NewClassifier().Classify(requestType, joinArgs(args)))
		},
	}
	cmd.Flags().StringVar(&requestType, "type", "", "structured request type")
	return cmd
}

func (c *cli) sentimentCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "sentiment [text]",
		Short: "Analyze sentiment, emotions and urgency of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), emotion.NewAnalyzer().Analyze(joinArgs(args), lang))
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "message language: en or ar")
	return cmd
}

func (c *cli) predictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Predict a customer's next bill",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			profile, err := c.loadCustomer(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Prediction  any `json:"prediction"`
				Consumption any `json:"consumption"`
			}{
				Prediction:  forecast.NewPredictor().PredictNextBill(profile),
				Consumption: forecast.AnalyzeConsumption(profile),
			})
		},
	}
}

func (c *cli) analyzeCmd() *cobra.Command {
	var requestType, details string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a service request before ticket submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			profile, err := c.loadCustomer(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			b, err := assistant.NewBrain(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			res := b.AnalyzeRequest(cmd.Context(), brain.ServiceRequest{
				Customer:       profile,
				RequestType:    requestType,
				RequestDetails: details,
			})
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&requestType, "type", "", "request type, e.g. billing_inquiry")
	cmd.Flags().StringVar(&details, "details", "", "free-text request details")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (c *cli) insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show bill outlook and recommendations for a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			profile, err := c.loadCustomer(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			b, err := assistant.NewBrain(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b.CustomerInsights(cmd.Context(), profile))
		},
	}
}

func (c *cli) statsCmd() *cobra.Command {
	var intentName string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge graph statistics, or insights for one intent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, snaps, err := assistant.OpenKnowledge(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer snaps.Close()
			if intentName != "" {
				return printJSON(cmd.OutOrStdout(), store.IntentInsights(intentName))
			}
			return printJSON(cmd.OutOrStdout(), store.Stats())
		},
	}
	cmd.Flags().StringVar(&intentName, "intent", "", "show insights for this intent")
	return cmd
}

func (c *cli) similarCmd() *cobra.Command {
	var intentName string
	cmd := &cobra.Command{
		Use:   "similar [query]",
		Short: "Find learned queries similar to the given one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, snaps, err := assistant.OpenKnowledge(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer snaps.Close()
			return printJSON(cmd.OutOrStdout(), store.FindSimilarQueries(joinArgs(args), intentName))
		},
	}
	cmd.Flags().StringVar(&intentName, "intent", "", "intent to search within")
	_ = cmd.MarkFlagRequired("intent")
	return cmd
}

func (c *cli) askCmd() *cobra.Command {
	var channel, lang string
	var noLearn bool
	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Answer a customer query and record the interaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			profile, err := c.loadCustomer(ctx, &cfg)
			if err != nil {
				return err
			}
			b, err := assistant.NewBrain(ctx, &cfg)
			if err != nil {
				return err
			}

			req := brain.QueryRequest{Customer: profile, Query: joinArgs(args), Channel: channel, Language: lang}
			resp := b.ProcessQuery(ctx, req)
			if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if noLearn {
				return nil
			}
			return c.record(cmd, &cfg, brain.NewInteraction(req, resp))
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "cli", "channel the query arrived on")
	cmd.Flags().StringVar(&lang, "lang", "", "reply language, defaults to the customer's")
	cmd.Flags().BoolVar(&noLearn, "no-learn", false, "do not record the interaction")
	return cmd
}

// record publishes the interaction when Kafka is configured, otherwise it
// learns it directly and flushes the snapshot.
func (c *cli) record(cmd *cobra.Command, cfg *config.Config, in types.Interaction) error {
	ctx := cmd.Context()
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.InteractionsTopic)
		defer producer.Close()
		if err := producer.PublishInteraction(ctx, in); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "interaction %s published to %s\n", in.ID, cfg.InteractionsTopic)
		return nil
	}

	store, snaps, err := assistant.OpenKnowledge(ctx, cfg)
	if err != nil {
		return err
	}
	defer snaps.Close()
	store.Learn(ctx, in)
	if err := store.Close(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "interaction %s learned\n", in.ID)
	return nil
}
