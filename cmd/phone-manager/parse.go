package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/phone-manager/internal/classification"
	"github.com/Veraticus/phone-manager/internal/normalize"
	"github.com/spf13/cobra"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [response]",
		Short: "Normalize a model response offline",
		Long: `Run the response normalizer over a saved model response and print the
resolved fields as JSON. The response is read from stdin when no argument
is given.

Use --date to check how a sheet date cell is converted, and --message to
see which type the classifiers would assign.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}

	cmd.Flags().String("date", "", "Sheet date cell to convert")
	cmd.Flags().String("message", "", "Message text to classify alongside the response")
	cmd.Flags().Bool("strict", false, "Require the whole response to be JSON")
	cmd.Flags().String("precedence", "", "Classifier precedence (model or keyword)")

	return cmd
}

// parseOutput is the JSON printed by the parse command.
type parseOutput struct {
	Fields     any    `json:"fields"`
	Error      string `json:"error,omitempty"`
	Date       string `json:"date,omitempty"`
	DateError  string `json:"date_error,omitempty"`
	Type       string `json:"type,omitempty"`
	TypeSource string `json:"type_source,omitempty"`
	Pattern    string `json:"pattern,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	dateCell, _ := cmd.Flags().GetString("date")
	message, _ := cmd.Flags().GetString("message")
	strict, _ := cmd.Flags().GetBool("strict")
	precedenceFlag, _ := cmd.Flags().GetString("precedence")

	var response string
	if len(args) == 1 {
		response = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = string(data)
	}

	n := &normalize.Normalizer{Strict: strict}
	fields, err := n.Normalize(response)

	out := parseOutput{Fields: fields}
	if err != nil {
		out.Error = err.Error()
	}

	if dateCell != "" {
		if d, dateErr := normalize.CanonicalDate(dateCell); dateErr != nil {
			out.DateError = dateErr.Error()
		} else {
			out.Date = d
		}
	}

	precedence, err := classification.ParsePrecedence(precedenceFlag)
	if err != nil {
		return err
	}
	chain, err := classification.NewDefaultChain(precedence)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	match, err := chain.Classify(ctx, classification.Input{
		Fields:  fields,
		Content: strings.TrimSpace(message),
	})
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	if match != nil {
		out.Type = match.Type
		out.TypeSource = string(match.Source)
		out.Pattern = match.PatternName
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}
