package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/c360studio/tripplanner/config"
	"github.com/c360studio/tripplanner/itinerary"
	tripplanner "github.com/c360studio/tripplanner/processor/trip-planner"
	"github.com/spf13/cobra"
)

// errPlanFailed is returned after a failed Result has been printed.
var errPlanFailed = errors.New("trip plan failed")

func planCmd(flags *globalFlags) *cobra.Command {
	var (
		requestPath string
		destination string
		tripType    string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate one itinerary and print the result",
		Example: `  tripplanner plan --request trip.json
  tripplanner plan --destination "Lisbon, Portugal" --trip-type weekend
  cat trip.json | tripplanner plan --request -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)

			req, err := readRequest(cmd.InOrStdin(), requestPath)
			if err != nil {
				return err
			}
			if destination != "" {
				req.Destination = destination
			}
			if tripType != "" {
				req.TripType = itinerary.TripType(tripType)
			}

			app, err := newApp(flags, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			result := app.newPlanner(nil).Handle(ctx, req)
			if err := writeResult(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return errPlanFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&requestPath, "request", "r", "", `Request JSON file ("-" reads stdin)`)
	cmd.Flags().StringVarP(&destination, "destination", "d", "", "Destination (overrides the request file)")
	cmd.Flags().StringVar(&tripType, "trip-type", "", "Trip type: day_trip, weekend, week, custom")
	return cmd
}

func readRequest(stdin io.Reader, path string) (itinerary.Request, error) {
	var req itinerary.Request
	if path == "" {
		return req, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse request %s: %w", path, err)
	}
	return req, nil
}

func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema offered to the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeResult(cmd.OutOrStdout(), tripplanner.ToolSchema())
		},
	}
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default user config if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)
			path, err := config.NewLoader(logger).EnsureUserConfig()
			if err != nil {
				return fmt.Errorf("write user config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
