// Package ven implements a sample VEN client: it polls a program's
// timeline and listens for notifications until interrupted.
package ven

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"openadr/internal/shared/logger"
	"openadr/internal/wire"
	"openadr/sdk/openadr3"
)

var (
	vtnURL       string
	programID    string
	clientID     string
	clientSecret string
	token        string
	pollInterval time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ven",
		Short: "Run a sample VEN against a VTN",
		Long:  `Connects to a VTN, resolves the timeline of one program, logs the active and upcoming intervals, and follows object changes over the notification stream. Without --vtn-url the VTN is discovered via mDNS.`,
		RunE:  run,
	}

	cmd.Flags().StringVar(&vtnURL, "vtn-url", "", "VTN base URL including the OpenADR base path (empty = discover via mDNS)")
	cmd.Flags().StringVar(&programID, "program-id", "", "Program to follow")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	cmd.Flags().StringVar(&token, "token", "", "Pre-issued bearer token (alternative to client credentials)")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", time.Minute, "Timeline refresh interval")
	_ = cmd.MarkFlagRequired("program-id")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []openadr3.Option{openadr3.WithLogger(log)}
	switch {
	case token != "":
		opts = append(opts, openadr3.WithStaticToken(token))
	case clientID != "":
		opts = append(opts, openadr3.WithCredentials(openadr3.Credentials{
			ClientID:     clientID,
			ClientSecret: clientSecret,
		}))
	default:
		return fmt.Errorf("either --token or --client-id/--client-secret is required")
	}

	var client *openadr3.Client
	if vtnURL != "" {
		client = openadr3.NewClient(vtnURL, opts...)
	} else {
		var err error
		client, err = openadr3.DiscoverAndConnect(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to discover a VTN: %w", err)
		}
		log.Infow("discovered VTN via mDNS")
	}

	notifications, err := client.Notifications(ctx)
	if err != nil {
		// The stream is best effort; polling still works without it.
		log.Warnw("notification stream unavailable, falling back to polling only", "error", err)
	}

	if err := logTimeline(ctx, client, log); err != nil {
		return err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infow("ven stopping")
			return nil
		case <-ticker.C:
			if err := logTimeline(ctx, client, log); err != nil {
				log.Errorw("failed to refresh timeline", "error", err)
			}
		case notification, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			log.Infow("object changed",
				"object_type", notification.ObjectType,
				"operation", notification.Operation,
				"id", notification.ID)
			if notification.ObjectType == wire.ObjectEvent || notification.ObjectType == wire.ObjectProgram {
				if err := logTimeline(ctx, client, log); err != nil {
					log.Errorw("failed to refresh timeline", "error", err)
				}
			}
		}
	}
}

func logTimeline(ctx context.Context, client *openadr3.Client, log logger.Interface) error {
	timeline, err := client.ProgramTimeline(ctx, wire.Identifier(programID))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if current, ok := timeline.AtTime(now); ok {
		log.Infow("active interval",
			"start", current.Start, "end", current.End, "payloads", describePayloads(current.Payloads))
	} else {
		log.Infow("no active interval")
	}
	if next, ok := timeline.NextUpdate(now); ok {
		log.Infow("next change", "at", next, "in", next.Sub(now).String())
	}
	return nil
}

func describePayloads(payloads []wire.ValuesMap) string {
	out := ""
	for i, p := range payloads {
		if i > 0 {
			out += ", "
		}
		out += string(p.Type)
		for _, v := range p.Values {
			if n, ok := v.AsNumber(); ok {
				out += fmt.Sprintf(" %g", n)
			} else if s, ok := v.AsString(); ok {
				out += " " + s
			}
		}
	}
	if out == "" {
		return "none"
	}
	return out
}
