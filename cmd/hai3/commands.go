package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hai3/sdk/pkg/config"
	"github.com/hai3/sdk/pkg/logging"
	"github.com/hai3/sdk/pkg/rest"
	"github.com/hai3/sdk/pkg/sse"
)

// loadProfile reads the profile named by the --profile flag. Without
// the flag an empty profile is returned, so absolute URLs still work.
func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	path, _ := cmd.Flags().GetString("profile")
	if path == "" {
		return &config.Profile{}, nil
	}
	return config.LoadProfile(path)
}

func buildLogger(cmd *cobra.Command, profile *config.Profile) *slog.Logger {
	level := profile.Log.Level
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}
	if level == "" {
		return logging.Nop()
	}
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(profile.Log.Format),
	})
}

func newRequestCmd() *cobra.Command {
	var headers []string
	var data string

	cmd := &cobra.Command{
		Use:   "request METHOD URL",
		Short: "Execute a request through the plugin chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cmd, profile)

			timeout, err := profile.TimeoutDuration()
			if err != nil {
				return err
			}
			var transportOpts []rest.HTTPTransportOption
			if timeout > 0 {
				transportOpts = append(transportOpts, rest.WithTimeout(timeout))
			}

			protocol := rest.New(
				rest.WithTransport(rest.NewHTTPTransport(profile.BaseURL, transportOpts...)),
				rest.WithLogger(logger),
			)

			if profile.Mocks.Enabled {
				routes, err := profile.Mocks.RestRoutes()
				if err != nil {
					return err
				}
				protocol.RegisterMockMap(routes)
				protocol.Plugins().Add(rest.NewMockPlugin(rest.MockOptions{
					Delay: time.Duration(profile.Mocks.DelayMs) * time.Millisecond,
				}))
			}

			rc := rest.RequestContext{
				Method: strings.ToUpper(args[0]),
				URL:    args[1],
				Header: map[string]string{},
			}
			for k, v := range profile.Header {
				rc.Header[k] = v
			}
			for _, h := range headers {
				k, v, ok := strings.Cut(h, "=")
				if !ok {
					return fmt.Errorf("invalid header %q, expected key=value", h)
				}
				rc.Header[k] = v
			}
			if data != "" {
				rc.Body = []byte(data)
			}

			resp, err := protocol.Execute(cmd.Context(), rc)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", resp.Status)
			if len(resp.Data) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), string(resp.Data))
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header (key=value, repeatable)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "request body")
	return cmd
}

func newStreamCmd() *cobra.Command {
	var maxEvents int

	cmd := &cobra.Command{
		Use:   "stream URL",
		Short: "Subscribe to an event stream through the plugin chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			logger := buildLogger(cmd, profile)

			protocol := sse.New(
				sse.WithDialer(sse.NewHTTPDialer(profile.BaseURL)),
				sse.WithLogger(logger),
			)

			if profile.Mocks.Enabled {
				protocol.RegisterMockMap(profile.Mocks.StreamRoutes())
				protocol.Plugins().Add(sse.NewMockPlugin(sse.MockOptions{
					Delay: time.Duration(profile.Mocks.DelayMs) * time.Millisecond,
				}))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cc := sse.ConnectContext{URL: args[0], Header: map[string]string{}}
			for k, v := range profile.Header {
				cc.Header[k] = v
			}

			stream, err := protocol.Connect(ctx, cc)
			if err != nil {
				return err
			}
			defer func() { _ = stream.Close() }()

			received := make(chan sse.Event, 64)
			stream.OnMessage(func(ev sse.Event) { received <- ev })
			stream.On(sse.EventDone, func(ev sse.Event) { received <- ev })

			count := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-stream.Done():
					return nil
				case ev := <-received:
					if ev.Type == sse.EventDone {
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), ev.Data)
					count++
					if maxEvents > 0 && count >= maxEvents {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().IntVarP(&maxEvents, "max", "n", 0, "stop after N events (0 = until the stream ends)")
	return cmd
}

func newMocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mocks",
		Short: "Inspect mock configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a profile's mock section without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := config.LoadProfile(args[0])
			if err != nil {
				return err
			}
			routes, err := profile.Mocks.RestRoutes()
			if err != nil {
				return err
			}
			streams := profile.Mocks.StreamRoutes()
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d route(s), %d stream(s)\n",
				routes.Len(), streams.Len())
			return nil
		},
	})
	return cmd
}
