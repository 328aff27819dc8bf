package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/slackquiz/internal/signature"
)

// signCmd prints Slack signing headers for a body, for calling a local
// server with curl.
func signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print Slack signature headers for a request body",
		RunE:  runSign,
	}
	f := cmd.Flags()
	f.String("signing-secret", "", "Signing secret")
	f.String("body", "", "Request body (default: read stdin)")
	f.Int64("timestamp", 0, "Unix timestamp to sign with (default: now)")
	addLogFlags(f, "text")
	return cmd
}

func runSign(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	secret := v.GetString("signing-secret")
	if secret == "" {
		return fmt.Errorf("signing-secret: %w", errMissingFlag)
	}
	body := []byte(v.GetString("body"))
	if !cmd.Flags().Changed("body") {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		body = b
	}
	ts := time.Now()
	if sec := v.GetInt64("timestamp"); sec != 0 {
		ts = time.Unix(sec, 0)
	}

	h := signature.Headers([]byte(secret), ts, body)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", signature.TimestampHeader, h.Get(signature.TimestampHeader))
	fmt.Fprintf(out, "%s: %s\n", signature.SignatureHeader, h.Get(signature.SignatureHeader))
	return nil
}
