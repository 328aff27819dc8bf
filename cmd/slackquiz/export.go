package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/slackquiz/internal/model"
	"github.com/pavelanni/slackquiz/internal/score"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full leaderboard as JSON or YAML",
		RunE:  runExport,
	}
	f := cmd.Flags()
	addStoreFlags(f, "sqlite")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("format", "f", "json", "Output format (json, yaml)")
	addLogFlags(f, "text")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	l, err := openLedger(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer l.close()

	export := score.Export(cmd.Context(), l.ranker, l.name, time.Now().UTC())
	data, err := encodeExport(export, v.GetString("format"))
	if err != nil {
		return err
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func encodeExport(export model.LeaderboardExport, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(export)
		if err != nil {
			return nil, fmt.Errorf("marshal YAML: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
