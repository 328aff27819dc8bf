package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pavelanni/slackquiz/internal/model"
)

func runCLI(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := rootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	if err := root.Execute(); err != nil {
		t.Fatalf("execute %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestSignCommand(t *testing.T) {
	// Example request from Slack's signing documentation.
	body := "token=xyzz0WbapA4vBCDEFasx0q6G&team_id=T1DC2JH3J&team_domain=testteamnow&channel_id=G8PSS9T3V&channel_name=foobar&user_id=U2CERLKJA&user_name=roadrunner&command=%2Fwebhook-collect&text=&response_url=https%3A%2F%2Fhooks.slack.com%2Fcommands%2FT1DC2JH3J%2F397700885554%2F96rGlfmibIGlgcZRskXaIFfN&trigger_id=398738663015.47445629121.803a0bc887a14d10d2c447fce8b6703c"
	out := runCLI(t, body, "sign", "--signing-secret", "8f742231b10e8888abcd99yyyzzz85a5", "--timestamp", "1531420618")

	want := "X-Slack-Request-Timestamp: 1531420618\nX-Slack-Signature: v0=a2114d57b48eac39b9ad189dd8316235a7b4a8d21a10bd27519666489c69b503\n"
	if out != want {
		t.Errorf("sign output = %q, want %q", out, want)
	}
}

func TestExportCommandEmptyLedger(t *testing.T) {
	out := runCLI(t, "", "export", "--store", "memory")
	var exp model.LeaderboardExport
	if err := json.Unmarshal([]byte(out), &exp); err != nil {
		t.Fatalf("decode export: %v\n%s", err, out)
	}
	if exp.Store != "memory" || len(exp.Entries) != 0 {
		t.Errorf("unexpected export %+v", exp)
	}
}

func TestExportCommandSQLite(t *testing.T) {
	db := t.TempDir() + "/scores.db"
	out := runCLI(t, "", "export", "--store", "sqlite", "--db", db)
	if !strings.Contains(out, `"store": "sqlite"`) {
		t.Errorf("unexpected export output %s", out)
	}
}

func TestUnknownStore(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"export", "--store", "cassandra"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "unknown store") {
		t.Fatalf("expected unknown store error, got %v", err)
	}
}

func TestExportCommandYAML(t *testing.T) {
	out := runCLI(t, "", "export", "--store", "memory", "--format", "yaml")
	if !strings.Contains(out, "store: memory") || !strings.Contains(out, "entries: []") {
		t.Errorf("unexpected YAML export:\n%s", out)
	}
}

func TestDynamoDBStoreRequiresTable(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"export", "--store", "dynamodb", "--dynamodb-table", ""})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "table name is empty") {
		t.Fatalf("expected empty table error, got %v", err)
	}
}
