package report

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"rudderc/internal/action"
	"rudderc/internal/crash"
	"rudderc/internal/errs"
	"rudderc/internal/logger"
)

// Init installs the process-wide hook, so this package initialises a single Output.
func TestOutputLifecycle(t *testing.T) {
	t.Setenv(crash.BacktraceEnv, "")

	var stdout, stderr bytes.Buffer
	var exits []int
	out, err := Init(Options{
		Mode:      JSON,
		Level:     logger.LevelInfo,
		Action:    action.Compile,
		Backtrace: true,
		Stdout:    &stdout,
		Stderr:    &stderr,
		Exit:      func(code int) { exits = append(exits, code) },
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(out.Close)

	t.Run("backtrace env signal", func(t *testing.T) {
		if got := os.Getenv(crash.BacktraceEnv); got != "1" {
			t.Errorf("%s = %q, want 1", crash.BacktraceEnv, got)
		}
	})

	t.Run("second init fails", func(t *testing.T) {
		if _, err := Init(Options{}); err == nil {
			t.Error("Init must refuse to install a second hook")
		}
	})

	t.Run("print embeds the cycle logs once", func(t *testing.T) {
		stdout.Reset()
		out.Logger().Info("first cycle")
		if err := out.Print(action.Compile, "a.toml", Success()); err != nil {
			t.Fatalf("Print: %v", err)
		}
		var doc Document
		if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(doc.Logs) != 1 || doc.Logs[0].Message != "first cycle" {
			t.Errorf("logs = %+v", doc.Logs)
		}

		stdout.Reset()
		if err := out.Print(action.Compile, "b.toml", Success()); err != nil {
			t.Fatalf("Print: %v", err)
		}
		doc = Document{}
		if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(doc.Logs) != 0 {
			t.Errorf("logs of a finished cycle reappeared: %+v", doc.Logs)
		}
	})

	t.Run("json mode is silent on stderr", func(t *testing.T) {
		out.NewLogger().Error("buffered only")
		if stderr.Len() != 0 {
			t.Errorf("JSON mode echoed logs: %q", stderr.String())
		}
	})

	t.Run("print with a separate logger", func(t *testing.T) {
		stdout.Reset()
		log := out.NewLogger()
		log.Warn("worker log")
		failure := Failure(errs.NewList(errs.New(errs.Compilation, "unknown method")))
		if err := out.PrintWith(action.Compile, "c.toml", failure, log); err != nil {
			t.Fatalf("PrintWith: %v", err)
		}
		text := stdout.String()
		if !strings.Contains(text, `"worker log"`) || !strings.Contains(text, `"failure"`) {
			t.Errorf("unexpected document:\n%s", text)
		}
	})

	t.Run("print all keeps stdout one JSON value", func(t *testing.T) {
		stdout.Reset()
		first, second := out.NewLogger(), out.NewLogger()
		first.Info("from a")
		second.Info("from b")
		units := []Unit{
			{Source: "a.toml", Outcome: Success(), Logs: first.Buffer()},
			{Source: "b.toml", Outcome: Failure(errs.NewList(errs.New(errs.IO, "gone"))), Logs: second.Buffer()},
		}
		if err := out.PrintAll(action.Compile, units); err != nil {
			t.Fatalf("PrintAll: %v", err)
		}
		var docs []Document
		if err := json.Unmarshal(stdout.Bytes(), &docs); err != nil {
			t.Fatalf("invalid JSON array: %v\n%s", err, stdout.String())
		}
		if len(docs) != 2 || docs[0].Source != "a.toml" || docs[1].Status != StatusFailure {
			t.Fatalf("docs = %+v", docs)
		}
		if len(docs[0].Logs) != 1 || docs[0].Logs[0].Message != "from a" || docs[1].Logs[0].Message != "from b" {
			t.Errorf("logs mixed between units: %+v / %+v", docs[0].Logs, docs[1].Logs)
		}

		stdout.Reset()
		if err := out.PrintAll(action.Compile, units[:1]); err != nil {
			t.Fatalf("PrintAll: %v", err)
		}
		var doc Document
		if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil || doc.Source != "a.toml" {
			t.Errorf("single unit should print a plain document: %v\n%s", err, stdout.String())
		}
	})

	t.Run("crash uses the JSON crash document", func(t *testing.T) {
		stdout.Reset()
		func() {
			defer out.Hook().Recover()
			panic("fatal")
		}()
		var doc map[string]map[string]string
		if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
			t.Fatalf("invalid crash document: %v\n%s", err, stdout.String())
		}
		if doc["result"]["status"] != "rudderc compile: unrecoverable error" {
			t.Errorf("status = %q", doc["result"]["status"])
		}
		if !strings.Contains(doc["result"]["message"], ": fatal\nTrace:\n") {
			t.Errorf("message = %q", doc["result"]["message"])
		}
		if len(exits) != 1 || exits[0] != crash.ExitCode {
			t.Errorf("exits = %v", exits)
		}
	})

	t.Run("close frees the hook for a labelled output", func(t *testing.T) {
		out.Close()
		var buf bytes.Buffer
		next, err := Init(Options{
			Mode:   JSON,
			Action: action.Check,
			Label:  "crash",
			Stdout: &buf,
			Stderr: &stderr,
			Exit:   func(int) {},
		})
		if err != nil {
			t.Fatalf("Init after Close: %v", err)
		}
		defer next.Close()
		func() {
			defer next.Hook().Recover()
			panic("requested")
		}()
		if !strings.Contains(buf.String(), `"rudderc crash: unrecoverable error"`) {
			t.Errorf("crash document = %s", buf.String())
		}
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"terminal", Terminal, false},
		{"", Terminal, false},
		{"xml", Terminal, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}
