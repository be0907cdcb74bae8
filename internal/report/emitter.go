package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"rudderc/internal/action"
	"rudderc/internal/logger"
)

// timeUnavailable replaces the timestamp when the clock is unusable.
const timeUnavailable = "could not get correct time"

// Document is the structured report of one unit of work.
type Document struct {
	Action string          `json:"action"`
	Time   string          `json:"time"`
	Status Status          `json:"status"`
	Source string          `json:"source"`
	Logs   []logger.Entry  `json:"logs"`
	Data   []action.Result `json:"data"`
	Errors []string        `json:"errors"`
}

// Emitter renders final reports.
type Emitter struct {
	Mode Mode
	Out  io.Writer        // defaults to os.Stdout
	Now  func() time.Time // defaults to time.Now
}

// BuildDocument assembles the structured report without serializing it.
func (e *Emitter) BuildDocument(a fmt.Stringer, source string, outcome Outcome, logs *logger.Buffer) Document {
	return Document{
		Action: a.String(),
		Time:   epochMillis(e.now()),
		Status: outcome.Status(),
		Source: source,
		Logs:   logs.Entries(),
		Data:   outcome.Records(),
		Errors: outcome.Errors(),
	}
}

// Unit is a finished unit of work waiting for its report.
type Unit struct {
	Source  string
	Outcome Outcome
	Logs    *logger.Buffer
}

// Emit prints the report for one unit of work. Buffered logs are only part
// of the JSON document. A document that cannot be encoded is a programming
// error and panics.
func (e *Emitter) Emit(a fmt.Stringer, source string, outcome Outcome, logs *logger.Buffer) error {
	if e.Mode == JSON {
		return e.writeJSON(e.BuildDocument(a, source, outcome, logs))
	}
	return e.writeLine(source, outcome)
}

// EmitAll prints the reports of several units in order. JSON mode writes a
// single array with one document per unit, so the output stays one valid
// JSON value; terminal mode writes one line per unit.
func (e *Emitter) EmitAll(a fmt.Stringer, units []Unit) error {
	if e.Mode == JSON {
		docs := make([]Document, 0, len(units))
		for _, u := range units {
			docs = append(docs, e.BuildDocument(a, u.Source, u.Outcome, u.Logs))
		}
		return e.writeJSON(docs)
	}
	for _, u := range units {
		if err := e.writeLine(u.Source, u.Outcome); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Emitter) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Errorf("building JSON output led to an error: %w", err))
	}
	data = append(data, '\n')
	_, err = e.out().Write(data)
	return err
}

func (e *Emitter) writeLine(source string, outcome Outcome) error {
	dests := destinations(outcome.Records())
	if outcome.Failed() {
		_, err := fmt.Fprintf(e.out(), "An error occurred, could not create %s from '%s'\n", dests, source)
		return err
	}
	_, err := fmt.Fprintf(e.out(), "%s written\n", dests)
	return err
}

func (e *Emitter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// destinations quotes and comma-joins the destination of each record that has one.
func destinations(records []action.Result) string {
	quoted := make([]string, 0, len(records))
	for _, r := range records {
		if r.Destination != nil {
			quoted = append(quoted, "'"+*r.Destination+"'")
		}
	}
	return strings.Join(quoted, ", ")
}

// epochMillis renders t as milliseconds since the Unix epoch.
func epochMillis(t time.Time) string {
	if t.IsZero() || t.Before(time.Unix(0, 0)) {
		return timeUnavailable
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
