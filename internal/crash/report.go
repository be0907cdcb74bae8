package crash

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Tool is the name crash reports are attributed to.
const Tool = "rudderc"

var failureColor = color.New(color.FgRed, color.Bold)

// Report describes one unrecoverable failure.
type Report struct {
	Action   string
	Message  string
	Location *Location
	Frames   []StackFrame // nil when backtraces are disabled
}

// Compose builds the human-readable failure message. The tool prefix is
// coloured unless color.NoColor is set.
func (r *Report) Compose() string {
	return r.compose(failureColor.Sprint(Tool + " failure"))
}

func (r *Report) compose(prefix string) string {
	at := ""
	if r.Location != nil {
		at = " at '" + r.Location.String() + "'"
	}
	trace := ""
	if r.Frames != nil {
		trace = FormatTrace(r.Frames)
	}
	return fmt.Sprintf("%s: an unrecoverable error occurred%s: %s%s", prefix, at, r.Message, trace)
}

// crashDocument is the standalone JSON shape of a crash report. It is not
// the structured report shape: consumers tell the two apart by their keys.
type crashDocument struct {
	Result crashResult `json:"result"`
}

type crashResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteJSON writes the crash document. The message is never coloured.
func (r *Report) WriteJSON(w io.Writer) error {
	doc := crashDocument{Result: crashResult{
		Status:  fmt.Sprintf("%s %s: unrecoverable error", Tool, r.Action),
		Message: r.compose(Tool + " failure"),
	}}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteText writes the composed message followed by a newline.
func (r *Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Compose())
	return err
}
