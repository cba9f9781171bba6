package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/autopeer-io/scootshare/internal/protocol"
)

const (
	msgInvalidChoice = "Invalid choice."
	msgGoodbye       = "Goodbye!"
	msgPaymentFailed = "Payment failed. Please try again."
	msgRideStarted   = "Scooter rented successfully! Enjoy your ride."
	msgRideEnded     = "Scooter returned successfully. Thanks for riding!"

	prompt = "Select: "
)

// Renderer writes the terminal's output. Write errors are ignored; the
// console is best effort.
type Renderer struct {
	w io.Writer
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Menu prints the menu of view followed by the input prompt.
func (r *Renderer) Menu(view View) {
	m := menus[view]

	table := uitable.New()
	table.Separator = " "
	for _, o := range m.options {
		table.AddRow(o.Key+".", o.Label)
	}
	fmt.Fprintf(r.w, "\n== %s ==\n%s\n%s", m.title, table, prompt)
}

// Prompt prints the input prompt alone, for a menu that is still on screen.
func (r *Renderer) Prompt() {
	fmt.Fprint(r.w, prompt)
}

func (r *Renderer) Notice(msg string) {
	fmt.Fprintln(r.w, msg)
}

// VehicleState prints a vehicle state announcement.
func (r *Renderer) VehicleState(state protocol.VehicleState) {
	switch state {
	case protocol.VehicleRunning:
		r.Notice(msgRideStarted)
	case protocol.VehicleLocked:
		r.Notice(msgRideEnded)
	default:
		r.Notice("Scooter now in state: " + string(state))
	}
}

// Telemetry prints one "Label: value" line per field.
func (r *Renderer) Telemetry(fields []protocol.Field) {
	title := cases.Title(language.English)
	fmt.Fprintln(r.w, "\n== Scooter Information ==")
	for _, f := range fields {
		fmt.Fprintf(r.w, "%s: %s\n", title.String(strings.ReplaceAll(f.Key, "_", " ")), f.Value)
	}
}
