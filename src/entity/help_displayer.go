package entity

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/clok/kemba"
	"github.com/pterm/pterm"
)

type HelpDisplayer struct {
	Color bool
	Out   io.Writer
}

// Show lists the given tasks with their descriptions and commands.
func (h *HelpDisplayer) Show(tasks []Task) {
	l := kemba.New("entity::HelpDisplayer.Show").Printf
	l("will display %d tasks, color: %v", len(tasks), h.Color)
	if h.Out == nil {
		h.Out = os.Stderr
	}

	if h.Color {
		h.printColoredHelp(tasks)
		return
	}
	h.printBWHelp(tasks)
}

func (h *HelpDisplayer) printColoredHelp(tasks []Task) {
	pterm.DefaultHeader.WithWriter(h.Out).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		WithBackgroundStyle(pterm.NewStyle(pterm.BgWhite)).
		WithMargin(10).
		Println("webeid-deploy " + VERSION)

	data := pterm.TableData{{"Task", "Description", "Commands"}}
	for _, task := range tasks {
		data = append(data, []string{task.Name, task.Desc, strings.Join(task.Commands, "\n")})
	}
	pterm.DefaultTable.WithWriter(h.Out).
		WithHasHeader(true).
		WithRowSeparator("-").
		WithHeaderRowSeparator("-").
		WithData(data).
		Render()
}

func (h *HelpDisplayer) printBWHelp(tasks []Task) {
	w := &tabwriter.Writer{}
	w.Init(h.Out, 4, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "Tasks:\t")
	for _, task := range tasks {
		fmt.Fprintf(w, "- %v\t%v\n", task.Name, task.Desc)
		for _, cmd := range task.Commands {
			fmt.Fprintf(w, "\t  %v\n", cmd)
		}
	}
	fmt.Fprintln(w)
}
