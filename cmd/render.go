package cmd

import (
	"fmt"
	"io"

	"github.com/longkey1/gemchat/internal/gemchat/conversation"
)

// renderMessage writes a single conversation message in chat form.
// Answers with line segmentation print headings and the first of several lines
// flush left and body lines indented; other answers print their text as is.
func renderMessage(w io.Writer, msg conversation.Message) {
	switch {
	case msg.Role == conversation.RoleQuestion:
		fmt.Fprintf(w, "You> %s\n", msg.Text)
	case msg.IsError():
		fmt.Fprintf(w, "Error: %s\n", msg.Text)
	case len(msg.Lines) > 0:
		fmt.Fprintln(w, "Gemini>")
		for i, line := range msg.Lines {
			if i == 0 && !line.Heading && len(msg.Lines) > 1 {
				fmt.Fprintf(w, "%s\n", line.Text)
				continue
			}
			if line.Heading {
				fmt.Fprintf(w, "\n%s\n", line.Text)
				continue
			}
			fmt.Fprintf(w, "  %s\n", line.Text)
		}
	default:
		fmt.Fprintf(w, "Gemini> %s\n", msg.Text)
	}
}

// renderHistory writes the recent questions, most recent first
func renderHistory(w io.Writer, history []string) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No history found.")
		return
	}
	for i, q := range history {
		fmt.Fprintf(w, "%2d. %s\n", i+1, q)
	}
}
