package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/aretw0/plotline/internal/cli"
	"github.com/aretw0/plotline/pkg/domain"
	"github.com/spf13/cobra"
)

// readFlow reads a flow document (JSON) named by the first argument.
func readFlow(args []string) (domain.Flow, error) {
	text, err := cli.ReadText(inputArg(args), os.Stdin)
	if err != nil {
		return domain.Flow{}, err
	}
	var flow domain.Flow
	if err := json.Unmarshal([]byte(text), &flow); err != nil {
		return domain.Flow{}, &domain.ValidationError{Reason: "invalid flow JSON: " + err.Error()}
	}
	return flow, nil
}

// flowOrSynthesize treats the input as a flow document when it is one,
// and as scenario text to synthesize otherwise.
func flowOrSynthesize(cmd *cobra.Command, app *cli.App, args []string) (domain.Flow, error) {
	text, err := cli.ReadText(inputArg(args), os.Stdin)
	if err != nil {
		return domain.Flow{}, err
	}

	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "{") {
		var flow domain.Flow
		if err := json.Unmarshal([]byte(trimmed), &flow); err == nil && len(flow.Nodes) > 0 {
			out, _, err := app.Manager.Layout(flow)
			return out, err
		}
	}

	res, err := app.Manager.Parse(cmd.Context(), text, "")
	if err != nil {
		return domain.Flow{}, err
	}
	if res.Diagnostic.Fallback {
		app.Logger.Warn("Showing fallback flow", "stage", res.Diagnostic.Stage, "error", res.Diagnostic.Err)
	}
	return app.Manager.LayoutEngine().Apply(res.Flow)
}
