package pipeline

import (
	"fmt"

	"github.com/matzehuels/gmplayout/pkg/compliance"
)

// Thresholds for metric-driven suggestions.
const (
	lowFlowEfficiency     = 0.6
	highContaminationRisk = 0.5
	highCleanroomShare    = 60.0
)

// suggest turns compliance failures and weak metrics into advice. Failures
// come first, most severe first.
func suggest(report *compliance.Report, m Metrics) []string {
	var out []string
	if report != nil {
		for _, f := range report.Failures() {
			if f.Remediation == "" {
				out = append(out, fmt.Sprintf("%s: %s", f.RuleID, f.Message))
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", f.RuleID, f.Remediation))
		}
	}
	if m.FlowEfficiency < lowFlowEfficiency {
		out = append(out, fmt.Sprintf("Flow efficiency is %.2f; move consecutive process rooms closer together.", m.FlowEfficiency))
	}
	if m.ContaminationRisk >= highContaminationRisk {
		out = append(out, fmt.Sprintf("Cross-contamination risk is %.2f; increase the distance between rooms that must not be near each other.", m.ContaminationRisk))
	}
	if m.CleanroomUtilization > highCleanroomShare {
		out = append(out, fmt.Sprintf("%.0f%% of the floor area is classified; keep support functions outside graded areas.", m.CleanroomUtilization))
	}
	return out
}

func (g *generation) explainPositioning() {
	if g.req.Style == StyleIncremental {
		g.explain("Placed %d rooms one at a time on a %gx%g canvas, each at its best scoring candidate.",
			g.sim.Iterations, g.canvas.Width, g.canvas.Height)
		return
	}
	state := "converged"
	if !g.sim.Converged {
		state = "stopped at the iteration cap"
	}
	g.explain("Positioned rooms with the %s style on a %gx%g canvas; the simulation %s after %d iterations.",
		g.req.Style, g.canvas.Width, g.canvas.Height, state, g.sim.Iterations)
}
