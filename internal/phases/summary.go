package phases

import (
	"github.com/clawops/clawup/internal/secrets"
	"github.com/clawops/clawup/internal/ui"
)

// summaryOrder fixes the report layout: required integrations first.
var summaryOrder = []string{
	GroupModelProvider,
	GroupChatBot,
	GroupSecretManager,
	GroupVPNMesh,
	GroupDocuments,
	GroupTasks,
	GroupEmail,
}

// PrintSummary reports the per-integration outcome of a configure run.
func PrintSummary(p *ui.Console, resolutions []secrets.Resolution) {
	byGroup := map[string]secrets.Resolution{}
	for _, res := range resolutions {
		byGroup[res.Spec.Group] = res
	}

	p.Info("")
	p.Banner("Integration summary")
	for _, group := range summaryOrder {
		res, ok := byGroup[group]
		if !ok {
			continue
		}
		printLine(p, group, res)
	}
}

func printLine(p *ui.Console, group string, res secrets.Resolution) {
	switch {
	case res.Skipped() && res.Spec.Required:
		p.Fail("%-16s missing (%s)", group, res.Spec.Key)
	case res.Skipped():
		p.Info("➖ %-16s skipped (set %s to enable)", group, res.Spec.Key)
	case res.Warning != nil:
		p.Warn("%-16s configured with warnings: %v", group, res.Warning)
	default:
		p.OK("%-16s connected (%s, via %s)", group, res.Spec.Key, res.Source)
	}
}
