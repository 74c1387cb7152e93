package slack

import (
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/gabinete/internal/messenger"
)

// Slack rejects sections with more fields than this.
const maxSectionFields = 10

// BuildAlertBlocks lays out an alert as a header, an optional body, the
// labelled fields and, for urgent alerts, a closing context line.
func BuildAlertBlocks(alert messenger.Alert) []slacklib.Block {
	title := alert.Title
	if alert.Urgent() {
		title = ":rotating_light: " + title
	}
	blocks := []slacklib.Block{
		slacklib.NewHeaderBlock(slacklib.NewTextBlockObject(slacklib.PlainTextType, title, true, false)),
	}

	if alert.Body != "" {
		blocks = append(blocks, slacklib.NewSectionBlock(markdown(alert.Body), nil, nil))
	}

	if n := min(len(alert.Fields), maxSectionFields); n > 0 {
		fields := make([]*slacklib.TextBlockObject, n)
		for i, f := range alert.Fields[:n] {
			fields[i] = markdown("*" + f.Label + ":*\n" + f.Value)
		}
		blocks = append(blocks, slacklib.NewSectionBlock(nil, fields, nil))
	}

	if alert.Urgent() {
		blocks = append(blocks, slacklib.NewContextBlock("", markdown("Prioridade urgente: responder hoje.")))
	}

	return blocks
}

func markdown(text string) *slacklib.TextBlockObject {
	return slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false)
}
