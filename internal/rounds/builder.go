// Package rounds flattens a linear conversation path into the fixed
// seven-column row schema.
package rounds

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/coursekit/roundex/internal/convo"
)

// Row is one prompt/response exchange, matching the workbook schema.
type Row struct {
	Index        int
	Prompt       string
	PromptUpload string
	ThoughtTime  string
	Thought      string
	Response     string
	ResponseCode string
}

var (
	codeBlockRe = regexp.MustCompile("(?s)```([\\w.+-]*)\n(.*?)```")
	durationRe  = regexp.MustCompile(`(?i)thought\s+for\s+([0-9]+(?:\.[0-9]+)?)\s*(?:s|seconds?)`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
)

type pending struct {
	prompt       string
	promptUpload string
	responses    []string
	thoughts     []string
	times        []string
}

// Build folds the path into rounds. A user message with text opens a round;
// visible assistant messages feed it. Rounds are emitted even when the
// response stayed empty, since that signals an interrupted generation.
func Build(path []convo.Node) []Row {
	var collected []pending
	var current *pending

	for _, n := range path {
		text := strings.TrimSpace(n.Text)

		if n.Role == "user" && text != "" {
			if current != nil {
				collected = append(collected, *current)
			}
			current = &pending{
				prompt:       text,
				promptUpload: strings.Join(n.Uploads, "; "),
			}
			continue
		}

		if current == nil || !(visibleAssistant(n) || visibleTool(n)) {
			continue
		}

		switch n.ContentType {
		case "text":
			if text != "" {
				current.responses = append(current.responses, text)
			}
		case "thoughts":
			for _, th := range n.Thoughts {
				block := th.Summary
				if th.Summary != "" && th.Content != "" {
					block = th.Summary + "\n" + th.Content
				} else if block == "" {
					block = th.Content
				}
				if block != "" {
					current.thoughts = append(current.thoughts, block)
				}
			}
		case "reasoning_recap":
			if d := durationText(n); d != "" {
				current.times = append(current.times, d)
			}
		}
	}
	if current != nil {
		collected = append(collected, *current)
	}

	rows := make([]Row, 0, len(collected))
	for i, p := range collected {
		response := strings.Join(p.responses, "\n\n")
		prose, code := splitCode(response)
		rows = append(rows, Row{
			Index:        i + 1,
			Prompt:       p.prompt,
			PromptUpload: p.promptUpload,
			ThoughtTime:  strings.Join(p.times, "; "),
			Thought:      thoughtText(p.thoughts, p.times),
			Response:     prose,
			ResponseCode: code,
		})
	}
	return rows
}

// visibleAssistant filters to assistant messages the page actually renders.
// Hidden recipients (tool channels, bio) and scaffolding content types are
// not part of any round.
func visibleAssistant(n convo.Node) bool {
	if n.Role != "assistant" || n.Recipient != "all" {
		return false
	}
	switch n.ContentType {
	case "text", "thoughts", "reasoning_recap":
		return true
	}
	return false
}

// visibleTool admits tool output the page renders as part of the final
// answer. It merges into the surrounding round's response rather than
// forming a round of its own.
func visibleTool(n convo.Node) bool {
	return n.Role == "tool" && n.Recipient == "all" && n.ContentType == "text"
}

// splitCode separates fenced code blocks from prose. Blocks keep their
// fence and language tag in the code column; the prose keeps everything
// else with blank runs collapsed.
func splitCode(response string) (prose, code string) {
	if response == "" {
		return "", ""
	}
	matches := codeBlockRe.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return response, ""
	}

	var blocks []string
	for _, m := range matches {
		body := strings.Trim(m[2], "\n")
		if strings.TrimSpace(body) == "" {
			continue
		}
		blocks = append(blocks, "```"+m[1]+"\n"+body+"\n```")
	}

	prose = codeBlockRe.ReplaceAllString(response, "")
	prose = blankRunRe.ReplaceAllString(prose, "\n\n")
	return strings.TrimSpace(prose), strings.Join(blocks, "\n\n")
}

// durationText renders the reasoning duration, preferring the timing
// metadata and falling back to the recap sentence.
func durationText(n convo.Node) string {
	if n.ReasoningDurationSec != nil {
		return formatSeconds(*n.ReasoningDurationSec)
	}
	if m := durationRe.FindStringSubmatch(n.RecapText); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return formatSeconds(f)
		}
	}
	return ""
}

func formatSeconds(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%ds", int64(v))
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "s"
}

// thoughtText interleaves thought blocks with their durations the way the
// share page presents them.
func thoughtText(blocks, times []string) string {
	var segments []string
	for i, block := range blocks {
		seg := block
		if i < len(times) {
			seg += "\n\nThought for " + times[i] + "\nDone"
		}
		segments = append(segments, seg)
	}
	for i := len(blocks); i < len(times); i++ {
		segments = append(segments, "Thought for "+times[i]+"\nDone")
	}
	return strings.Join(segments, "\n\n")
}
