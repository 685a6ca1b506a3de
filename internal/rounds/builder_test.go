package rounds

import (
	"strings"
	"testing"

	"github.com/coursekit/roundex/internal/convo"
)

func user(text string, uploads ...string) convo.Node {
	return convo.Node{Role: "user", Text: text, Uploads: uploads}
}

func assistant(text string) convo.Node {
	return convo.Node{Role: "assistant", Recipient: "all", ContentType: "text", Text: text}
}

func TestBuild_SingleRound(t *testing.T) {
	rows := Build([]convo.Node{
		user("What is Go?"),
		assistant("A programming language."),
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 round, got %d", len(rows))
	}
	r := rows[0]
	if r.Index != 1 {
		t.Errorf("index = %d", r.Index)
	}
	if r.Prompt != "What is Go?" {
		t.Errorf("prompt = %q", r.Prompt)
	}
	if r.Response != "A programming language." {
		t.Errorf("response = %q", r.Response)
	}
	if r.PromptUpload != "" || r.ThoughtTime != "" || r.Thought != "" || r.ResponseCode != "" {
		t.Errorf("expected empty optional fields, got %+v", r)
	}
}

func TestBuild_ContiguousIndices(t *testing.T) {
	var path []convo.Node
	for i := 0; i < 5; i++ {
		path = append(path, user("q"), assistant("a"))
	}
	rows := Build(path)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rounds, got %d", len(rows))
	}
	for i, r := range rows {
		if r.Index != i+1 {
			t.Errorf("rows[%d].Index = %d", i, r.Index)
		}
	}
}

func TestBuild_ReasoningAndCode(t *testing.T) {
	dur := 12.0
	path := []convo.Node{
		user("Write a fib function"),
		{Role: "assistant", Recipient: "all", ContentType: "thoughts", Thoughts: []convo.Thought{
			{Summary: "Planning", Content: "Recursive vs iterative."},
		}},
		{Role: "assistant", Recipient: "all", ContentType: "reasoning_recap", ReasoningDurationSec: &dur},
		assistant("Here you go:\n\n```python\ndef fib(n):\n    return n if n < 2 else fib(n-1) + fib(n-2)\n```\n\nThat's it."),
	}
	rows := Build(path)
	if len(rows) != 1 {
		t.Fatalf("expected 1 round, got %d", len(rows))
	}
	r := rows[0]
	if r.ThoughtTime != "12s" {
		t.Errorf("thought time = %q, want 12s", r.ThoughtTime)
	}
	if !strings.Contains(r.Thought, "Planning") || !strings.Contains(r.Thought, "Thought for 12s") {
		t.Errorf("thought = %q", r.Thought)
	}
	if !strings.Contains(r.ResponseCode, "```python") || !strings.Contains(r.ResponseCode, "def fib(n):") {
		t.Errorf("response code = %q", r.ResponseCode)
	}
	if strings.Contains(r.Response, "def fib") {
		t.Errorf("response should exclude code, got %q", r.Response)
	}
	if !strings.Contains(r.Response, "Here you go:") || !strings.Contains(r.Response, "That's it.") {
		t.Errorf("response prose = %q", r.Response)
	}
}

func TestBuild_DurationFromRecapText(t *testing.T) {
	path := []convo.Node{
		user("q"),
		{Role: "assistant", Recipient: "all", ContentType: "reasoning_recap", RecapText: "Thought for 4.50 seconds"},
		assistant("a"),
	}
	rows := Build(path)
	if rows[0].ThoughtTime != "4.5s" {
		t.Errorf("thought time = %q, want 4.5s", rows[0].ThoughtTime)
	}
}

func TestBuild_EmptyResponseRoundKept(t *testing.T) {
	rows := Build([]convo.Node{
		user("first"),
		assistant("answered"),
		user("second, generation cut off"),
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(rows))
	}
	if rows[1].Response != "" {
		t.Errorf("expected empty response, got %q", rows[1].Response)
	}
	if rows[1].Index != 2 {
		t.Errorf("index = %d", rows[1].Index)
	}
}

func TestBuild_Uploads(t *testing.T) {
	rows := Build([]convo.Node{
		user("check these", "a.pdf", "b.csv"),
		assistant("done"),
	})
	if rows[0].PromptUpload != "a.pdf; b.csv" {
		t.Errorf("prompt upload = %q", rows[0].PromptUpload)
	}
}

func TestBuild_SkipsHiddenMessages(t *testing.T) {
	rows := Build([]convo.Node{
		{Role: "system", Text: "system prompt"},
		user("q"),
		{Role: "assistant", Recipient: "browser", ContentType: "code", Text: "search(...)"},
		{Role: "tool", Recipient: "assistant", ContentType: "tether_quote", Text: "quoted source"},
		assistant("visible answer"),
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 round, got %d", len(rows))
	}
	if rows[0].Response != "visible answer" {
		t.Errorf("response = %q", rows[0].Response)
	}
}

func TestBuild_VisibleToolOutputMerged(t *testing.T) {
	rows := Build([]convo.Node{
		user("run it"),
		{Role: "tool", Recipient: "all", ContentType: "text", Text: "exit code 0"},
		assistant("The run succeeded."),
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 round, got %d", len(rows))
	}
	if rows[0].Response != "exit code 0\n\nThe run succeeded." {
		t.Errorf("response = %q", rows[0].Response)
	}
}

func TestBuild_MultipleResponseSegments(t *testing.T) {
	rows := Build([]convo.Node{
		user("q"),
		assistant("part one"),
		assistant("part two"),
	})
	if rows[0].Response != "part one\n\npart two" {
		t.Errorf("response = %q", rows[0].Response)
	}
}

func TestBuild_AssistantBeforeAnyPromptIgnored(t *testing.T) {
	rows := Build([]convo.Node{
		assistant("stray greeting"),
		user("q"),
		assistant("a"),
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 round, got %d", len(rows))
	}
	if rows[0].Response != "a" {
		t.Errorf("response = %q", rows[0].Response)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := map[float64]string{
		12:    "12s",
		4.5:   "4.5s",
		7.25:  "7.25s",
		360:   "360s",
		0.333: "0.33s",
	}
	for in, want := range cases {
		if got := formatSeconds(in); got != want {
			t.Errorf("formatSeconds(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitCode_UntaggedFence(t *testing.T) {
	prose, code := splitCode("before\n\n```\nplain block\n```\n\nafter")
	if !strings.Contains(code, "plain block") {
		t.Errorf("code = %q", code)
	}
	if prose != "before\n\nafter" {
		t.Errorf("prose = %q", prose)
	}
}
