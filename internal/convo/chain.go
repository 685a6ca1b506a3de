package convo

import (
	"strconv"
	"strings"
)

// Parse extracts the conversation from a fetched share page and returns the
// selected message path in root-to-leaf order. Edit branches not on the
// path from the page's current node to the root are discarded.
func Parse(body string) ([]Node, error) {
	escaped, ok := flightPayload(body)
	if !ok {
		return nil, errMissing("payload_not_found")
	}
	payload, err := decodePayload(escaped)
	if err != nil {
		return nil, err
	}
	conv, err := findConversation(payload)
	if err != nil {
		return nil, err
	}
	return mainChain(conv)
}

// mainChain walks parent links from the current node to the root, then
// reverses. Nodes without a timestamped message (the synthetic root, hidden
// scaffolding) are dropped from the result but still walked through.
func mainChain(conv map[string]any) ([]Node, error) {
	mapping, ok := conv["mapping"].(map[string]any)
	if !ok {
		return nil, errMissing("mapping_missing")
	}
	current, ok := conv["current_node"].(string)
	if !ok || current == "" {
		return nil, errMissing("current_node_missing")
	}

	var chain []Node
	seen := make(map[string]bool)
	nodeID := current

	for nodeID != "" {
		if seen[nodeID] {
			return nil, errMalformed("node_cycle_detected")
		}
		seen[nodeID] = true

		raw, ok := mapping[nodeID]
		if !ok {
			// The producing service guarantees parent links resolve; a
			// dangling id means the state is corrupt, not branched.
			return nil, errMalformed("dangling_node_" + nodeID)
		}
		node, ok := raw.(map[string]any)
		if !ok {
			return nil, errMalformed("node_not_object")
		}

		parentID, _ := node["parent"].(string)
		if msg, ok := node["message"].(map[string]any); ok {
			n := buildNode(nodeID, parentID, msg)
			if n.CreateTime > 0 {
				chain = append(chain, n)
			}
		}
		nodeID = parentID
	}

	// Leaf-first from the walk; flip to conversation order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func buildNode(id, parentID string, msg map[string]any) Node {
	n := Node{ID: id, ParentID: parentID}

	if author, ok := msg["author"].(map[string]any); ok {
		n.Role, _ = author["role"].(string)
	}
	n.Recipient, _ = msg["recipient"].(string)
	if ct, ok := msg["create_time"].(float64); ok {
		n.CreateTime = ct
	}

	content, _ := msg["content"].(map[string]any)
	n.ContentType, _ = content["content_type"].(string)

	if parts, ok := content["parts"].([]any); ok {
		text := ""
		for _, p := range parts {
			s, ok := p.(string)
			if !ok {
				continue
			}
			if text != "" {
				text += "\n"
			}
			text += s
		}
		n.Text = text
	}

	metadata, _ := msg["metadata"].(map[string]any)
	n.Uploads = attachmentNames(metadata, msg)

	if thoughts, ok := content["thoughts"].([]any); ok {
		for _, t := range thoughts {
			item, ok := t.(map[string]any)
			if !ok {
				continue
			}
			summary, _ := item["summary"].(string)
			detail, _ := item["content"].(string)
			n.Thoughts = append(n.Thoughts, Thought{
				Summary: strings.TrimSpace(summary),
				Content: strings.TrimSpace(detail),
			})
		}
	}

	n.ReasoningDurationSec = durationSec(metadata["finished_duration_sec"])
	if recap, ok := content["content"].(string); ok {
		n.RecapText = strings.TrimSpace(recap)
	}

	return n
}

// attachmentNames collects upload filenames, preferring the metadata list
// over the message-level one the way share pages populate them.
func attachmentNames(metadata, msg map[string]any) []string {
	lists := [][]any{}
	if l, ok := metadata["attachments"].([]any); ok && len(l) > 0 {
		lists = append(lists, l)
	} else if l, ok := msg["attachments"].([]any); ok {
		lists = append(lists, l)
	}

	var names []string
	for _, list := range lists {
		for _, a := range list {
			att, ok := a.(map[string]any)
			if !ok {
				continue
			}
			if name, ok := att["name"].(string); ok {
				if cleaned := strings.TrimSpace(name); cleaned != "" {
					names = append(names, cleaned)
				}
			}
		}
	}
	return names
}

func durationSec(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return &f
		}
	}
	return nil
}
