// ABOUTME: Graph of how a record moved between groups over its history
// ABOUTME: Nodes are groups, edges are group-change entries labeled with actor and time
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/fichas/models"
	"github.com/harperreed/fichas/provenance"
)

const outsideNode = "outside"

type GraphGenerator struct {
	synth *provenance.Synthesizer
	namer provenance.GroupNamer
}

// NewGraphGenerator creates a generator. A nil namer shows raw group ids.
func NewGraphGenerator(synth *provenance.Synthesizer, namer provenance.GroupNamer) *GraphGenerator {
	if synth == nil {
		synth = provenance.New(nil, nil, namer)
	}
	if namer == nil {
		namer = provenance.Directory{}
	}
	return &GraphGenerator{synth: synth, namer: namer}
}

// GenerateGroupFlow renders entries, oldest first, as a DOT graph. Entries
// that are not group changes are skipped.
func (g *GraphGenerator) GenerateGroupFlow(ctx context.Context, title string, entries []models.HistoryEntry) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)
	if title != "" {
		graph.SetLabel(title)
	}

	nodes := make(map[string]*cgraph.Node)
	node := func(groupID *string) (*cgraph.Node, error) {
		key := outsideNode
		label := "(no group)"
		if groupID != nil {
			key = "group_" + *groupID
			label = g.namer.GroupName(*groupID)
		}
		if n, ok := nodes[key]; ok {
			return n, nil
		}
		n, err := graph.CreateNodeByName(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create group node: %w", err)
		}
		n.SetLabel(label)
		if groupID == nil {
			n.SetShape("point")
		} else {
			n.SetShape("box")
			n.SetStyle("filled")
			n.SetFillColor("lightblue")
		}
		nodes[key] = n
		return n, nil
	}

	step := 0
	for _, entry := range entries {
		if provenance.Classify(entry) != models.ActionGroupChange {
			continue
		}
		step++

		from, err := node(entry.PreviousGroupID)
		if err != nil {
			return "", err
		}
		to, err := node(entry.GroupID)
		if err != nil {
			return "", err
		}

		edge, err := graph.CreateEdgeByName(fmt.Sprintf("move_%d", step), from, to)
		if err != nil {
			return "", fmt.Errorf("failed to create move edge: %w", err)
		}
		label := fmt.Sprintf("%d. %s", step, g.synth.ResolveActor(entry))
		if ts := g.synth.ResolveTimestamp(entry); ts != "" {
			label += "\n" + ts
		}
		edge.SetLabel(label)
		if entry.GroupID == nil {
			edge.SetStyle("dashed")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}

// Chronological returns entries oldest first, given newest-first input.
func Chronological(entries []models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// FlowSize reports how many nodes and edges GenerateGroupFlow draws for entries.
func FlowSize(entries []models.HistoryEntry) (nodes, edges int) {
	seen := make(map[string]bool)
	mark := func(groupID *string) {
		key := outsideNode
		if groupID != nil {
			key = "group_" + *groupID
		}
		seen[key] = true
	}
	for _, entry := range entries {
		if provenance.Classify(entry) != models.ActionGroupChange {
			continue
		}
		edges++
		mark(entry.PreviousGroupID)
		mark(entry.GroupID)
	}
	return len(seen), edges
}
