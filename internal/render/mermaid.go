package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/fxgraph/internal/graph"
	"github.com/vk/fxgraph/internal/port"
)

// Overlay carries the state of a pass to paint over the graph.
type Overlay struct {
	Evaluated []string
	Failed    string
}

// Mermaid produces a Mermaid flowchart for g.
//
// Pure instances are drawn as rectangles, impure ones as subroutines and
// external slots as parallelograms. Edges are labelled "output:input"; slot
// bindings are dotted.
func Mermaid(g *graph.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	slots := g.Slots()
	for _, name := range g.SlotNames() {
		fmt.Fprintf(&sb, "    %s[/\"%s: %s\"/]\n", slotID(name), escape(name), escape(port.TypeName(slots[name])))
	}

	for _, inst := range g.Instances() {
		opener, closer := "[", "]"
		if !inst.Definition.Pure {
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s<br/>%s\"%s\n", sanitizeID(inst.ID), opener, escape(inst.ID), escape(inst.Definition.ID), closer)
	}

	for _, e := range g.Edges() {
		if e.From.External() {
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", slotID(e.From.Slot), escape(e.To.Port), sanitizeID(e.To.Instance))
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s:%s\" --> %s\n",
			sanitizeID(e.From.Port.Instance), escape(e.From.Port.Port), escape(e.To.Port), sanitizeID(e.To.Instance))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef evaluated fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		evaluated := append([]string(nil), overlay.Evaluated...)
		sort.Strings(evaluated)
		seen := make(map[string]bool)
		for _, id := range evaluated {
			safeID := sanitizeID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s evaluated;\n", safeID)
		}
		if overlay.Failed != "" {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeID(overlay.Failed))
		}
	}

	return sb.String()
}

func slotID(name string) string { return "slot_" + sanitizeID(name) }

func sanitizeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}

func escape(s string) string { return strings.ReplaceAll(s, "\"", "'") }
