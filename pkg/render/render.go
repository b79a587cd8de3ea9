// Package render draws process graphs as Graphviz DOT documents.
package render

import (
	"os"

	"github.com/emicklei/dot"

	"github.com/logforge/logforge/pkg/errors"
	"github.com/logforge/logforge/pkg/graph"
)

// DOT renders the graph as a left-to-right flow diagram: terminals as
// colored ovals, activities as filled boxes.
func DOT(g *graph.Graph) string {
	d := dot.NewGraph(dot.Directed)
	d.Attr("rankdir", "LR")

	for _, name := range g.Nodes() {
		node := d.Node(name)
		switch name {
		case graph.Start:
			node.Attr("shape", "oval").Attr("style", "filled").Attr("fillcolor", "lightgreen")
		case graph.End:
			node.Attr("shape", "oval").Attr("style", "filled").Attr("fillcolor", "lightcoral")
		default:
			node.Attr("shape", "box").Attr("style", "filled").Attr("fillcolor", "lightblue")
		}
	}

	for _, e := range g.Edges() {
		d.Edge(d.Node(e[0]), d.Node(e[1]))
	}

	return d.String()
}

// WriteFile renders the graph to a .dot file.
func WriteFile(g *graph.Graph, path string) error {
	if err := os.WriteFile(path, []byte(DOT(g)), 0644); err != nil {
		return errors.Wrap(err, errors.CodeRenderFailed, "failed to write diagram").
			WithContext("path", path)
	}
	return nil
}
