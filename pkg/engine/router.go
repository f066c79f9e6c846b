package engine

import (
	"fmt"

	"github.com/testsmith-ai/testsmith/pkg/models"
)

// Router maps each stage to its registered node. All branching already
// happened inside the node that set CurrentStage; the router only looks the
// next node up and refuses stages outside the known set.
type Router struct {
	nodes map[models.Stage]Node
}

func NewRouter() *Router {
	return &Router{nodes: make(map[models.Stage]Node)}
}

func (r *Router) Register(node Node) error {
	stage := node.Stage()

	if !stage.Valid() {
		return fmt.Errorf("cannot register node for unknown stage %q", stage)
	}

	if _, exists := r.nodes[stage]; exists {
		return fmt.Errorf("node already registered for stage %q", stage)
	}

	r.nodes[stage] = node

	return nil
}

func (r *Router) Node(stage models.Stage) (Node, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("unknown stage %q", stage)
	}

	node, ok := r.nodes[stage]
	if !ok {
		return nil, fmt.Errorf("no node registered for stage %q", stage)
	}

	return node, nil
}
