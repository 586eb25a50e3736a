package server

import (
	"context"
	"net/http"

	"github.com/agubarev/orgtree/internal/core"
	"github.com/agubarev/orgtree/pkg/tree"
	"github.com/agubarev/orgtree/pkg/util/report"
)

// HealthStatus is the result of the health endpoint
type HealthStatus struct {
	Status string              `json:"status"`
	Nodes  map[tree.Entity]int `json:"nodes"`
}

// Health reports the node count of every forest
func Health(ctx context.Context, c *core.Core, w http.ResponseWriter, r *http.Request) (result interface{}, aux interface{}, code int, rep *report.Report) {
	rep, _ = report.FromContext(ctx)

	status := HealthStatus{
		Status: "ok",
		Nodes:  make(map[tree.Entity]int, len(tree.Entities())),
	}

	for _, e := range tree.Entities() {
		m, err := c.Manager(e)
		if err != nil {
			return nil, nil, http.StatusServiceUnavailable, rep.WithError("unavailable", err)
		}

		status.Nodes[e] = m.Len()
	}

	return status, nil, http.StatusOK, rep
}
