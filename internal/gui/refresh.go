package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/gitpilot-go/gitpilot/internal/snapshot"
)

// maxInflightRefreshes bounds queued refreshes: the loader serialises them
// and a waiting one reads fresh data, so a third would add nothing.
const maxInflightRefreshes = 2

type refreshState struct {
	inflight int
}

// refreshAsync loads a new snapshot off the Tk thread. Snapshots overtaken by
// a newer load are dropped when they arrive.
func (a *Controller) refreshAsync(reason string) {
	if a.state.refresh.inflight >= maxInflightRefreshes {
		slog.Debug("refresh already queued", slog.String("reason", reason))
		return
	}
	a.state.refresh.inflight++
	loader := a.loader
	ctx := a.ctx
	slog.Debug("refresh requested", slog.String("reason", reason))
	go func() {
		snap, err := loader.Load(ctx)
		PostEvent(func() {
			a.state.refresh.inflight--
			a.onSnapshotLoaded(loader, snap, err)
		}, false)
	}()
}

func (a *Controller) onSnapshotLoaded(loader *snapshot.Loader, snap *snapshot.Snapshot, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		slog.Error("failed to refresh", slog.Any("error", err))
		a.setStatus(fmt.Sprintf("Failed to load repository: %v", err))
		return
	case loader != a.loader || loader.Superseded(snap):
		slog.Debug("discarding superseded snapshot",
			slog.String("refresh", snap.ID),
			slog.Uint64("generation", snap.Generation),
		)
		return
	}
	a.applySnapshot(snap)
}

func (a *Controller) applySnapshot(snap *snapshot.Snapshot) {
	a.data.snap = snap
	a.data.placed = graph.Place(snap.Graph.Rows)
	a.data.shas = make([]string, len(snap.Commits))
	for i, c := range snap.Commits {
		a.data.shas[i] = c.SHA
	}
	a.data.labels = branchLabels(snap, a.cfg.palette)
	a.repo.head = snap.Head
	a.renderBranches()
	a.applyFilterContent(a.state.filter.value)
}
