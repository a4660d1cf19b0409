package store

import (
	"context"
	"errors"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

var ErrNotFound = errors.New("not found")

// ProjectStore persists the active project snapshot of each artist so a
// restarted server can resume it.
type ProjectStore interface {
	SaveProject(ctx context.Context, userID string, project model.Project) error
	LoadProject(ctx context.Context, userID string) (model.Project, error)
	DeleteProject(ctx context.Context, userID string) error
}
