// Package store keeps named graph snapshots.
//
// A snapshot is the plain serializable export of a graph
// ([model.GraphData]) saved under a caller-chosen name. Two backends are
// provided:
//   - [FileStore]: one JSON file per snapshot, used by the CLI
//   - [MongoStore]: one document per snapshot, used by shared deployments
//
// # Usage
//
//	st, err := store.NewFileStore(dir)
//	if err != nil {
//	    return err
//	}
//	snap, err := st.Save(ctx, "checkout-flow", g.GraphData())
//
//	snap, err = st.Load(ctx, "checkout-flow")
//	if errors.Is(err, store.ErrNotFound) {
//	    // nothing saved under that name
//	}
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/flowmodel/pkg/cache"
	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/model"
)

// ErrNotFound is returned when no snapshot exists under a name.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "snapshot not found")

// Snapshot is a stored graph export with bookkeeping metadata.
type Snapshot struct {
	Name    string          `json:"name" bson:"_id"`
	Hash    string          `json:"hash" bson:"hash"`
	Nodes   int             `json:"nodes" bson:"nodes"`
	Edges   int             `json:"edges" bson:"edges"`
	SavedAt time.Time       `json:"saved_at" bson:"saved_at"`
	Data    model.GraphData `json:"data" bson:"data"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores data under name, replacing any previous snapshot.
	Save(ctx context.Context, name string, data model.GraphData) (*Snapshot, error)

	// Load returns the snapshot saved under name, or an error matching
	// ErrNotFound.
	Load(ctx context.Context, name string) (*Snapshot, error)

	// List returns all snapshots sorted by name, without their Data.
	List(ctx context.Context) ([]Snapshot, error)

	// Delete removes a snapshot. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	Close() error
}

// newSnapshot validates name and fills in the metadata for data.
func newSnapshot(name string, data model.GraphData) (*Snapshot, error) {
	if err := errors.ValidateSnapshotName(name); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", name)
	}
	return &Snapshot{
		Name:    name,
		Hash:    cache.Hash(raw),
		Nodes:   len(data.Nodes),
		Edges:   len(data.Edges),
		SavedAt: time.Now().UTC(),
		Data:    data,
	}, nil
}

func notFound(name string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "snapshot %q", name)
}
