// Package store persists layouts for the CLI and the HTTP server.
//
// The generation core never touches a store: callers load an initial
// room/relationship graph before generation and save the result after it.
// Three backends implement [Store]:
//   - [MemoryStore]: in-process, for tests and a single server replica
//   - [FileStore]: one JSON document per layout, for the CLI
//   - [MongoStore]: node-link documents in MongoDB, for shared deployments
//
// Besides create/read/update/delete, every backend answers graph
// pattern queries ([Pattern]): "which class-A rooms have an ADJACENT_TO
// edge to an airlock", across all stored layouts.
//
// # Usage
//
//	st, err := store.NewFileStore("")  // Uses ~/.local/share/gmplayout/layouts/
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	if err := st.Save(ctx, res.Layout); err != nil {
//	    return err
//	}
//	matches, err := st.Match(ctx, store.Pattern{
//	    Room:     store.RoomPattern{Class: facility.ClassA},
//	    Relation: facility.AdjacentTo,
//	    Neighbor: &store.RoomPattern{Name: "airlock"},
//	})
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a layout does not exist.
	ErrNotFound = errors.New("layout not found")

	// ErrInvalidID is returned for layout ids that cannot be stored.
	ErrInvalidID = errors.New("invalid layout id")
)

// Store is the interface for layout storage backends.
type Store interface {
	// Save creates or replaces the layout with l.ID.
	Save(ctx context.Context, l *facility.Layout) error

	// Get returns the layout with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*facility.Layout, error)

	// List returns summaries of all layouts, most recently updated first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a layout. Deleting a missing layout returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Match runs a pattern query across all stored layouts.
	Match(ctx context.Context, p Pattern) ([]Match, error)

	// Close releases the backend.
	Close() error
}

// Summary describes a stored layout without its rooms.
type Summary struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	Rooms         int       `json:"rooms" bson:"rooms"`
	Relationships int       `json:"relationships" bson:"relationships"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// Summarize builds the summary of l.
func Summarize(l *facility.Layout) Summary {
	return Summary{
		ID:            l.ID,
		Name:          l.Name,
		Rooms:         len(l.Rooms),
		Relationships: len(l.Relationships),
		UpdatedAt:     l.UpdatedAt,
	}
}

// ValidateID rejects ids that are empty or could escape a storage directory.
func ValidateID(id string) error {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func sortSummaries(s []Summary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}
