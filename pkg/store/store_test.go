package store

import (
	"context"
	stderrors "errors"
	"os"
	"testing"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/model"
)

func sampleData() model.GraphData {
	g := model.New(model.Options{})
	a, _ := g.AddNode(model.NodeConfig{ID: "a", Type: "rect", X: 100, Y: 100, Text: &model.TextConfig{Value: "start"}})
	b, _ := g.AddNode(model.NodeConfig{ID: "b", Type: "circle", X: 300, Y: 100})
	_, _ = g.AddEdge(model.EdgeConfig{ID: "e", SourceNodeID: a.ID, TargetNodeID: b.ID})
	return g.GraphData()
}

// exerciseStore runs the behavior every backend must share.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	data := sampleData()

	snap, err := st.Save(ctx, "flow-1", data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.Nodes != 2 || snap.Edges != 1 {
		t.Errorf("Save counts = %d nodes %d edges, want 2/1", snap.Nodes, snap.Edges)
	}
	if len(snap.Hash) != 64 {
		t.Errorf("Save hash = %q, want sha256 hex", snap.Hash)
	}

	got, err := st.Load(ctx, "flow-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Hash != snap.Hash {
		t.Errorf("Load hash = %s, want %s", got.Hash, snap.Hash)
	}
	if len(got.Data.Nodes) != 2 || got.Data.Nodes[0].ID != "a" {
		t.Errorf("Load nodes = %+v", got.Data.Nodes)
	}
	if len(got.Data.Edges) != 1 || got.Data.Edges[0].SourceNodeID != "a" {
		t.Errorf("Load edges = %+v", got.Data.Edges)
	}
	if got.Data.Nodes[0].Text == nil || got.Data.Nodes[0].Text.Value != "start" {
		t.Errorf("Load lost node text: %+v", got.Data.Nodes[0].Text)
	}

	if _, err := st.Save(ctx, "flow-0", model.GraphData{}); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	list, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "flow-0" || list[1].Name != "flow-1" {
		t.Fatalf("List = %+v, want [flow-0 flow-1]", list)
	}
	if len(list[1].Data.Nodes) != 0 {
		t.Error("List should omit snapshot data")
	}
	if list[1].Nodes != 2 {
		t.Errorf("List counts = %d, want 2", list[1].Nodes)
	}

	if err := st.Delete(ctx, "flow-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Load(ctx, "flow-1"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Load after Delete err = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, "flow-1"); err != nil {
		t.Errorf("Delete of missing snapshot should not fail: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer st.Close()
	exerciseStore(t, st)
}

func TestFileStoreNotFound(t *testing.T) {
	st, _ := NewFileStore(t.TempDir())
	_, err := st.Load(context.Background(), "nope")
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err code = %s, want NOT_FOUND", errors.GetCode(err))
	}
}

func TestFileStoreInvalidName(t *testing.T) {
	st, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	tests := []string{"", "../escape", "a/b", "-leading"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := st.Save(ctx, name, model.GraphData{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Save(%q) err = %v, want INVALID_INPUT", name, err)
			}
		})
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewFileStore(dir)
	if err := os.WriteFile(st.snapshotPath("bad"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Load(context.Background(), "bad"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(bad) err = %v, want INVALID_FORMAT", err)
	}
	list, err := st.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("List should skip corrupt files, got %+v", list)
	}
}

func TestNewFileStoreEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FLOWMODEL_MONGO_URI")
	if uri == "" {
		t.Skip("FLOWMODEL_MONGO_URI not set")
	}
	ctx := context.Background()
	st, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "flowmodel_test", Collection: "snapshots_" + t.Name()})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer st.Close()
	defer st.coll.Drop(ctx)
	exerciseStore(t, st)
}
