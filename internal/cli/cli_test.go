package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowmodel/pkg/model"
)

const testDocument = `{
  "nodes": [
    {"id": "a", "type": "rect", "x": 100, "y": 100, "text": "start"},
    {"id": "b", "type": "rect", "x": 400, "y": 100}
  ],
  "edges": [
    {"id": "e", "type": "line", "sourceNodeId": "a", "targetNodeId": "b"}
  ]
}`

const testScript = `
[[op]]
op = "move"
id = "b"
dy = 50

[[op]]
op = "to-front"
id = "b"
`

// run executes the root command with args inside an isolated XDG layout.
func run(t *testing.T, args ...string) error {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))

	quietUI(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

// quietUI captures status output for the duration of the test.
func quietUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := uiOut
	uiOut = &buf
	t.Cleanup(func() { uiOut = prev })
	return &buf
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	for _, name := range []string{"inspect", "apply", "render", "serve", "explore", "store", "cache", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "graph.json", testDocument)
	sc := writeFile(t, dir, "script.toml", testScript)
	out := filepath.Join(dir, "out.json")

	if err := run(t, "apply", doc, "--script", sc, "-o", out); err != nil {
		t.Fatalf("apply: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var data model.GraphData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(data.Nodes) != 2 || data.Nodes[1].Y != 150 {
		t.Errorf("nodes = %+v, want b at y=150", data.Nodes)
	}
	if data.Edges[0].EndPoint.Y != 150 {
		t.Errorf("edge end Y = %v, want 150", data.Edges[0].EndPoint.Y)
	}
}

func TestApplyRequiresScript(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "graph.json", testDocument)
	if err := run(t, "apply", doc); err == nil {
		t.Error("apply without --script should fail")
	}
}

func TestApplyReportsPartialScript(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "graph.json", testDocument)
	sc := writeFile(t, dir, "bad.toml", testScript+`
[[op]]
op = "add-node"
type = "hexagon"
`)
	err := run(t, "apply", doc, "--script", sc, "-o", filepath.Join(dir, "out.json"))
	if err == nil || !strings.Contains(err.Error(), "2 of 3 ops applied") {
		t.Errorf("err = %v, want partial application report", err)
	}
}

func TestInspectCommand(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "graph.json", testDocument)
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	buf := quietUI(t)

	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"inspect", doc})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Nodes", "Edges", "start", "400"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("inspect output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestInspectMissingFile(t *testing.T) {
	if err := run(t, "inspect", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("inspect of a missing file should fail")
	}
}

func TestRenderDOT(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "graph.json", testDocument)

	if err := run(t, "render", doc, "-f", "dot", "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "graph.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "digraph") {
		t.Errorf("graph.dot is not DOT:\n%s", dot)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "graph.json", testDocument)
	if err := run(t, "render", doc, "-f", "gif"); err == nil {
		t.Error("render with an invalid format should fail")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "graph.json", testDocument)
	out := filepath.Join(dir, "loaded.json")

	quietUI(t)
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", home)
	c := New(&bytes.Buffer{}, LogInfo)
	exec := func(args ...string) error {
		root := c.RootCommand()
		root.SetArgs(args)
		return root.ExecuteContext(context.Background())
	}

	if err := exec("store", "save", "first", doc); err != nil {
		t.Fatalf("store save: %v", err)
	}
	if err := exec("store", "list"); err != nil {
		t.Fatalf("store list: %v", err)
	}
	if err := exec("store", "load", "first", "-o", out); err != nil {
		t.Fatalf("store load: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var data model.GraphData
	if err := json.Unmarshal(raw, &data); err != nil || len(data.Nodes) != 2 {
		t.Errorf("loaded snapshot = %s, %v", raw, err)
	}
	if err := exec("store", "delete", "first"); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	if err := exec("store", "load", "first"); err == nil {
		t.Error("loading a deleted snapshot should fail")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowmodel.toml")
	if err := run(t, "config", "init", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if err := run(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("config show with the written file: %v", err)
	}
	if err := run(t, "config", "init", path); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
}

func TestBadConfigFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", "[graph]\noverlap_mode = \"sideways\"\n")
	if err := run(t, "--config", path, "config", "show"); err == nil {
		t.Error("invalid config should fail before running the command")
	}
}
