package widgets

import (
	"strings"
	"testing"
)

func TestGraphLabelStyleFor(t *testing.T) {
	local := graphLabelStyleFor(false, Label{Text: "main", Color: "#3366cc"})
	if local.fill != "#3366cc" || local.out != "#3366cc" || local.text != "#ffffff" {
		t.Fatalf("local badge should be filled with the branch color, got %+v", local)
	}

	head := graphLabelStyleFor(false, Label{Text: "main", Color: "#3366cc", Head: true})
	if head.fill != "#3366cc" || head.out == "#3366cc" {
		t.Fatalf("HEAD badge should keep its fill and get a distinct outline, got %+v", head)
	}
	darkHead := graphLabelStyleFor(true, Label{Text: "main", Color: "#3366cc", Head: true})
	if darkHead.out == head.out {
		t.Fatalf("expected a darker HEAD outline in dark mode, got %+v", darkHead)
	}

	remote := graphLabelStyleFor(false, Label{Text: "origin/main", Color: "#3366cc", Remote: true})
	if remote.out != "#3366cc" || remote.fill == "#3366cc" {
		t.Fatalf("remote badge should be outlined in the branch color, got %+v", remote)
	}
	darkRemote := graphLabelStyleFor(true, Label{Text: "origin/main", Color: "#3366cc", Remote: true})
	if darkRemote.fill == remote.fill || darkRemote.text == remote.text {
		t.Fatalf("expected dark remote badge colors, got %+v", darkRemote)
	}

	uncolored := graphLabelStyleFor(false, Label{Text: "tag"})
	if uncolored.fill == "" || uncolored.out == "" {
		t.Fatalf("expected a fallback color, got %+v", uncolored)
	}
}

func TestForwardScript(t *testing.T) {
	script := forwardScript(".tree", "<Button-1>")
	for _, want := range []string{
		"[winfo rootx %W] - [winfo rootx .tree]",
		"[winfo rooty %W] - [winfo rooty .tree]",
		"focus .tree",
		"event generate .tree <Button-1> -x $x -y $y\n",
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("expected %q in script:\n%s", want, script)
		}
	}
	if strings.Contains(script, "-delta") {
		t.Fatalf("only mouse wheel events carry a delta:\n%s", script)
	}

	wheel := forwardScript(".tree", "<MouseWheel>")
	if !strings.Contains(wheel, "event generate .tree <MouseWheel> -x $x -y $y -delta %D") {
		t.Fatalf("expected wheel delta to be forwarded:\n%s", wheel)
	}
}
