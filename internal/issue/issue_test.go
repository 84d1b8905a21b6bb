// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		ManifestNotFoundId,
		ManifestParseErrorId,
		DirectoryRemapId,
		SourceNotFoundId,
		ConfigLoadFailedId,
		OutputNotWritableId,
		InvalidVersionRangeId,
	}
}

func TestCatalogCompleteness(t *testing.T) {
	t.Parallel()

	ids := allIds()
	if len(issues) != len(ids) {
		t.Errorf("catalog has %d entries, want %d", len(issues), len(ids))
	}
	for _, id := range ids {
		i := Get(id)
		if i == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, i.Id())
		}
		if !strings.HasPrefix(strings.TrimSpace(string(i.MarkdownMsg())), "# ") {
			t.Errorf("issue %d does not start with a heading", id)
		}
	}
	if Get(Id(999)) != nil {
		t.Error("Get(999) should be nil")
	}
}

func TestValues_OrderedById(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(allIds()) {
		t.Fatalf("Values() returned %d entries", len(values))
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, i := range Values() {
		out, err := i.Render("notty")
		if err != nil {
			t.Errorf("issue %d: Render() error = %v", i.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("issue %d rendered empty", i.Id())
		}
	}

	out, err := Get(DirectoryRemapId).Render("notty")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "directory include cannot be moved") {
		t.Errorf("rendered text missing heading:\n%s", out)
	}
}
