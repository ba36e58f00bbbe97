package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

var testNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, kv storage.Provider, opts ...Option) *Store {
	t.Helper()
	if kv == nil {
		kv = storage.NewMemory()
	}
	base := []Option{
		WithIDGenerator(sequentialIDs()),
		WithClock(func() time.Time { return testNow }),
	}
	return New(kv, append(base, opts...)...)
}

func ids(st State) []string {
	out := make([]string, len(st.Components))
	for i, c := range st.Components {
		out[i] = c.ID
	}
	return out
}

func TestNewStartsWithHeaderAndFooter(t *testing.T) {
	s := newTestStore(t, nil)
	st := s.State()

	assert.Equal(t, DefaultTitle, st.Title)
	require.Len(t, st.Components, 2)
	assert.Equal(t, models.TypeHeader, st.Components[0].Type)
	assert.Equal(t, models.TypeFooter, st.Components[1].Type)
	assert.Equal(t, "© 2026 qvaestvm. Todos os direitos reservados.", st.Components[1].Props["copyrightText"])
	assert.Empty(t, st.SelectedID)
	assert.False(t, st.PreviewMobile)
}

func TestAddComponentKeepsHeaderFirstFooterLast(t *testing.T) {
	s := newTestStore(t, nil)
	for _, typ := range []models.ComponentType{models.TypeText, models.TypeImage, models.TypeButton, models.TypeSpacer} {
		s.AddComponent(typ, nil)
	}
	st := s.State()

	require.Len(t, st.Components, 6)
	assert.Equal(t, models.TypeHeader, st.Components[0].Type)
	assert.Equal(t, models.TypeFooter, st.Components[5].Type)
	assert.Equal(t, models.TypeText, st.Components[1].Type)
	assert.Equal(t, models.TypeSpacer, st.Components[4].Type)
}

func TestAddComponentWithoutFooterAppends(t *testing.T) {
	s := newTestStore(t, nil)
	footer := s.State().Components[1].ID
	require.True(t, s.RemoveComponent(footer))

	c := s.AddComponent(models.TypeText, models.Props{"content": "x"})
	st := s.State()
	assert.Equal(t, c.ID, st.Components[len(st.Components)-1].ID)
}

func TestAddComponentCopiesProps(t *testing.T) {
	s := newTestStore(t, nil)
	props := models.Props{"content": "x"}
	c := s.AddComponent(models.TypeText, props)
	props["content"] = "changed"

	got, ok := s.Component(c.ID)
	require.True(t, ok)
	assert.Equal(t, "x", got.Props["content"])
}

func TestRemoveComponentClearsSelection(t *testing.T) {
	s := newTestStore(t, nil)
	c := s.AddComponent(models.TypeText, nil)
	require.True(t, s.SelectComponent(c.ID))

	require.True(t, s.RemoveComponent(c.ID))
	assert.Empty(t, s.State().SelectedID)
}

func TestSelectComponent(t *testing.T) {
	s := newTestStore(t, nil)
	c := s.AddComponent(models.TypeText, nil)

	assert.True(t, s.SelectComponent(c.ID))
	assert.Equal(t, c.ID, s.State().SelectedID)
	assert.False(t, s.SelectComponent("missing"))
	assert.Equal(t, c.ID, s.State().SelectedID)
	assert.True(t, s.SelectComponent(""))
	assert.Empty(t, s.State().SelectedID)
}

func TestUpdateComponentPropsMergesShallow(t *testing.T) {
	s := newTestStore(t, nil)
	c := s.AddComponent(models.TypeText, models.Props{"content": "hi"})

	require.True(t, s.UpdateComponentProps(c.ID, models.Props{"a": float64(1)}))
	require.True(t, s.UpdateComponentProps(c.ID, models.Props{"b": float64(2)}))

	got, _ := s.Component(c.ID)
	want := models.Props{"content": "hi", "a": float64(1), "b": float64(2)}
	if diff := cmp.Diff(want, got.Props); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingIDIsNoOp(t *testing.T) {
	s := newTestStore(t, nil)
	s.AddComponent(models.TypeText, nil)
	before := s.State()
	valid := before.Components[1].ID

	assert.False(t, s.RemoveComponent("nonexistent"))
	assert.False(t, s.UpdateComponentProps("nonexistent", models.Props{"x": "y"}))
	assert.False(t, s.ReorderComponents("nonexistent", valid))
	assert.False(t, s.ReorderComponents(valid, "nonexistent"))
	_, ok := s.DuplicateComponent("nonexistent")
	assert.False(t, ok)

	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

// fourComponents builds [A,B,C,D] with no header or footer.
func fourComponents(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t, nil, WithIDGenerator(func() func() string {
		names := []string{"h", "f", "A", "B", "C", "D"}
		i := 0
		return func() string {
			id := names[i]
			i++
			return id
		}
	}()))
	for _, id := range []string{"h", "f"} {
		require.True(t, s.RemoveComponent(id))
	}
	for range 4 {
		s.AddComponent(models.TypeText, nil)
	}
	require.Equal(t, []string{"A", "B", "C", "D"}, ids(s.State()))
	return s
}

func TestReorderComponents(t *testing.T) {
	tests := []struct {
		name          string
		moved, target string
		want          []string
	}{
		{"down", "B", "D", []string{"A", "C", "D", "B"}},
		{"up", "D", "B", []string{"A", "D", "B", "C"}},
		{"adjacent down", "A", "B", []string{"B", "A", "C", "D"}},
		{"adjacent up", "C", "B", []string{"A", "C", "B", "D"}},
		{"to front", "D", "A", []string{"D", "A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fourComponents(t)
			require.True(t, s.ReorderComponents(tt.moved, tt.target))
			assert.Equal(t, tt.want, ids(s.State()))
		})
	}
}

func TestReorderOntoItselfIsNoOp(t *testing.T) {
	s := fourComponents(t)
	assert.False(t, s.ReorderComponents("B", "B"))
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(s.State()))
}

func TestDuplicateComponentIsIndependentSibling(t *testing.T) {
	s := newTestStore(t, nil)
	orig := s.AddComponent(models.TypeButton, models.Props{
		"text":  "Go",
		"extra": map[string]any{"nested": []any{"a"}},
	})

	dup, ok := s.DuplicateComponent(orig.ID)
	require.True(t, ok)
	assert.NotEqual(t, orig.ID, dup.ID)
	if diff := cmp.Diff(orig.Props, dup.Props); diff != "" {
		t.Errorf("duplicate props differ (-orig +dup):\n%s", diff)
	}

	st := s.State()
	i := indexByID(st, orig.ID)
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, dup.ID, st.Components[i+1].ID)

	require.True(t, s.UpdateComponentProps(dup.ID, models.Props{"text": "Stop"}))
	got, _ := s.Component(orig.ID)
	assert.Equal(t, "Go", got.Props["text"])

	dupNow, _ := s.Component(dup.ID)
	dupNow.Props["extra"].(map[string]any)["nested"].([]any)[0] = "mutated"
	got, _ = s.Component(orig.ID)
	assert.Equal(t, "a", got.Props["extra"].(map[string]any)["nested"].([]any)[0])
}

func indexByID(st State, id string) int {
	for i, c := range st.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func TestSetTitleAndTogglePreview(t *testing.T) {
	s := newTestStore(t, nil)
	s.SetTitle("Campanha de Maio")
	assert.Equal(t, "Campanha de Maio", s.State().Title)

	assert.True(t, s.TogglePreviewMode())
	assert.True(t, s.State().PreviewMobile)
	assert.False(t, s.TogglePreviewMode())
	assert.Contains(t, s.PreviewHTML(), "width:600px;")
}

func TestStateIsSnapshot(t *testing.T) {
	s := newTestStore(t, nil)
	st := s.State()
	st.Components[0].Props["companyName"] = "mutated"
	st.Components = st.Components[:0]

	again := s.State()
	require.Len(t, again.Components, 2)
	assert.Equal(t, "qvaestvm", again.Components[0].Props["companyName"])
}

func TestExportHTMLDeterministic(t *testing.T) {
	s := newTestStore(t, nil)
	s.AddComponent(models.TypeButton, nil)

	first := s.ExportHTML()
	assert.Equal(t, first, s.ExportHTML())
	assert.Contains(t, first, "<title>Novo Email</title>")
	assert.Contains(t, first, "Clique aqui")
}

func TestReset(t *testing.T) {
	s := newTestStore(t, nil)
	s.AddComponent(models.TypeText, nil)
	s.SetTitle("x")
	s.TogglePreviewMode()

	s.Reset()
	st := s.State()
	assert.Equal(t, DefaultTitle, st.Title)
	assert.Len(t, st.Components, 2)
	assert.False(t, st.PreviewMobile)
	assert.Equal(t, []string{"id-4", "id-5"}, ids(st))
}

func TestListenerReceivesEvents(t *testing.T) {
	var got []Event
	s := newTestStore(t, nil, WithListener(func(ev Event) {
		got = append(got, ev)
	}))

	c := s.AddComponent(models.TypeText, nil)
	s.UpdateComponentProps(c.ID, models.Props{"content": "x"})
	s.UpdateComponentProps("missing", models.Props{"content": "x"})
	s.SetTitle("t")
	s.RemoveComponent(c.ID)

	want := []Event{
		{Kind: EventComponentAdded, ComponentID: c.ID},
		{Kind: EventComponentUpdated, ComponentID: c.ID},
		{Kind: EventTitleChanged},
		{Kind: EventComponentRemoved, ComponentID: c.ID},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestListenerMayReadStore(t *testing.T) {
	var s *Store
	var titles []string
	s = newTestStore(t, nil, WithListener(func(ev Event) {
		titles = append(titles, s.State().Title)
	}))
	s.SetTitle("reentrant")
	assert.Equal(t, []string{"reentrant"}, titles)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	s.SetTitle("Boas-vindas")
	s.AddComponent(models.TypeText, models.Props{"content": "<b>Olá</b>", "fontSize": float64(18)})
	s.AddComponent(models.TypeColumns, models.Props{"count": float64(2)})
	want := s.State()

	saved, err := s.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Boas-vindas", saved.Title)
	assert.Equal(t, testNow, saved.CreatedAt)

	s.Reset()
	s.SetTitle("other")
	require.True(t, s.Load(ctx, saved.ID))

	got := s.State()
	assert.Equal(t, "Boas-vindas", got.Title)
	if diff := cmp.Diff(want.Components, got.Components); diff != "" {
		t.Errorf("components mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSaveAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	first, err := s.Save(ctx)
	require.NoError(t, err)
	s.SetTitle("second")
	second, err := s.Save(ctx)
	require.NoError(t, err)

	docs := s.SavedDocuments(ctx)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
	assert.Equal(t, "second", docs[1].Title)
}

func TestSavedCollectionJSONShape(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := newTestStore(t, kv)
	_, err := s.Save(ctx)
	require.NoError(t, err)

	data, err := kv.Read(ctx, SavedEmailsKey)
	require.NoError(t, err)
	raw := string(data)
	for _, key := range []string{`"id":`, `"title":"Novo Email"`, `"components":`, `"createdAt":"2026-05-04T10:30:00Z"`} {
		assert.Contains(t, raw, key)
	}
	assert.True(t, strings.HasPrefix(raw, "["))
}

func TestLoadUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	before := s.State()

	assert.False(t, s.Load(ctx, "missing"))
	if diff := cmp.Diff(before, s.State()); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

func TestCorruptCollection(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Write(ctx, SavedEmailsKey, []byte("{not json")))
	s := newTestStore(t, kv)

	assert.Empty(t, s.SavedDocuments(ctx))
	assert.False(t, s.Load(ctx, "anything"))

	_, err := s.Save(ctx)
	require.Error(t, err)
	data, err := kv.Read(ctx, SavedEmailsKey)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

type failingKV struct{ storage.Provider }

func (failingKV) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingKV) Write(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func TestStorageFailuresDegrade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, failingKV{})

	assert.Empty(t, s.SavedDocuments(ctx))
	assert.False(t, s.Load(ctx, "x"))
	_, err := s.Save(ctx)
	assert.Error(t, err)
	assert.Len(t, s.State().Components, 2)
}

func TestSaveWriteFailure(t *testing.T) {
	ctx := context.Background()
	kv := writeFailKV{storage.NewMemory()}
	s := newTestStore(t, kv)

	_, err := s.Save(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write saved emails")
}

type writeFailKV struct{ *storage.Memory }

func (writeFailKV) Write(context.Context, string, []byte) error {
	return errors.New("read-only")
}

func TestConcurrentCommands(t *testing.T) {
	s := New(storage.NewMemory())
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := s.AddComponent(models.TypeText, nil)
			s.UpdateComponentProps(c.ID, models.Props{"content": "x"})
			s.DuplicateComponent(c.ID)
		}()
	}
	wg.Wait()

	st := s.State()
	assert.Len(t, st.Components, 102)
	assert.Equal(t, models.TypeHeader, st.Components[0].Type)
	assert.Equal(t, models.TypeFooter, st.Components[101].Type)
}

// slowReads widens the window between reading and writing the collection.
type slowReads struct {
	*storage.Memory
}

func (s slowReads) Read(ctx context.Context, key string) ([]byte, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Memory.Read(ctx, key)
}

func TestConcurrentSavesKeepEverySnapshot(t *testing.T) {
	ctx := context.Background()
	s := New(slowReads{storage.NewMemory()}, WithIDGenerator(sequentialIDs()))

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := s.Save(ctx)
			if assert.NoError(t, err) {
				ids <- saved.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	docs := s.SavedDocuments(ctx)
	require.Len(t, docs, n)
	kept := make(map[string]bool, n)
	for _, d := range docs {
		kept[d.ID] = true
	}
	for id := range ids {
		assert.True(t, kept[id], "saved snapshot %s missing from collection", id)
	}
}
