package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mailcraft/internal/apperr"
	"github.com/starford/mailcraft/internal/editor"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

type fixture struct {
	store              *editor.Store
	ctrl               *Controller
	header, footer     string
	textA, textB, imgC string
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	s := editor.New(storage.NewMemory())
	st := s.State()
	f := fixture{
		store:  s,
		ctrl:   New(s, opts...),
		header: st.Components[0].ID,
		footer: st.Components[1].ID,
	}
	f.textA = s.AddComponent(models.TypeText, nil).ID
	f.textB = s.AddComponent(models.TypeText, nil).ID
	f.imgC = s.AddComponent(models.TypeImage, nil).ID
	return f
}

func (f fixture) order() []string {
	var out []string
	for _, c := range f.store.State().Components {
		out = append(out, c.ID)
	}
	return out
}

func TestPalette(t *testing.T) {
	p := Palette()
	require.Len(t, p, 6)
	assert.Equal(t, models.TypeText, p[0].Type)
	assert.Equal(t, models.TypeColumns, p[5].Type)
	for _, e := range p {
		assert.False(t, e.Type.IsFixed())
	}

	_, ok := PaletteType("header")
	assert.False(t, ok)
}

func TestDragActivationDistance(t *testing.T) {
	f := newFixture(t)

	st, err := f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.textA}, Point{X: 10, Y: 10})
	require.NoError(t, err)
	assert.Equal(t, PhasePending, st.Phase)

	st = f.ctrl.DragMove(Point{X: 13, Y: 14})
	assert.Equal(t, PhasePending, st.Phase, "5px is below the threshold")

	st = f.ctrl.DragMove(Point{X: 16, Y: 18})
	assert.Equal(t, PhaseDragging, st.Phase)
	assert.Equal(t, f.textA, st.ActiveID)
}

func TestClickSelects(t *testing.T) {
	f := newFixture(t)
	before := f.order()

	_, err := f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.textB}, Point{})
	require.NoError(t, err)
	f.ctrl.DragMove(Point{X: 2, Y: 2})
	out := f.ctrl.DragEnd(f.imgC)

	assert.Equal(t, OutcomeSelected, out.Kind)
	assert.Equal(t, f.textB, f.store.State().SelectedID)
	assert.Equal(t, before, f.order())
	assert.Equal(t, PhaseIdle, f.ctrl.State().Phase)
}

func TestPaletteDropAddsBeforeFooter(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.DragStart(Source{Kind: SourcePalette, ID: "button"}, Point{})
	require.NoError(t, err)
	st := f.ctrl.DragMove(Point{X: 50})
	assert.Equal(t, models.TypeButton, st.PaletteType)
	f.ctrl.DragOver(DropZoneID)
	out := f.ctrl.DragEnd("")

	require.Equal(t, OutcomeAdded, out.Kind)
	require.NotNil(t, out.Component)
	assert.Equal(t, models.TypeButton, out.Component.Type)
	order := f.order()
	assert.Equal(t, out.ComponentID, order[len(order)-2])
	assert.Equal(t, f.footer, order[len(order)-1])
}

func TestPaletteDropOnComponentAdds(t *testing.T) {
	f := newFixture(t, WithActivationDistance(0))

	_, err := f.ctrl.DragStart(Source{Kind: SourcePalette, ID: "spacer"}, Point{})
	require.NoError(t, err)
	out := f.ctrl.DragEnd(f.textA)

	assert.Equal(t, OutcomeAdded, out.Kind)
	assert.Len(t, f.order(), 6)
}

func TestPaletteDropOutsideIsNoOp(t *testing.T) {
	f := newFixture(t, WithActivationDistance(0))
	before := f.order()

	_, err := f.ctrl.DragStart(Source{Kind: SourcePalette, ID: "text"}, Point{})
	require.NoError(t, err)
	f.ctrl.DragOver(DropZoneID)
	f.ctrl.DragOver("")
	out := f.ctrl.DragEnd("")

	assert.Equal(t, OutcomeNone, out.Kind)
	assert.Equal(t, before, f.order())
}

func TestPaletteClickAdds(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.DragStart(Source{Kind: SourcePalette, ID: "divider"}, Point{})
	require.NoError(t, err)
	out := f.ctrl.DragEnd("")

	assert.Equal(t, OutcomeAdded, out.Kind)
	assert.Equal(t, models.TypeDivider, out.Component.Type)
}

func TestCanvasDropReorders(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.textA}, Point{})
	require.NoError(t, err)
	f.ctrl.DragMove(Point{Y: 40})
	f.ctrl.DragOver(f.imgC)
	out := f.ctrl.DragEnd("")

	assert.Equal(t, OutcomeReordered, out.Kind)
	assert.Equal(t, f.imgC, out.TargetID)
	assert.Equal(t, []string{f.header, f.textB, f.imgC, f.textA, f.footer}, f.order())
}

func TestCanvasDropOnSelfOrFixedIsNoOp(t *testing.T) {
	f := newFixture(t, WithActivationDistance(0))
	before := f.order()

	for _, target := range []string{f.textA, f.header, f.footer, DropZoneID, "", "missing"} {
		_, err := f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.textA}, Point{})
		require.NoError(t, err)
		out := f.ctrl.DragEnd(target)
		assert.Equal(t, OutcomeNone, out.Kind, "target %q", target)
	}
	assert.Equal(t, before, f.order())
}

func TestFixedComponentsCannotBeDragged(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.header}, Point{})
	assert.ErrorIs(t, err, apperr.ErrFixedComponent)
	_, err = f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.footer}, Point{})
	assert.ErrorIs(t, err, apperr.ErrFixedComponent)
	assert.Equal(t, PhaseIdle, f.ctrl.State().Phase)
}

func TestDragStartRejectsUnknownSources(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.DragStart(Source{Kind: SourcePalette, ID: "header"}, Point{})
	assert.ErrorIs(t, err, apperr.ErrInvalidComponentType)
	_, err = f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: "missing"}, Point{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.ctrl.DragStart(Source{Kind: "keyboard", ID: f.textA}, Point{})
	assert.Error(t, err)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, WithActivationDistance(0))
	before := f.order()

	_, err := f.ctrl.DragStart(Source{Kind: SourceCanvas, ID: f.textA}, Point{})
	require.NoError(t, err)
	f.ctrl.DragOver(f.imgC)
	assert.Equal(t, PhaseIdle, f.ctrl.Cancel().Phase)

	assert.Equal(t, OutcomeNone, f.ctrl.DragEnd(f.imgC).Kind)
	assert.Equal(t, before, f.order())
}

func TestDeleteAndDuplicatePolicy(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.ctrl.Delete(f.header), apperr.ErrFixedComponent)
	_, err := f.ctrl.Duplicate(f.footer)
	assert.ErrorIs(t, err, apperr.ErrFixedComponent)
	assert.ErrorIs(t, f.ctrl.Delete("missing"), apperr.ErrNotFound)

	dup, err := f.ctrl.Duplicate(f.textA)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Delete(dup.ID))
	require.NoError(t, f.ctrl.Delete(f.textA))
	assert.Len(t, f.order(), 4)
}

func TestReorderPolicy(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.ctrl.Reorder(f.textA, f.footer), apperr.ErrFixedComponent)
	assert.ErrorIs(t, f.ctrl.Reorder(f.header, f.textA), apperr.ErrFixedComponent)
	require.NoError(t, f.ctrl.Reorder(f.imgC, f.textA))
	assert.Equal(t, []string{f.header, f.imgC, f.textA, f.textB, f.footer}, f.order())
}
