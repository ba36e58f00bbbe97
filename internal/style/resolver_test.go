package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mailcraft/internal/models"
)

func resolve(t models.ComponentType, p models.Props) Resolved {
	return Resolve(models.Component{ID: "c1", Type: t, Props: p})
}

func get(t *testing.T, d Declaration, name string) string {
	t.Helper()
	v, ok := d.Get(name)
	require.Truef(t, ok, "property %s missing from %q", name, d.String())
	return v
}

func TestResolveTypeDefaults(t *testing.T) {
	tests := []struct {
		typ  models.ComponentType
		want string
	}{
		{models.TypeHeader, "padding:20px;background-color:#ffffff;text-align:center;"},
		{models.TypeFooter, "padding:20px;background-color:#f5f5f5;color:#555555;text-align:center;font-size:14px;"},
		{models.TypeText, "padding:20px;background-color:#ffffff;color:#333333;font-size:16px;text-align:left;"},
		{models.TypeImage, "padding:20px;background-color:#ffffff;text-align:center;"},
		{models.TypeButton, "padding:20px;background-color:#ffffff;text-align:center;"},
		{models.TypeDivider, "padding:10px 20px;background-color:#ffffff;"},
		{models.TypeSpacer, "padding:0;background-color:#ffffff;height:20px;"},
		{models.TypeColumns, "padding:20px;background-color:#ffffff;"},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, resolve(tt.typ, nil).Style.String())
		})
	}
}

func TestResolveGenericProps(t *testing.T) {
	r := resolve(models.TypeText, models.Props{
		"backgroundColor": "#000000",
		"padding":         "12px",
		"fontSize":        float64(18),
		"textColor":       "#ff0000",
		"alignment":       "right",
	})
	assert.Equal(t, "#000000", get(t, r.Style, "background-color"))
	assert.Equal(t, "12px", get(t, r.Style, "padding"))
	assert.Equal(t, "18px", get(t, r.Style, "font-size"))
	assert.Equal(t, "#ff0000", get(t, r.Style, "color"))
	assert.Equal(t, "right", get(t, r.Style, "text-align"))
}

func TestResolveDiscretePadding(t *testing.T) {
	r := resolve(models.TypeText, models.Props{
		"padding":     "5px",
		"paddingTop":  float64(4),
		"paddingLeft": "2em",
	})
	assert.Equal(t, "4px 20px 20px 2em", get(t, r.Style, "padding"))
}

func TestResolveSpacerIgnoresPadding(t *testing.T) {
	r := resolve(models.TypeSpacer, models.Props{"padding": "30px", "height": "40"})
	assert.Equal(t, "0", get(t, r.Style, "padding"))
	assert.Equal(t, "40px", get(t, r.Style, "height"))
}

func TestResolveBorderAndShadow(t *testing.T) {
	r := resolve(models.TypeImage, models.Props{
		"hasBorder": true,
		"hasShadow": true,
	})
	assert.Equal(t, "1px solid #cccccc", get(t, r.Style, "border"))
	assert.Equal(t, "0px", get(t, r.Style, "border-radius"))
	assert.Equal(t, "0 2.5px 5px rgba(0,0,0,0.2)", get(t, r.Style, "box-shadow"))

	r = resolve(models.TypeImage, models.Props{
		"hasBorder":       true,
		"borderWidth":     float64(2),
		"borderStyle":     "dashed",
		"borderColor":     "#111111",
		"borderRadius":    float64(8),
		"hasShadow":       true,
		"shadowIntensity": float64(10),
		"shadowColor":     "#222222",
	})
	assert.Equal(t, "2px dashed #111111", get(t, r.Style, "border"))
	assert.Equal(t, "8px", get(t, r.Style, "border-radius"))
	assert.Equal(t, "0 5px 10px #222222", get(t, r.Style, "box-shadow"))
}

func TestResolveFlagsOffIgnoreFeatureProps(t *testing.T) {
	r := resolve(models.TypeImage, models.Props{
		"hasBorder":   false,
		"borderColor": "#111111",
		"shadowColor": "#222222",
	})
	_, ok := r.Style.Get("border")
	assert.False(t, ok)
	_, ok = r.Style.Get("box-shadow")
	assert.False(t, ok)
}

func TestResolveCustomStyleWinsInPlace(t *testing.T) {
	r := resolve(models.TypeText, models.Props{
		"backgroundColor": "#000000",
		"customStyle":     "background-color: #abcdef; fontWeight:bold; broken; :x;",
	})
	assert.Equal(t,
		"padding:20px;background-color:#abcdef;color:#333333;font-size:16px;text-align:left;font-weight:bold;",
		r.Style.String())
}

func TestResolveCustomStyleNonString(t *testing.T) {
	r := resolve(models.TypeText, models.Props{"customStyle": float64(3)})
	assert.Equal(t, 5, r.Style.Len())
}

func TestResolvePassThrough(t *testing.T) {
	r := resolve(models.TypeButton, models.Props{
		"customClasses": "  cta   big ",
		"customId":      "main-cta",
	})
	assert.Equal(t, "cta   big", r.Classes)
	assert.Equal(t, "main-cta", r.ID)
}

func TestResolveDeterministic(t *testing.T) {
	p := models.Props{"hasBorder": true, "hasShadow": true, "customStyle": "color:red"}
	first := resolve(models.TypeButton, p).Style.String()
	for range 20 {
		assert.Equal(t, first, resolve(models.TypeButton, p).Style.String())
	}
}

func TestValueHelpers(t *testing.T) {
	assert.Equal(t, "4px", ButtonRadius(nil))
	assert.Equal(t, "12px", ButtonRadius(models.Props{"borderRadius": "12"}))
	assert.Equal(t, "50%", ButtonRadius(models.Props{"borderRadius": "50%"}))

	assert.InDelta(t, 100, ImageWidth(nil), 0)
	assert.InDelta(t, 100, ImageWidth(models.Props{"width": float64(250)}), 0)
	assert.InDelta(t, 0, ImageWidth(models.Props{"width": float64(-5)}), 0)
	assert.InDelta(t, 60, ImageWidth(models.Props{"width": "60"}), 0)

	assert.Equal(t, 2, ColumnCount(nil))
	assert.Equal(t, 3, ColumnCount(models.Props{"count": float64(3)}))
	assert.Equal(t, "© 2026 qvaestvm. Todos os direitos reservados.", DefaultCopyright(2026))
}
