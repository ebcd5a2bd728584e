package docwriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		in      string
		want    Alignment
		wantErr bool
	}{
		{"", AlignLeft, false},
		{"left", AlignLeft, false},
		{"Center", AlignCenter, false},
		{"centre", AlignCenter, false},
		{" right ", AlignRight, false},
		{"justify", AlignLeft, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlignment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParseAlignment(t, got.String()))
		})
	}
}

func mustParseAlignment(t *testing.T, s string) Alignment {
	t.Helper()
	a, err := ParseAlignment(s)
	require.NoError(t, err)
	return a
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#1f4e79")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x1f, G: 0x4e, B: 0x79}, c)
	assert.Equal(t, "1F4E79", c.Hex())

	_, err = ParseColor("12345")
	assert.Error(t, err)
	_, err = ParseColor("GGGGGG")
	assert.Error(t, err)

	assert.Equal(t, "FF0000", RGB(255, 0, 0).Hex())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "heading", KindHeading.String())
	assert.Equal(t, "page_break", KindPageBreak.String())
	assert.Equal(t, "unknown", BlockKind(42).String())
	assert.Equal(t, "bullet", ListBullet.String())
	assert.Equal(t, "numbered", ListNumbered.String())
}

func TestDocumentAccessors(t *testing.T) {
	blocks := []Block{&Heading{Text: "T"}, &PageBreak{}}
	doc := NewDocument(Metadata{Title: "T"}, blocks)
	blocks[0] = &ListItem{Text: "changed"}

	assert.Equal(t, 2, doc.Len())
	assert.Equal(t, []BlockKind{KindHeading, KindPageBreak}, doc.Kinds())
	assert.Equal(t, "T", BlockText(doc.Blocks()[0]))

	got := doc.Blocks()
	got[1] = &Heading{}
	assert.Equal(t, KindPageBreak, doc.Blocks()[1].Kind(), "Blocks must return a copy")
}
