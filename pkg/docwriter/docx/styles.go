package docx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-docwriter/pkg/docwriter"
	wml "github.com/benjaminschreck/go-docwriter/pkg/docwriter/xml"
)

// Style IDs written into styles.xml and referenced from document.xml.
const (
	StyleNormal     = "Normal"
	StyleTitle      = "Title"
	StyleListBullet = "ListBullet"
	StyleListNumber = "ListNumber"
	StyleTableGrid  = "TableGrid"
	styleTableBase  = "TableNormal"
	headingPrefix   = "Heading"
	maxHeadingStyle = 9
)

// HeadingStyleID returns the paragraph style for a heading level.
func HeadingStyleID(level int) string {
	if level <= 0 {
		return StyleTitle
	}
	return headingPrefix + strconv.Itoa(level)
}

// HeadingLevel is the inverse of HeadingStyleID. ok is false for styles
// that are not headings.
func HeadingLevel(styleID string) (level int, ok bool) {
	if styleID == StyleTitle {
		return 0, true
	}
	rest, found := strings.CutPrefix(styleID, headingPrefix)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// TableStyleID derives a style ID from a display name ("Table Grid" -> "TableGrid").
func TableStyleID(name string) string {
	return strings.Join(strings.Fields(name), "")
}

// tableStyleSet hands out one style ID per table style name. Names whose
// derived IDs collide with each other or with a built-in style get a numeric
// suffix ("My Style" -> "MyStyle", then "MyStyle" -> "MyStyle2").
type tableStyleSet struct {
	ids   map[string]string
	taken map[string]bool
	names []string
}

func newTableStyleSet() *tableStyleSet {
	taken := map[string]bool{
		StyleNormal:     true,
		StyleTitle:      true,
		StyleListBullet: true,
		StyleListNumber: true,
		StyleTableGrid:  true,
		styleTableBase:  true,
	}
	for level := 1; level <= maxHeadingStyle; level++ {
		taken[HeadingStyleID(level)] = true
	}
	return &tableStyleSet{
		ids:   map[string]string{"Table Grid": StyleTableGrid},
		taken: taken,
	}
}

// id returns the style ID for name, assigning a new one on first use.
func (s *tableStyleSet) id(name string) string {
	if id, ok := s.ids[name]; ok {
		return id
	}
	base := TableStyleID(name)
	if base == "" {
		base = "Table"
	}
	id := base
	for n := 2; s.taken[id]; n++ {
		id = base + strconv.Itoa(n)
	}
	s.taken[id] = true
	s.ids[name] = id
	s.names = append(s.names, name)
	return id
}

// headingSizes are the heading point sizes; deeper levels reuse the last.
var headingSizes = []float64{16, 13, 12, 11}

func headingSize(level int) float64 {
	if level > len(headingSizes) {
		return headingSizes[len(headingSizes)-1]
	}
	return headingSizes[level-1]
}

func intPtr(v int) *int { return &v }

// buildStyles returns the styles part. Every table style in tableStyles
// gets a definition based on the grid style.
func buildStyles(cfg *docwriter.Config, tableStyles *tableStyleSet) *wml.Styles {
	bodySize := &wml.IntVal{Val: wml.PointsToHalfPoints(cfg.DefaultSizePt)}
	styles := &wml.Styles{
		DocDefaults: &wml.DocDefaults{
			RunProperties: &wml.RunProperties{
				Font:   wml.NewFont(cfg.DefaultFont),
				Size:   bodySize,
				SizeCs: bodySize,
				Lang:   &wml.Lang{Val: cfg.LanguageTag()},
			},
			ParagraphProperties: &wml.ParagraphProperties{
				Spacing: &wml.Spacing{After: intPtr(160), Line: 259, LineRule: "auto"},
			},
		},
	}

	styles.Styles = append(styles.Styles,
		wml.StyleDefinition{
			Type:    wml.StyleTypeParagraph,
			ID:      StyleNormal,
			Name:    "Normal",
			Default: true,
			QFormat: true,
		},
		wml.StyleDefinition{
			Type:       wml.StyleTypeParagraph,
			ID:         StyleTitle,
			Name:       "Title",
			BasedOn:    StyleNormal,
			Next:       StyleNormal,
			UIPriority: 10,
			QFormat:    true,
			ParagraphProperties: &wml.ParagraphProperties{
				Spacing: &wml.Spacing{After: intPtr(0), Line: 240, LineRule: "auto"},
			},
			RunProperties: &wml.RunProperties{
				Size:   &wml.IntVal{Val: wml.PointsToHalfPoints(28)},
				SizeCs: &wml.IntVal{Val: wml.PointsToHalfPoints(28)},
			},
		},
	)

	for level := 1; level <= maxHeadingStyle; level++ {
		size := &wml.IntVal{Val: wml.PointsToHalfPoints(headingSize(level))}
		rpr := &wml.RunProperties{Bold: wml.On(), Size: size, SizeCs: size, Color: &wml.Color{Val: "2F5496"}}
		if level > len(headingSizes) {
			rpr.Italic = wml.On()
		}
		styles.Styles = append(styles.Styles, wml.StyleDefinition{
			Type:       wml.StyleTypeParagraph,
			ID:         HeadingStyleID(level),
			Name:       fmt.Sprintf("heading %d", level),
			BasedOn:    StyleNormal,
			Next:       StyleNormal,
			UIPriority: 9,
			QFormat:    true,
			ParagraphProperties: &wml.ParagraphProperties{
				KeepNext: wml.On(),
				Spacing:  &wml.Spacing{Before: intPtr(240), After: intPtr(0)},
			},
			RunProperties: rpr,
		})
	}

	for _, list := range []struct{ id, name string }{
		{StyleListBullet, "List Bullet"},
		{StyleListNumber, "List Number"},
	} {
		styles.Styles = append(styles.Styles, wml.StyleDefinition{
			Type:       wml.StyleTypeParagraph,
			ID:         list.id,
			Name:       list.name,
			BasedOn:    StyleNormal,
			UIPriority: 99,
			ParagraphProperties: &wml.ParagraphProperties{
				Indent: &wml.Indentation{Left: 720, Hanging: 360},
			},
		})
	}

	styles.Styles = append(styles.Styles,
		wml.StyleDefinition{
			Type:       wml.StyleTypeTable,
			ID:         styleTableBase,
			Name:       "Normal Table",
			Default:    true,
			UIPriority: 99,
		},
		wml.StyleDefinition{
			Type:       wml.StyleTypeTable,
			ID:         StyleTableGrid,
			Name:       "Table Grid",
			BasedOn:    styleTableBase,
			UIPriority: 39,
			ParagraphProperties: &wml.ParagraphProperties{
				Spacing: &wml.Spacing{After: intPtr(0), Line: 240, LineRule: "auto"},
			},
			TableProperties: &wml.TableProperties{Borders: wml.SingleBorders(4)},
		},
	)

	for _, name := range tableStyles.names {
		styles.Styles = append(styles.Styles, wml.StyleDefinition{
			Type:    wml.StyleTypeTable,
			ID:      tableStyles.ids[name],
			Name:    name,
			BasedOn: StyleTableGrid,
		})
	}

	return styles
}

// Numbering IDs. Bullets share one instance; every numbered list gets its own
// instance so it restarts at 1.
const (
	abstractBullet  = 0
	abstractDecimal = 1
	numBullet       = 1
)

func newNumbering() *wml.Numbering {
	level := func(format, text string) wml.NumberingLevel {
		return wml.NumberingLevel{
			Level:         0,
			Start:         &wml.IntVal{Val: 1},
			Format:        &wml.StringVal{Val: format},
			Text:          &wml.StringVal{Val: text},
			Justification: &wml.StringVal{Val: wml.JustifyLeft},
			ParagraphProperties: &wml.ParagraphProperties{
				Indent: &wml.Indentation{Left: 720, Hanging: 360},
			},
		}
	}
	return &wml.Numbering{
		AbstractNums: []wml.AbstractNum{
			{
				ID:             abstractBullet,
				MultiLevelType: &wml.StringVal{Val: "singleLevel"},
				Levels:         []wml.NumberingLevel{level(wml.NumFmtBullet, "•")},
			},
			{
				ID:             abstractDecimal,
				MultiLevelType: &wml.StringVal{Val: "singleLevel"},
				Levels:         []wml.NumberingLevel{level(wml.NumFmtDecimal, "%1.")},
			},
		},
		Nums: []wml.Num{{ID: numBullet, AbstractNumID: abstractBullet}},
	}
}

// restartNumbered adds a decimal instance that starts at 1 and returns its ID.
func restartNumbered(n *wml.Numbering) int {
	id := n.Nums[len(n.Nums)-1].ID + 1
	n.Nums = append(n.Nums, wml.Num{ID: id, AbstractNumID: abstractDecimal, StartOverride: 1})
	return id
}
