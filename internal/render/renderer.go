// Package render draws pressure scores onto 1080x1080 PNG slides.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/stat-trick-hockey/ig-pressure/internal/models"
	"github.com/stat-trick-hockey/ig-pressure/internal/pressure"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
)

// ErrRender is returned when a slide cannot be produced
var ErrRender = errors.New("render error")

// Slide geometry
const (
	Width  = 1080
	Height = 1080

	margin      = 45.0
	radius      = 34.0
	logoSize    = 52
	logoOpacity = 90
)

type box struct {
	x0, y0, x1, y1 float64
}

func (b box) w() float64 { return b.x1 - b.x0 }
func (b box) h() float64 { return b.y1 - b.y0 }

var (
	headerBox = box{margin, 40, Width - margin, 245}
	mainBox   = box{margin, 275, Width - margin, 910}
	footerBox = box{margin, 935, Width - margin, 1035}
)

// Page is one rendered slide
type Page struct {
	Index int // 1-based
	Total int
	Teams []string
	PNG   []byte
}

// Meta carries run facts shown on every slide
type Meta struct {
	Date            string // YYYY-MM-DD
	GamesToday      int
	DataUnavailable bool
}

// Options configures a Renderer
type Options struct {
	PerPage      int
	Location     *time.Location
	Theme        Theme
	Logo         image.Image
	RegularFonts []string
	BoldFonts    []string
	Logger       zerolog.Logger
}

// Renderer turns scores into slides
type Renderer struct {
	perPage int
	loc     *time.Location
	theme   Theme
	logo    *image.RGBA
	fonts   *fontSet
	logger  zerolog.Logger
}

// NewRenderer creates a renderer. The logo is required.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Logo == nil {
		return nil, fmt.Errorf("%w: no logo image", ErrLogo)
	}
	if opts.PerPage < 1 {
		return nil, fmt.Errorf("%w: teams per page must be >= 1, got %d", ErrRender, opts.PerPage)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Renderer{
		perPage: opts.PerPage,
		loc:     loc,
		theme:   opts.Theme,
		logo:    fadedCircle(opts.Logo, logoSize, logoOpacity),
		fonts:   loadFonts(opts.RegularFonts, opts.BoldFonts, opts.Logger),
		logger:  opts.Logger,
	}, nil
}

// Close releases font resources
func (r *Renderer) Close() {
	r.fonts.Close()
}

// Paginate splits items into consecutive chunks of at most per elements.
// It always returns at least one chunk so an empty roster still gets a slide.
func Paginate[T any](items []T, per int) [][]T {
	if per < 1 {
		per = 1
	}
	if len(items) == 0 {
		return [][]T{{}}
	}
	pages := make([][]T, 0, (len(items)+per-1)/per)
	for i := 0; i < len(items); i += per {
		end := min(i+per, len(items))
		pages = append(pages, items[i:end])
	}
	return pages
}

// Render draws every score, PerPage teams per slide, in the given order
func (r *Renderer) Render(scores []models.TeamPressureScore, meta Meta) ([]Page, error) {
	chunks := Paginate(scores, r.perPage)

	maxScore := 1.0
	for _, s := range scores {
		maxScore = math.Max(maxScore, s.Score)
	}

	pages := make([]Page, 0, len(chunks))
	for i, chunk := range chunks {
		page := Page{Index: i + 1, Total: len(chunks)}
		for _, s := range chunk {
			page.Teams = append(page.Teams, s.TeamAbbr)
		}

		png, err := r.drawPage(chunk, i*r.perPage, maxScore, page, meta)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrRender, page.Index, err)
		}
		page.PNG = png
		pages = append(pages, page)

		r.logger.Debug().
			Int("page", page.Index).
			Int("teams", len(chunk)).
			Int("bytes", len(png)).
			Msg("Slide rendered")
	}

	return pages, nil
}

func (r *Renderer) drawPage(chunk []models.TeamPressureScore, offset int, maxScore float64, page Page, meta Meta) ([]byte, error) {
	t := r.theme
	dc := gg.NewContext(Width, Height)

	dc.SetColor(t.Background)
	dc.Clear()

	r.drawHeader(dc, meta)
	r.drawPanel(dc, mainBox)
	r.drawLegend(dc)

	if len(chunk) == 0 {
		dc.SetFontFace(r.fonts.face(34, true))
		dc.SetColor(t.Text)
		dc.DrawString("No teams in the arena table.", mainBox.x0+28, mainBox.y0+180)
	}

	top := mainBox.y0 + 130
	rowH := (mainBox.y1 - 20 - top) / float64(r.perPage)
	rowH = math.Min(rowH, 96)
	for i, s := range chunk {
		y := top + float64(i)*rowH
		if i > 0 {
			dc.SetColor(t.Separator)
			dc.SetLineWidth(2)
			dc.DrawLine(mainBox.x0+24, y-4, mainBox.x1-24, y-4)
			dc.Stroke()
		}
		r.drawRow(dc, s, offset+i+1, y, rowH, maxScore)
	}

	r.drawFooter(dc, page)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawPanel(dc *gg.Context, b box) {
	t := r.theme

	// soft shadow
	dc.SetRGBA255(0, 0, 0, 90)
	dc.DrawRoundedRectangle(b.x0, b.y0+10, b.w(), b.h(), radius)
	dc.Fill()

	dc.SetColor(t.Card)
	dc.DrawRoundedRectangle(b.x0, b.y0, b.w(), b.h(), radius)
	dc.FillPreserve()
	dc.SetColor(t.Border)
	dc.SetLineWidth(3)
	dc.Stroke()
}

func (r *Renderer) drawAccent(dc *gg.Context, b box, offset float64) {
	dc.SetColor(r.theme.Accent)
	dc.DrawRectangle(b.x0+22, b.y0+offset, b.w()-44, 16)
	dc.Fill()
}

func (r *Renderer) drawHeader(dc *gg.Context, meta Meta) {
	t := r.theme
	r.drawPanel(dc, headerBox)
	r.drawAccent(dc, headerBox, 24)

	dc.SetFontFace(r.fonts.face(54, true))
	dc.SetColor(t.Text)
	dc.DrawStringAnchored(t.Title, headerBox.x0+28, headerBox.y0+70, 0, 1)

	sub := fmt.Sprintf("%s | %d games today | TRVL + density (B2B / 3IN4 / 4IN6)", meta.Date, meta.GamesToday)
	switch {
	case meta.DataUnavailable && meta.GamesToday == 0:
		sub = fmt.Sprintf("%s | Schedule unavailable, showing baseline", meta.Date)
	case meta.GamesToday == 0:
		sub = fmt.Sprintf("%s | No games scheduled", meta.Date)
	}
	dc.SetFontFace(r.fonts.face(26, false))
	dc.SetColor(t.Muted)
	dc.DrawStringAnchored(sub, headerBox.x0+28, headerBox.y0+145, 0, 1)
}

func (r *Renderer) drawLegend(dc *gg.Context) {
	t := r.theme
	f := r.fonts.face(20, true)
	x, y := mainBox.x0+28, mainBox.y0+22

	w, _ := r.chip(dc, x, y, "TRVL (7D) = km in last 7 days", f, t.Border, 12, 6)
	r.chip(dc, x+w+16, y, "B2B = played yesterday", f, t.Border, 12, 6)
	r.chip(dc, x, y+46, "3IN4 / 4IN6 include today", f, t.Border, 12, 6)
}

func (r *Renderer) drawRow(dc *gg.Context, s models.TeamPressureScore, rank int, y, rowH, maxScore float64) {
	t := r.theme
	xLeft := mainBox.x0 + 28
	xRight := mainBox.x1 - 28

	teamSize := clamp(rowH*0.42, 16, 34)
	smallSize := clamp(rowH*0.28, 12, 22)
	chipSize := clamp(rowH*0.26, 12, 20)

	// rank and team
	dc.SetFontFace(r.fonts.face(smallSize, false))
	dc.SetColor(t.Muted)
	dc.DrawStringAnchored(fmt.Sprintf("#%d", rank), xLeft, y+4, 0, 1)

	dc.SetFontFace(r.fonts.face(teamSize, true))
	dc.SetColor(t.Text)
	dc.DrawStringAnchored(s.TeamAbbr, xLeft+56, y+2, 0, 1)

	dc.SetFontFace(r.fonts.face(smallSize, false))
	dc.SetColor(t.Muted)
	dc.DrawStringAnchored(r.matchup(s), xLeft+56, y+teamSize+8, 0, 1)

	// chips, right to left
	hotTravel, hot6, hot4, b2b := pressure.IsHot(s)
	chips := []struct {
		text string
		hot  bool
	}{
		{fmt.Sprintf("PRS:%.2f", s.Score), false},
		{"TRVL:" + r.travelText(s), hotTravel},
		{fmt.Sprintf("4IN6:%d", s.GamesLast6), hot6},
		{fmt.Sprintf("3IN4:%d", s.GamesLast4), hot4},
		{"B2B:" + yesNo(s.BackToBack), b2b},
	}

	f := r.fonts.face(chipSize, true)
	dc.SetFontFace(f)
	padX, padY := 12.0, 5.0
	chipY := y + 2
	cur := xRight
	for _, c := range chips {
		tw, _ := dc.MeasureString(c.text)
		cur -= tw + 2*padX
		outline := t.Border
		if c.hot {
			outline = t.Hot
		}
		r.chip(dc, cur, chipY, c.text, f, outline, padX, padY)
		cur -= 8
	}

	// score bar under the chips
	barY := chipY + chipSize + 2*padY + 6
	barW := (xRight - cur) * (s.Score / maxScore)
	if barW > 0 && barY+4 < y+rowH-6 {
		dc.SetColor(t.Accent)
		if s.Score >= maxScore*0.75 && s.Score > 0 {
			dc.SetColor(t.Hot)
		}
		dc.DrawRoundedRectangle(xRight-barW, barY, barW, 4, 2)
		dc.Fill()
	}
}

func (r *Renderer) drawFooter(dc *gg.Context, page Page) {
	t := r.theme
	r.drawPanel(dc, footerBox)
	r.drawAccent(dc, footerBox, 22)

	dc.SetFontFace(r.fonts.face(28, true))
	dc.SetColor(t.Text)
	dc.DrawStringAnchored(t.FooterTitle, footerBox.x0+28, footerBox.y0+46, 0, 1)

	dc.SetFontFace(r.fonts.face(22, false))
	dc.SetColor(t.Muted)
	dc.DrawStringAnchored(t.FooterNote, footerBox.x0+28, footerBox.y0+78, 0, 1)

	lx := int(footerBox.x1) - 28 - logoSize
	ly := int(footerBox.y1) - 8 - logoSize
	dc.DrawImage(r.logo, lx, ly)

	if page.Total > 1 {
		dc.DrawStringAnchored(fmt.Sprintf("%d/%d", page.Index, page.Total), float64(lx-16), footerBox.y0+78, 1, 1)
	}
}

// chip draws a rounded label at (x, y) and returns its size
func (r *Renderer) chip(dc *gg.Context, x, y float64, text string, f font.Face, outline Color, padX, padY float64) (float64, float64) {
	t := r.theme
	dc.SetFontFace(f)
	tw, th := dc.MeasureString(text)
	w := tw + 2*padX
	h := th + 2*padY

	dc.SetColor(t.Chip)
	dc.DrawRoundedRectangle(x, y, w, h, math.Min(14, h/2))
	dc.FillPreserve()
	dc.SetColor(outline)
	dc.SetLineWidth(2)
	dc.Stroke()

	dc.SetColor(t.Text)
	dc.DrawStringAnchored(text, x+padX, y+padY, 0, 1)
	return w, h
}

func (r *Renderer) matchup(s models.TeamPressureScore) string {
	if !s.PlaysToday() {
		return "No game today"
	}
	text := "@ " + s.Opponent
	if s.IsHome {
		text = "vs " + s.Opponent
	}
	if !s.StartTime.IsZero() {
		text += " | " + s.StartTime.In(r.loc).Format("3:04 PM") + " " + zoneLabel(r.loc)
	}
	if s.GamesToday > 1 {
		text += fmt.Sprintf(" (+%d)", s.GamesToday-1)
	}
	return text
}

func (r *Renderer) travelText(s models.TeamPressureScore) string {
	switch s.Travel {
	case models.TravelUnresolved:
		return r.theme.Placeholder
	case models.TravelNone:
		return "0"
	}
	return FormatKm(s.TravelKm)
}

// FormatKm renders a distance compactly: 742, 3.1k
func FormatKm(km float64) string {
	if km < 1000 {
		return fmt.Sprintf("%d", int(math.Round(km)))
	}
	return fmt.Sprintf("%.1fk", km/1000)
}

// zoneLabel returns "ET" for the eastern zones and the location name otherwise
func zoneLabel(loc *time.Location) string {
	switch loc.String() {
	case "America/Toronto", "America/New_York", "America/Montreal", "America/Detroit":
		return "ET"
	}
	return loc.String()
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
