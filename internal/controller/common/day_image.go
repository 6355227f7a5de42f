package common

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleRegular FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	columnWidth      = 220
	minImageWidth    = 600
	imageHeight      = 900
	headerHeight     = 110
	leftLabelsWidth  = 80
	columnPaddingX   = 8
	minSlotHeight    = 14.0
	slotBorderRadius = 6.0
	shadowOffset     = 3.0
	hourPaddingTop   = 1
	hourPaddingBot   = 1
	defaultMinHour   = 8
	defaultMaxHour   = 18
)

// Константы шрифтов
const (
	titleFontSize     = 26.0
	teacherFontSize   = 18.0
	hourLabelFontSize = 16.0
	slotTimeFontSize  = 15.0
	attendeeFontSize  = 13.0
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	evenColColor   = color.NRGBA{240, 240, 240, 255}
	oddColColor    = color.NRGBA{220, 220, 220, 255}

	slotBookedColor     = color.RGBA{255, 182, 193, 255}
	slotBookedTextColor = color.RGBA{120, 40, 50, 255}
	slotShadowColor     = color.RGBA{0, 0, 0, 20}
)

type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont ставит шрифт нужного стиля, при ошибке откатывается на basicfont
func loadFont(dc *gg.Context, size float64, style FontStyle) {
	data := goregular.TTF
	if style == FontStyleBold {
		data = gobold.TTF
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		var err error
		parsed, err = opentype.Parse(data)
		if err == nil {
			cachedFonts[style] = parsed
		}
	}
	fontsMu.Unlock()

	if parsed != nil {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// RenderDaySchedule draws one column per teacher with the booked slots of
// the day and returns the PNG bytes.
func RenderDaySchedule(day time.Time, schedules []model.TeacherSchedule) ([]byte, error) {
	columns := len(schedules)
	if columns == 0 {
		columns = 1
	}
	width := leftLabelsWidth + columns*columnWidth
	if width < minImageWidth {
		width = minImageWidth
	}

	hours := calculateHourRange(schedules)
	cellHeight := float64(imageHeight-headerHeight) / float64(hours.total)

	dc := gg.NewContext(width, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()

	drawHeader(dc, day)
	drawHourLabels(dc, hours, cellHeight)

	if len(schedules) == 0 {
		drawColumnBackground(dc, 0, float64(leftLabelsWidth), width-leftLabelsWidth)
		drawHourLines(dc, float64(leftLabelsWidth), width-leftLabelsWidth, hours, cellHeight)
		loadFont(dc, teacherFontSize, FontStyleRegular)
		dc.SetColor(textColor)
		dc.DrawStringAnchored("No appointments", float64(leftLabelsWidth+width)/2, float64(imageHeight)/2, 0.5, 0.5)
	}

	for i, sched := range schedules {
		x := float64(leftLabelsWidth + i*columnWidth)
		drawColumnBackground(dc, i, x, columnWidth)
		drawTeacherHeader(dc, sched.Teacher, x)
		drawHourLines(dc, x, columnWidth, hours, cellHeight)
		for _, slot := range sched.Slots {
			drawSlot(dc, slot, x, hours, cellHeight)
		}
	}

	return encodeImage(dc)
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(schedules []model.TeacherSchedule) hourRange {
	minHour, maxHour := 24, 0

	for _, sched := range schedules {
		for _, slot := range sched.Slots {
			startH := slot.Start.Hour()
			endH := int(slot.End) / 3600
			if int(slot.End)%3600 > 0 {
				endH++
			}
			minHour = min(minHour, startH)
			maxHour = max(maxHour, endH)
		}
	}

	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}

	start := max(minHour-hourPaddingTop, 0)
	end := min(maxHour+hourPaddingBot, 24)
	if end <= start {
		end = start + 1
	}

	return hourRange{start: start, end: end, total: end - start}
}

func drawHeader(dc *gg.Context, day time.Time) {
	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(day.Format("Monday, 02 January 2006"), 20, float64(headerHeight)/4, 0, 0.5)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleRegular)
	dc.SetColor(hourLabelColor)

	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(formatHourLabel(hours.start+i), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawColumnBackground(dc *gg.Context, index int, x float64, width int) {
	if index%2 == 0 {
		dc.SetColor(evenColColor)
	} else {
		dc.SetColor(oddColColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), float64(width), float64(imageHeight-headerHeight))
	dc.Fill()
}

func drawTeacherHeader(dc *gg.Context, name string, x float64) {
	loadFont(dc, teacherFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(truncate(name, 22), x+columnWidth/2, float64(headerHeight)-12, 0.5, 0)
}

func drawHourLines(dc *gg.Context, x float64, width int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for i := 0; i <= hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawLine(x, y, x+float64(width), y)
		dc.Stroke()
	}
}

// drawSlot рисует один занятый слот с временем и списком записавшихся
func drawSlot(dc *gg.Context, slot model.ScheduledSlot, x float64, hours hourRange, cellHeight float64) {
	startHour := float64(slot.Start) / 3600
	endHour := float64(slot.End) / 3600

	y := float64(headerHeight) + (startHour-float64(hours.start))*cellHeight
	height := max((endHour-startHour)*cellHeight, minSlotHeight)
	width := float64(columnWidth - columnPaddingX*2)

	// Тень
	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+columnPaddingX+shadowOffset, y+2+shadowOffset, width, height-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(slotBookedColor)
	dc.DrawRoundedRectangle(x+columnPaddingX, y+2, width, height-4, slotBorderRadius)
	dc.Fill()

	dc.SetColor(darkenColor(slotBookedColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+columnPaddingX, y+2, width, height-4, slotBorderRadius)
	dc.Stroke()

	loadFont(dc, slotTimeFontSize, FontStyleBold)
	dc.SetColor(slotBookedTextColor)
	txtX := x + columnPaddingX + 8
	txtY := y + 18
	dc.DrawStringAnchored(fmt.Sprintf("%s - %s", slot.Start, slot.End), txtX, txtY, 0, 0)

	if height <= 30 || len(slot.Attendees) == 0 {
		return
	}

	names := make([]string, 0, len(slot.Attendees))
	for _, a := range slot.Attendees {
		names = append(names, a.Name)
	}
	loadFont(dc, attendeeFontSize, FontStyleRegular)
	dc.DrawStringAnchored(truncate(strings.Join(names, ", "), 28), txtX, txtY+16, 0, 0)
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func formatHourLabel(h int) string {
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}
