// Package mood maps the backend's emotion labels onto the calendar colors.
package mood

// Day is one calendar day in the monthly mood response. The backend keys the
// emotion label as "month".
type Day struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Emotion string `json:"month"`
}

// emotionColors matches the legend hex codes of the web client.
var emotionColors = map[string]string{
	"분노": "#fecaca",
	"기쁨": "#fef08a",
	"상처": "#e9d5ff",
	"불안": "#bfdbfe",
	"당황": "#fce7f3",
	"슬픔": "#d1d5db",
}

// DefaultColor is used for unknown or absent emotions.
const DefaultColor = "#FFFFFF"

// ColorFor returns the display color for an emotion label.
func ColorFor(emotion string) string {
	if c, ok := emotionColors[emotion]; ok {
		return c
	}
	return DefaultColor
}

// Fold turns the monthly response into a date → emotion map.
func Fold(days []Day) map[string]string {
	m := make(map[string]string, len(days))
	for _, d := range days {
		m[d.Date] = d.Emotion
	}
	return m
}
