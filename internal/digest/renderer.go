package digest

import (
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"matchday/internal/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Fallbacks for degraded catalog data.
const (
	placeholderSportName   = "Sport"
	placeholderSportEmoji  = "\U0001F3C6" // trophy
	placeholderCompetition = "Unknown competition"
)

// RenderedDigest is one user's fully rendered email.
type RenderedDigest struct {
	Subject  string
	BodyHTML string
	BodyText string
}

// Renderer turns a user's matched events into a self-contained email body.
// The HTML output uses inline styles only, so it can be handed to the email
// transport as-is; a plain-text sibling is rendered alongside it.
type Renderer struct {
	htmlTmpl *template.Template
	textTmpl *texttemplate.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	htmlTmpl, err := template.ParseFS(templateFS, "templates/digest.html.tmpl")
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to parse HTML digest template",
			err,
		)
	}
	textTmpl, err := texttemplate.ParseFS(templateFS, "templates/digest.txt.tmpl")
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to parse text digest template",
			err,
		)
	}
	return &Renderer{htmlTmpl: htmlTmpl, textTmpl: textTmpl}, nil
}

// digestView is the template input for one user's digest.
type digestView struct {
	LongDate string
	Events   []eventView
}

type eventView struct {
	Emoji        string
	SportName    string
	Competition  string
	TimeBadge    string
	Participants string
	LongDate     string
	TV           []broadcasterView
	Streaming    []broadcasterView
}

// HasBroadcasters reports whether either group has entries; when false the
// templates render a single "no broadcaster available" line instead.
func (v eventView) HasBroadcasters() bool {
	return len(v.TV) > 0 || len(v.Streaming) > 0
}

type broadcasterView struct {
	Name string
	URL  string
}

// Render produces one user's digest for the target date. Events are sorted
// ascending by start timestamp; events without one sort first.
func (r *Renderer) Render(events []types.Event, sports []types.Sport, date string) (*RenderedDigest, error) {
	sportsByID := make(map[int64]types.Sport, len(sports))
	for _, s := range sports {
		sportsByID[s.ID] = s
	}

	sorted := make([]types.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartAt < sorted[j].StartAt
	})

	longDate := formatLongDate(date)
	view := digestView{
		LongDate: longDate,
		Events:   make([]eventView, 0, len(sorted)),
	}
	for _, event := range sorted {
		view.Events = append(view.Events, buildEventView(event, sportsByID, longDate))
	}

	var htmlBuf, textBuf strings.Builder
	if err := r.htmlTmpl.Execute(&htmlBuf, view); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to render HTML digest",
			err,
		)
	}
	if err := r.textTmpl.Execute(&textBuf, view); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to render text digest",
			err,
		)
	}

	return &RenderedDigest{
		Subject:  fmt.Sprintf("Your Matchday digest for %s", longDate),
		BodyHTML: htmlBuf.String(),
		BodyText: textBuf.String(),
	}, nil
}

func buildEventView(event types.Event, sportsByID map[int64]types.Sport, longDate string) eventView {
	sport, ok := sportsByID[event.SportID]
	if !ok {
		sport = types.Sport{Name: placeholderSportName, Emoji: placeholderSportEmoji}
	}

	competition := event.Competition
	if competition == "" {
		competition = placeholderCompetition
	}

	v := eventView{
		Emoji:        sport.Emoji,
		SportName:    sport.Name,
		Competition:  competition,
		TimeBadge:    formatTimeBadge(event.Time),
		Participants: formatParticipants(event.EventDetail1, event.EventDetail2),
		LongDate:     longDate,
	}

	for _, b := range event.Broadcasters {
		bv := broadcasterView{Name: b.Name, URL: b.URL}
		switch b.Type {
		case types.BroadcasterTV:
			v.TV = append(v.TV, bv)
		case types.BroadcasterStreaming:
			v.Streaming = append(v.Streaming, bv)
		}
		// Broadcasters with any other type are left out of both groups.
	}
	sortBroadcasterViews(v.TV)
	sortBroadcasterViews(v.Streaming)

	return v
}

func sortBroadcasterViews(views []broadcasterView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Name < views[j].Name
	})
}

// formatTimeBadge keeps the HH:MM prefix of a "HH:MM:SS" time value.
func formatTimeBadge(eventTime string) string {
	if len(eventTime) < 5 {
		return ""
	}
	return eventTime[:5]
}

// formatParticipants joins the two participant details with " - ", dropping
// whichever side is absent.
func formatParticipants(detail1, detail2 string) string {
	switch {
	case detail1 != "" && detail2 != "":
		return detail1 + " - " + detail2
	case detail1 != "":
		return detail1
	default:
		return detail2
	}
}

// formatLongDate renders a "YYYY-MM-DD" date in long form, falling back to
// the raw value if it does not parse.
func formatLongDate(date string) string {
	t, err := time.Parse(civilDateFormat, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}
