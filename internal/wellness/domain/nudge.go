// Package domain contains the wellness context's nudge model.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// NudgeType identifies the kind of wellness reminder.
type NudgeType string

const (
	NudgeBreakReminder NudgeType = "break_reminder"
	NudgeHydration     NudgeType = "hydration"
	NudgePostureCheck  NudgeType = "posture_check"
	NudgeEyeRest       NudgeType = "eye_rest"
	NudgeStressRelief  NudgeType = "stress_relief"
	NudgeAchievement   NudgeType = "achievement"
)

// ErrUnknownNudgeType indicates an unrecognized nudge type.
var ErrUnknownNudgeType = errors.New("unknown nudge type")

// Nudge is one scheduled wellness reminder with rendered email content.
type Nudge struct {
	Type    NudgeType `json:"type"`
	DueAt   time.Time `json:"due_at"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
}

// TemplateData parameterizes nudge rendering. Zero values render sensible
// fallbacks.
type TemplateData struct {
	// StudyMinutes is how long the current study block has run when the
	// nudge fires.
	StudyMinutes int

	// Subject is the study subject the nudge interrupts.
	Subject string

	// Evening appends a wind-down suggestion to break reminders.
	Evening bool

	// Achievement fields.
	CompletedSessions int
	TotalStudyMinutes int
	SubjectsStudied   []string
	BreaksTaken       int
}

func (d TemplateData) StudyDuration() string {
	if d.StudyMinutes <= 0 {
		return "a while"
	}
	return fmt.Sprintf("%d minutes", d.StudyMinutes)
}

func (d TemplateData) SubjectName() string {
	if d.Subject == "" {
		return "your subject"
	}
	return d.Subject
}

func (d TemplateData) SubjectList() string {
	if len(d.SubjectsStudied) == 0 {
		return "multiple areas"
	}
	return strings.Join(d.SubjectsStudied, ", ")
}

// Encouragement scales with how many sessions were completed.
func (d TemplateData) Encouragement() string {
	switch {
	case d.CompletedSessions >= 5:
		return "You're absolutely crushing it today!"
	case d.CompletedSessions >= 3:
		return "Fantastic progress - keep the momentum going!"
	default:
		return "Every step forward counts - you're doing great!"
	}
}

// NewNudge renders the template for the given type and returns a nudge due
// at the given time.
func NewNudge(nudgeType NudgeType, dueAt time.Time, data TemplateData) (Nudge, error) {
	content, ok := nudgeTemplates[nudgeType]
	if !ok {
		return Nudge{}, fmt.Errorf("%w: %s", ErrUnknownNudgeType, nudgeType)
	}

	var body strings.Builder
	if err := content.body.Execute(&body, data); err != nil {
		return Nudge{}, fmt.Errorf("render %s nudge: %w", nudgeType, err)
	}

	return Nudge{
		Type:    nudgeType,
		DueAt:   dueAt,
		Subject: content.subject,
		Body:    body.String(),
	}, nil
}

type nudgeContent struct {
	subject string
	body    *template.Template
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

var nudgeTemplates = map[NudgeType]nudgeContent{
	NudgeBreakReminder: {
		subject: "Time for a Study Break",
		body: mustTemplate("break_reminder", `Hey there!

You've been studying {{.SubjectName}} for {{.StudyDuration}} - time for a well-deserved break.

Quick break suggestions:
- Take a 5-10 minute walk
- Do some stretching or light yoga
- Hydrate with water
- Practice deep breathing exercises
- Rest your eyes by looking at something far away

Regular breaks improve focus and prevent burnout.
{{- if .Evening}}

Since it's evening, consider lighter activities to wind down.
{{- end}}

StudyBalance`),
	},
	NudgeHydration: {
		subject: "Hydration Reminder",
		body: mustTemplate("hydration", `Hi!

Don't forget to stay hydrated. Your brain needs water to function well.

Quick hydration tips:
- Drink a full glass of water now
- Keep a water bottle at your study space
- Try herbal tea for variety

Stay healthy and keep learning.

StudyBalance`),
	},
	NudgePostureCheck: {
		subject: "Posture Check-In",
		body: mustTemplate("posture_check", `Hello!

Time for a quick posture check. Good posture reduces fatigue and improves concentration.

Quick adjustments:
- Sit up straight with shoulders back
- Keep feet flat on the floor
- Position your screen at eye level
- Roll your shoulders and neck

Your future self will thank you.

StudyBalance`),
	},
	NudgeEyeRest: {
		subject: "Eye Rest Reminder",
		body: mustTemplate("eye_rest", `Hi there!

Follow the 20-20-20 rule: every 20 minutes, look at something 20 feet away for 20 seconds.

Eye care tips:
- Blink frequently to moisten your eyes
- Adjust screen brightness
- Close your eyes and rest for 30 seconds

Protect your vision for lifelong learning.

StudyBalance`),
	},
	NudgeStressRelief: {
		subject: "Stress Relief Moment",
		body: mustTemplate("stress_relief", `Hey!

Feeling stressed? That's completely normal. Try this two-minute reset:

- Take 5 deep breaths (4 counts in, 6 counts out)
- Do 10 gentle neck rolls
- Think of one thing you're grateful for

{{.Encouragement}}

StudyBalance`),
	},
	NudgeAchievement: {
		subject: "Great Progress",
		body: mustTemplate("achievement", `Congratulations!

You've completed {{.CompletedSessions}} study sessions today.

Your achievements:
- Study time: {{.TotalStudyMinutes}} minutes
- Subjects covered: {{.SubjectList}}
- Breaks taken: {{.BreaksTaken}}

{{.Encouragement}} Remember to celebrate small wins along the way.

StudyBalance`),
	},
}
