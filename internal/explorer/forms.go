package explorer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/stats"
)

type formKind int

const (
	formNone formKind = iota
	formSingle
	formArsenal
	formCreate
	formAddPitch
)

type form struct {
	title  string
	inputs []textinput.Model
	index  int
	err    string
}

func newInput(prompt, placeholder string, suggestions []string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	if len(suggestions) > 0 {
		input.ShowSuggestions = true
		input.SetSuggestions(suggestions)
		input.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
	}
	return input
}

func (m *Model) initForms() {
	m.forms = map[formKind]*form{
		formSingle: {
			title: "Single Pitch",
			inputs: []textinput.Model{
				newInput("Pitch type: ", "Sweeper", m.pitchTypes),
				newInput("Pitcher: ", "Last, First", m.pitchers),
				newInput("Handedness: ", "blank = pitcher's", nil),
				newInput("Arm angle radius: ", "", nil),
			},
		},
		formArsenal: {
			title: "Arsenal",
			inputs: []textinput.Model{
				newInput("Pitcher: ", "Last, First", m.pitchers),
				newInput("Arm angle radius: ", "", nil),
			},
		},
		formCreate: {
			title: "Create a Pitcher",
			inputs: []textinput.Model{
				newInput("Throws (R/L): ", "R", nil),
				newInput("Min arm angle: ", "", nil),
				newInput("Max arm angle: ", "", nil),
				newInput("Arm angle: ", "blank = use min/max", nil),
			},
		},
		formAddPitch: {
			title: "Add Pitch",
			inputs: []textinput.Model{
				newInput("Pitch type: ", "Sweeper", m.pitchTypes),
				newInput("HB: ", "inches", nil),
				newInput("iVB: ", "inches", nil),
				newInput("Arm angle: ", "optional", nil),
			},
		},
	}
}

// setFormFromState fills the inputs of kind with the current selection.
func (m *Model) setFormFromState(kind formKind) {
	f := m.forms[kind]
	switch kind {
	case formSingle:
		f.inputs[0].SetValue(m.single.PitchType)
		f.inputs[1].SetValue(m.single.Pitcher)
		f.inputs[2].SetValue(m.single.Throws)
		f.inputs[3].SetValue(formatNumber(m.single.Radius))
	case formArsenal:
		f.inputs[0].SetValue(m.arsenal.Pitcher)
		f.inputs[1].SetValue(formatNumber(m.arsenal.Radius))
	case formCreate:
		f.inputs[0].SetValue(m.custom.Throws)
		f.inputs[1].SetValue(formatNumber(m.custom.MinAngle))
		f.inputs[2].SetValue(formatNumber(m.custom.MaxAngle))
		if m.custom.ArmAngle != nil {
			f.inputs[3].SetValue(formatNumber(*m.custom.ArmAngle))
		} else {
			f.inputs[3].SetValue("")
		}
	case formAddPitch:
		for i := range f.inputs {
			f.inputs[i].SetValue("")
		}
	}
}

func (m *Model) startForm(kind formKind) (tea.Model, tea.Cmd) {
	m.form = kind
	m.forms[kind].err = ""
	m.setFormFromState(kind)
	return m, m.setFormIndex(0)
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.forms[m.form]
	switch msg.Type {
	case tea.KeyEsc:
		f.err = ""
		m.form = formNone
		return m, nil
	case tea.KeyEnter:
		if err := m.applyForm(m.form); err != nil {
			f.err = err.Error()
			return m, nil
		}
		f.err = ""
		m.form = formNone
		m.refresh()
		return m, nil
	case tea.KeyTab:
		return m, m.setFormIndex(f.index + 1)
	case tea.KeyShiftTab:
		return m, m.setFormIndex(f.index - 1)
	}
	var cmd tea.Cmd
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return m, cmd
}

func (m *Model) setFormIndex(idx int) tea.Cmd {
	f := m.forms[m.form]
	count := len(f.inputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	f.index = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.index {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyForm(kind formKind) error {
	values := make([]string, len(m.forms[kind].inputs))
	for i, input := range m.forms[kind].inputs {
		values[i] = strings.TrimSpace(input.Value())
	}
	switch kind {
	case formSingle:
		p, err := parseSingleForm(values, m.cfg.ArmAngleRadius)
		if err != nil {
			return err
		}
		m.single = p
		m.hasSingle = true
	case formArsenal:
		p, err := parseArsenalForm(values, m.cfg.ArmAngleRadius)
		if err != nil {
			return err
		}
		m.arsenal = p
		m.hasArsenal = true
	case formCreate:
		p, err := parseCreateForm(values, m.cfg)
		if err != nil {
			return err
		}
		m.custom = p
	case formAddPitch:
		pitch, err := parsePitchForm(values)
		if err != nil {
			return err
		}
		m.pitches.Add(pitch)
	}
	return nil
}

func parseSingleForm(values []string, defaultRadius float64) (stats.SinglePitchParams, error) {
	if values[0] == "" {
		return stats.SinglePitchParams{}, fmt.Errorf("pitch type is required")
	}
	if values[1] == "" {
		return stats.SinglePitchParams{}, fmt.Errorf("pitcher is required")
	}
	throws, err := parseThrows(values[2], true)
	if err != nil {
		return stats.SinglePitchParams{}, err
	}
	radius, err := parseRadius(values[3], defaultRadius)
	if err != nil {
		return stats.SinglePitchParams{}, err
	}
	return stats.SinglePitchParams{PitchType: values[0], Pitcher: values[1], Throws: throws, Radius: radius}, nil
}

func parseArsenalForm(values []string, defaultRadius float64) (stats.ArsenalParams, error) {
	if values[0] == "" {
		return stats.ArsenalParams{}, fmt.Errorf("pitcher is required")
	}
	radius, err := parseRadius(values[1], defaultRadius)
	if err != nil {
		return stats.ArsenalParams{}, err
	}
	return stats.ArsenalParams{Pitcher: values[0], Radius: radius}, nil
}

func parseCreateForm(values []string, cfg model.ExploreConfig) (stats.CustomParams, error) {
	throws, err := parseThrows(values[0], false)
	if err != nil {
		return stats.CustomParams{}, err
	}
	minAngle, err := parseNumber("min arm angle", values[1])
	if err != nil {
		return stats.CustomParams{}, err
	}
	maxAngle, err := parseNumber("max arm angle", values[2])
	if err != nil {
		return stats.CustomParams{}, err
	}
	if minAngle > maxAngle {
		return stats.CustomParams{}, fmt.Errorf("min arm angle must not exceed max arm angle")
	}
	p := stats.CustomParams{
		Throws:    throws,
		MinAngle:  minAngle,
		MaxAngle:  maxAngle,
		Match:     cfg.MatchPolicy,
		Tolerance: cfg.Tolerance,
	}
	if values[3] != "" {
		angle, err := parseNumber("arm angle", values[3])
		if err != nil {
			return stats.CustomParams{}, err
		}
		p.ArmAngle = &angle
	}
	return p, nil
}

func parsePitchForm(values []string) (model.UserPitch, error) {
	if values[0] == "" {
		return model.UserPitch{}, fmt.Errorf("pitch type is required")
	}
	hb, err := parseNumber("HB", values[1])
	if err != nil {
		return model.UserPitch{}, err
	}
	ivb, err := parseNumber("iVB", values[2])
	if err != nil {
		return model.UserPitch{}, err
	}
	pitch := model.UserPitch{PitchType: values[0], HB: hb, IVB: ivb}
	if values[3] != "" {
		angle, err := parseNumber("arm angle", values[3])
		if err != nil {
			return model.UserPitch{}, err
		}
		pitch.ArmAngle = &angle
	}
	return pitch, nil
}

func parseThrows(input string, allowEmpty bool) (string, error) {
	switch strings.ToUpper(input) {
	case "R":
		return "R", nil
	case "L":
		return "L", nil
	case "":
		if allowEmpty {
			return "", nil
		}
	}
	return "", fmt.Errorf("invalid handedness %q (use R or L)", input)
}

func parseRadius(input string, fallback float64) (float64, error) {
	if input == "" {
		return fallback, nil
	}
	radius, err := parseNumber("arm angle radius", input)
	if err != nil {
		return 0, err
	}
	if radius <= 0 {
		return 0, fmt.Errorf("arm angle radius must be > 0")
	}
	return radius, nil
}

func parseNumber(label, input string) (float64, error) {
	if input == "" {
		return 0, fmt.Errorf("%s is required", label)
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q", label, input)
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
