// Package explorer provides the Bubble Tea pitch-movement dashboard.
package explorer

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pitchmap/internal/logging"
	"github.com/verte-zerg/pitchmap/internal/model"
	"github.com/verte-zerg/pitchmap/internal/query"
	"github.com/verte-zerg/pitchmap/internal/session"
	"github.com/verte-zerg/pitchmap/internal/stats"
)

const (
	tabSingle = iota
	tabArsenal
	tabCreate
)

const (
	plotHeight       = 21
	maxPitchRows     = 6
	defaultBodyWidth = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#2E8B57"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0B040"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#2E8B57")).
			Padding(1, 2)
)

// Model implements the Bubble Tea dashboard.
type Model struct {
	data    *query.Table
	dataset string
	cfg     model.ExploreConfig
	pitches *session.PitchList

	pitchers   []string
	pitchTypes []string

	single     stats.SinglePitchParams
	hasSingle  bool
	arsenal    stats.ArsenalParams
	hasArsenal bool
	custom     stats.CustomParams

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	pitchTable table.Model

	width  int
	height int

	form  formKind
	forms map[formKind]*form

	errMsg string
}

// NewModel constructs the dashboard over a loaded dataset. The pitch list is
// owned by the caller and lives as long as the session.
func NewModel(data *query.Table, cfg model.ExploreConfig, pitches *session.PitchList) *Model {
	if pitches == nil {
		pitches = session.New()
	}
	m := &Model{
		data:    data,
		dataset: cfg.Dataset,
		cfg:     cfg,
		pitches: pitches,
		tabs:    []string{"Single Pitch", "Arsenal", "Create a Pitcher"},
		custom: stats.CustomParams{
			Throws:    "R",
			MinAngle:  cfg.CreateMinAngle,
			MaxAngle:  cfg.CreateMaxAngle,
			Match:     cfg.MatchPolicy,
			Tolerance: cfg.Tolerance,
		},
	}
	m.single.Radius = cfg.ArmAngleRadius
	m.arsenal.Radius = cfg.ArmAngleRadius
	m.loadChoices()
	m.initForms()
	m.initPitchTable()
	m.initViewports()
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.form != formNone {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/", "enter":
			return m.startForm(m.selectionForm())
		case "a":
			if m.activeTab == tabCreate {
				return m.startForm(formAddPitch)
			}
			return m, nil
		case "r":
			if m.activeTab == tabCreate {
				m.pitches.Reset()
				logging.Debug().Msg("custom pitcher reset")
				m.refresh()
			}
			return m, nil
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		default:
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.form != formNone {
		return fitLines(m.renderFormModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Pitches returns the session pitch list driven by the dashboard.
func (m *Model) Pitches() *session.PitchList {
	return m.pitches
}

func (m *Model) loadChoices() {
	if m.data.Empty() {
		m.errMsg = "Dataset is empty. Run `pitchmap fetch` first."
		return
	}
	pitchers, err := query.DistinctValues(m.data, model.ColPlayerName)
	if err != nil {
		logging.Warn().Err(err).Msg("list pitchers")
		m.errMsg = err.Error()
	}
	pitchTypes, err := query.DistinctValues(m.data, model.ColPitchType)
	if err != nil {
		logging.Warn().Err(err).Msg("list pitch types")
		m.errMsg = err.Error()
	}
	m.pitchers = pitchers
	m.pitchTypes = pitchTypes
}

func (m *Model) selectionForm() formKind {
	switch m.activeTab {
	case tabArsenal:
		return formArsenal
	case tabCreate:
		return formCreate
	default:
		return formSingle
	}
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initPitchTable() {
	m.pitchTable = table.New(
		table.WithColumns(pitchTableColumns()),
		table.WithHeight(1),
	)
	m.pitchTable.SetStyles(pitchTableStyles())
}

func pitchTableColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Pitch Type", Width: 16},
		{Title: "HB", Width: 7},
		{Title: "iVB", Width: 7},
		{Title: "Arm Angle", Width: 9},
	}
}

func pitchTableRows(pitches []model.UserPitch) []table.Row {
	rows := make([]table.Row, 0, len(pitches))
	for i, p := range pitches {
		angle := "-"
		if p.ArmAngle != nil {
			angle = fmt.Sprintf("%.1f", *p.ArmAngle)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			p.PitchType,
			fmt.Sprintf("%.1f", p.HB),
			fmt.Sprintf("%.1f", p.IVB),
			angle,
		})
	}
	return rows
}

func pitchTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell
	return styles
}

// pitchTableHeight is the number of lines the added-pitches table takes on
// the create tab, header and border included.
func (m *Model) pitchTableHeight() int {
	if m.pitches.State() == session.Empty {
		return 0
	}
	return min(m.pitches.Len(), maxPitchRows) + 2
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	if tableHeight := m.pitchTableHeight(); tableHeight > 0 {
		m.viewports[tabCreate].Height = max(1, bodyHeight-tableHeight)
		m.pitchTable.SetWidth(m.width)
		m.pitchTable.SetHeight(tableHeight - 1)
	}
	for _, f := range m.forms {
		for i := range f.inputs {
			promptWidth := lipgloss.Width(f.inputs[i].Prompt)
			f.inputs[i].Width = max(10, modalInnerWidth(m.width)-promptWidth)
		}
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
}

func (m *Model) refresh() {
	m.pitchTable.SetRows(pitchTableRows(m.pitches.Pitches()))
	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultBodyWidth
	}
	opts := stats.HeatmapOptions{
		Width:      stats.PlotWidthFor(width),
		Height:     plotHeight,
		Levels:     m.cfg.Levels,
		Thresh:     m.cfg.Thresh,
		ForceColor: true,
	}
	m.viewports[tabSingle].SetContent(m.renderSingle(opts))
	m.viewports[tabArsenal].SetContent(m.renderArsenal(opts))
	m.viewports[tabCreate].SetContent(m.renderCustom(opts))
}

func (m *Model) renderSingle(opts stats.HeatmapOptions) string {
	if !m.hasSingle {
		return "Press / to choose a pitcher and pitch type."
	}
	report, err := stats.BuildSinglePitch(m.data, m.single)
	if err != nil {
		return notice(err)
	}
	var buf bytes.Buffer
	if err := stats.RenderSinglePitch(&buf, report, opts); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderArsenal(opts stats.HeatmapOptions) string {
	if !m.hasArsenal {
		return "Press / to choose a pitcher."
	}
	report, err := stats.BuildArsenal(m.data, m.arsenal)
	if err != nil {
		return notice(err)
	}
	var buf bytes.Buffer
	if err := stats.RenderArsenal(&buf, report, opts); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderCustom(opts stats.HeatmapOptions) string {
	report, err := stats.BuildCustomPitcher(m.data, m.pitches, m.custom)
	if errors.Is(err, stats.ErrNoUserPitches) {
		return fmt.Sprintf("%s\nLeague pool: %sHP, arm angle %s, %d pitches.",
			notice(err), report.Throws, stats.DescribeArmAngle(m.custom), report.LeagueCount)
	}
	if err != nil {
		return notice(err)
	}
	var buf bytes.Buffer
	if err := stats.RenderCustom(&buf, report, opts); err != nil {
		return fmt.Sprintf("Failed to render: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// notice turns an empty-result error into a user-facing message.
func notice(err error) string {
	switch {
	case errors.Is(err, stats.ErrNoPitcherData):
		return noticeStyle.Render("No data found for the selected pitcher.")
	case errors.Is(err, stats.ErrNoLeagueData):
		return noticeStyle.Render("No league data matches the selected criteria.")
	case errors.Is(err, stats.ErrNoUserPitches):
		return noticeStyle.Render("No pitches added yet. Press a to add one.")
	case errors.Is(err, query.ErrMissingColumn), errors.Is(err, query.ErrColumnType):
		return errorStyle.Render(fmt.Sprintf("Dataset is not usable: %v", err))
	default:
		return errorStyle.Render(fmt.Sprintf("Error: %v", err))
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	summary := padLines(m.renderSettingsSummary(), m.width)
	return tabs + "\n" + summary
}

func (m *Model) renderSettingsSummary() string {
	dataset := m.dataset
	if dataset == "" {
		dataset = "-"
	}
	summary := fmt.Sprintf("Dataset: %s (%d pitches)", dataset, m.data.Len())
	switch m.activeTab {
	case tabSingle:
		summary += fmt.Sprintf("  radius=%s", formatNumber(m.single.Radius))
	case tabArsenal:
		summary += fmt.Sprintf("  radius=%s", formatNumber(m.arsenal.Radius))
	case tabCreate:
		summary += fmt.Sprintf("  throws=%s  arm angle=%s  pitches=%d",
			m.custom.Throws, stats.DescribeArmAngle(m.custom), m.pitches.Len())
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Select: /  Quit: q"
	if m.activeTab == tabCreate {
		help = "Nav: left/right  Scroll: up/down  League: /  Add pitch: a  Reset: r  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabCreate && m.pitchTableHeight() > 0 {
		pitchView := m.pitchTable.View()
		return fitLines(pitchView+"\n"+m.viewports[tabCreate].View(), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderFormModal() string {
	f := m.forms[m.form]
	body := []string{titleStyle.Render(f.title)}
	for _, input := range f.inputs {
		body = append(body, input.View())
	}
	body = append(body, headerStyle.Render("tab/shift+tab: next field  right: complete  enter: apply  esc: cancel"))
	if f.err != "" {
		body = append(body, errorStyle.Render(f.err))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
