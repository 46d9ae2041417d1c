package main

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sjroesink/Whisper/accel"
	"github.com/sjroesink/Whisper/clipboard"
	"github.com/sjroesink/Whisper/engine"
	"github.com/sjroesink/Whisper/history"
	"github.com/sjroesink/Whisper/log"
	"github.com/sjroesink/Whisper/login"
	"github.com/sjroesink/Whisper/settings"
	"github.com/sjroesink/Whisper/store"
)

// TUI message types. The first three arrive from outside the program via
// tuiSend; tickMsg drives the eye animation.
type StoreChangedMsg struct{}
type CopiedMsg struct{}
type UpdateAvailableMsg struct{ Version string }
type tickMsg time.Time

type tuiModel struct {
	st  *store.Store
	ctx context.Context

	snap          store.Snapshot
	frame         int
	width, height int

	recStart  time.Time
	copied    bool   // last transcript made it to the clipboard
	updateVer string // newer release, empty when current

	histCursor  int
	setCursor   int
	modelCursor int

	editing   bool
	editBuf   string
	capturing bool
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

// tuiSend delivers a message to the running program, if any.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

// Eye palettes: index 0 is transparent, 1-13 the iris rings from core
// to rim, 14-15 the glass highlights.
var (
	eyeStylesRec  = newEyeStyles([]string{"", "226", "220", "214", "208", "196", "160", "124", "88", "52", "236", "236", "236", "236", "255", "249"})
	eyeStylesIdle = newEyeStyles([]string{"", "231", "224", "217", "210", "160", "124", "88", "52", "236", "236", "236", "236", "236", "255", "249"})
)

// eyeStyles holds lipgloss styles for every palette index pair, built
// once so the 60ms tick renders without allocating styles.
type eyeStyles struct {
	fg    [16]lipgloss.Style
	split [16][16]lipgloss.Style
}

func newEyeStyles(palette []string) *eyeStyles {
	s := &eyeStyles{}
	for i, fg := range palette {
		if fg == "" {
			continue
		}
		s.fg[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
		for j, bg := range palette {
			if bg != "" {
				s.split[i][j] = lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
			}
		}
	}
	return s
}

func NewTUIProgram(ctx context.Context, st *store.Store) *tea.Program {
	m := tuiModel{st: st, ctx: ctx, snap: st.Snapshot()}
	if m.snap.Recording {
		m.recStart = time.Now()
	}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case StoreChangedMsg:
		fresh := m.st.Snapshot()
		if fresh.Recording && !m.snap.Recording {
			m.recStart = time.Now()
		}
		if latestEntryID(fresh) != latestEntryID(m.snap) {
			m.copied = false
		}
		m.snap = fresh
		m = m.clampCursors()

	case CopiedMsg:
		m.copied = true

	case UpdateAvailableMsg:
		m.updateVer = msg.Version

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// refresh re-reads the snapshot after a synchronous store mutation so the
// next frame shows it without waiting for the change hook.
func (m tuiModel) refresh() tuiModel {
	m.snap = m.st.Snapshot()
	return m.clampCursors()
}

func (m tuiModel) clampCursors() tuiModel {
	m.histCursor = clamp(m.histCursor, 0, len(m.snap.History)-1)
	m.setCursor = clamp(m.setCursor, 0, len(m.settingsRows())-1)
	m.modelCursor = clamp(m.modelCursor, 0, len(m.assetRows())-1)
	return m
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func latestEntryID(s store.Snapshot) string {
	if e, ok := latestEntry(s); ok {
		return e.ID
	}
	return ""
}

func latestEntry(s store.Snapshot) (history.Entry, bool) {
	if len(s.History) == 0 {
		return history.Entry{}, false
	}
	return s.History[0], true
}

// Key handling

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.capturing {
		return m.handleCapture(key), nil
	}
	if m.editing {
		return m.handleEdit(msg), nil
	}
	switch m.snap.View {
	case store.ViewHistory:
		return m.handleHistoryKey(key)
	case store.ViewSettings:
		return m.handleSettingsKey(key)
	case store.ViewModels:
		return m.handleModelsKey(key)
	default:
		return m.handleMainKey(key)
	}
}

func (m tuiModel) handleMainKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case " ", "space":
		return m, m.toggleRecording()
	case "h":
		m.st.SetView(store.ViewHistory)
		return m.refresh(), nil
	case "s":
		m.st.SetView(store.ViewSettings)
		return m.refresh(), nil
	case "m":
		m.st.SetView(store.ViewModels)
		return m.refresh(), nil
	case "y":
		if m.snap.Current != "" {
			return m, copyToClipboard(m.snap.Current)
		}
	case "e":
		m.st.ClearError()
		return m.refresh(), nil
	}
	return m, nil
}

func (m tuiModel) handleHistoryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.st.SetView(store.ViewMain)
		return m.refresh(), nil
	case "j", "down":
		m.histCursor = clamp(m.histCursor+1, 0, len(m.snap.History)-1)
	case "k", "up":
		m.histCursor = clamp(m.histCursor-1, 0, len(m.snap.History)-1)
	case "y", "enter":
		if m.histCursor < len(m.snap.History) {
			return m, copyToClipboard(m.snap.History[m.histCursor].Text)
		}
	case "c":
		return m, m.clearHistory()
	}
	return m, nil
}

func (m tuiModel) handleSettingsKey(key string) (tea.Model, tea.Cmd) {
	rows := m.settingsRows()
	switch key {
	case "esc", "q":
		m.st.SetView(store.ViewMain)
		return m.refresh(), nil
	case "j", "down":
		m.setCursor = clamp(m.setCursor+1, 0, len(rows)-1)
	case "k", "up":
		m.setCursor = clamp(m.setCursor-1, 0, len(rows)-1)
	case "s":
		return m, m.saveSettings()
	case "left":
		return m.applyRow(rows, -1), nil
	case "right":
		return m.applyRow(rows, 1), nil
	case "enter", " ", "space":
		return m.applyRow(rows, 1), nil
	}
	return m, nil
}

// applyRow activates the selected row: cycles enums, starts text editing or
// hotkey capture.
func (m tuiModel) applyRow(rows []settingsRow, delta int) tuiModel {
	if m.setCursor >= len(rows) {
		return m
	}
	row := rows[m.setCursor]
	switch row.kind {
	case rowCycle, rowToggle:
		row.cycle(delta)
		return m.refresh()
	case rowText:
		m.editing = true
		m.editBuf = row.raw
	case rowHotkey:
		m.capturing = true
	}
	return m
}

func (m tuiModel) handleEdit(msg tea.KeyMsg) tuiModel {
	switch msg.String() {
	case "enter":
		rows := m.settingsRows()
		if m.setCursor < len(rows) && rows[m.setCursor].commit != nil {
			rows[m.setCursor].commit(m.editBuf)
		}
		m.editing = false
		m.editBuf = ""
		return m.refresh()
	case "esc":
		m.editing = false
		m.editBuf = ""
		return m
	case "backspace":
		if r := []rune(m.editBuf); len(r) > 0 {
			m.editBuf = string(r[:len(r)-1])
		}
		return m
	case " ", "space":
		m.editBuf += " "
		return m
	}
	if msg.Type == tea.KeyRunes {
		m.editBuf += string(msg.Runes)
	}
	return m
}

// handleCapture feeds one key press into the accelerator capture. Escape
// cancels, backspace resets the binding to its default.
func (m tuiModel) handleCapture(key string) tuiModel {
	if key == " " {
		key = "space"
	}
	acc, done := accel.CaptureKey(key)
	if !done {
		return m
	}
	m.capturing = false
	if acc != "" {
		m.st.Settings().SetHotkey(acc)
		return m.refresh()
	}
	return m
}

func (m tuiModel) handleModelsKey(key string) (tea.Model, tea.Cmd) {
	rows := m.assetRows()
	switch key {
	case "esc", "q":
		m.st.SetView(store.ViewMain)
		return m.refresh(), nil
	case "j", "down":
		m.modelCursor = clamp(m.modelCursor+1, 0, len(rows)-1)
	case "k", "up":
		m.modelCursor = clamp(m.modelCursor-1, 0, len(rows)-1)
	case "d", "enter":
		if m.modelCursor < len(rows) {
			row := rows[m.modelCursor]
			if !m.downloading(row.name) {
				return m, m.downloadAsset(row.kind, row.name)
			}
		}
	}
	return m, nil
}

// downloading reports whether the item already has a progress line.
func (m tuiModel) downloading(item string) bool {
	for _, l := range m.snap.Downloads {
		if l.Item == item {
			return true
		}
	}
	return false
}

// Engine commands run as bubbletea commands so Update never blocks on the
// wire. Results come back through the store's change hook.

func (m tuiModel) toggleRecording() tea.Cmd {
	st, ctx := m.st, m.ctx
	return func() tea.Msg {
		st.Toggle(ctx)
		return nil
	}
}

func (m tuiModel) clearHistory() tea.Cmd {
	st, ctx := m.st, m.ctx
	return func() tea.Msg {
		st.ClearHistory(ctx)
		return nil
	}
}

func (m tuiModel) saveSettings() tea.Cmd {
	st, ctx := m.st, m.ctx
	return func() tea.Msg {
		st.SaveSettings(ctx)
		return nil
	}
}

func (m tuiModel) downloadAsset(kind engine.AssetKind, name string) tea.Cmd {
	st, ctx := m.st, m.ctx
	return func() tea.Msg {
		st.DownloadAsset(ctx, kind, name)
		return nil
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.Copy(text); err != nil {
			return nil
		}
		return CopiedMsg{}
	}
}

// Settings rows

type rowKind int

const (
	rowCycle rowKind = iota
	rowToggle
	rowText
	rowHotkey
	rowInfo
)

type settingsRow struct {
	label  string
	value  string
	kind   rowKind
	cycle  func(delta int)   // rowCycle and rowToggle
	commit func(text string) // rowText
	raw    string            // seed for the edit buffer
}

// settingsRows builds the form from the draft. Edits go straight to the
// reconciler; nothing reaches the engine until a save.
func (m tuiModel) settingsRows() []settingsRow {
	r := m.st.Settings()
	d := m.snap.Draft
	provs := m.snap.Providers

	provLabel := d.ActiveProvider.Name()
	for _, p := range provs {
		if p.ID == d.ActiveProvider {
			provLabel = p.Name
			if !p.Available {
				provLabel += " (unavailable)"
			}
			break
		}
	}

	rows := []settingsRow{
		{label: "Provider", value: provLabel, kind: rowCycle, cycle: func(delta int) {
			if len(provs) == 0 {
				return
			}
			i := 0
			for j, p := range provs {
				if p.ID == d.ActiveProvider {
					i = j
					break
				}
			}
			r.SetActiveProvider(provs[(i+delta+len(provs))%len(provs)].ID)
		}},
		{label: "Mode", value: string(d.InteractionMode), kind: rowCycle, cycle: func(int) {
			if d.InteractionMode == settings.ModeToggle {
				r.SetInteractionMode(settings.ModePushToTalk)
			} else {
				r.SetInteractionMode(settings.ModeToggle)
			}
		}},
		{label: "Hotkey", value: accel.Display(d.Hotkey, accel.CurrentPlatform()), kind: rowHotkey},
		{label: "Language", value: valueOr(d.Language, "auto"), kind: rowText, raw: d.Language, commit: r.SetLanguage},
		{label: "Auto-paste", value: onOff(d.AutoPaste), kind: rowToggle, cycle: func(int) { r.SetAutoPaste(!d.AutoPaste) }},
		{label: "Overlay", value: onOff(d.ShowOverlay), kind: rowToggle, cycle: func(int) { r.SetShowOverlay(!d.ShowOverlay) }},
	}

	devValue := "system default"
	if d.InputDevice != nil {
		devValue = *d.InputDevice
	}
	devices := m.snap.Devices
	rows = append(rows, settingsRow{label: "Microphone", value: devValue, kind: rowCycle, cycle: func(delta int) {
		opts := []string{""}
		for _, dev := range devices {
			opts = append(opts, dev.Name)
		}
		cur := ""
		if d.InputDevice != nil {
			cur = *d.InputDevice
		}
		i := 0
		for j, o := range opts {
			if o == cur {
				i = j
				break
			}
		}
		r.SetInputDevice(opts[(i+delta+len(opts))%len(opts)])
	}})

	// Local login item, applied immediately rather than through the engine.
	if login.Supported() {
		rows = append(rows, settingsRow{label: "Run at login", value: onOff(login.Enabled()), kind: rowToggle, cycle: func(int) {
			var err error
			if login.Enabled() {
				err = login.Disable()
			} else {
				err = login.Enable()
			}
			if err != nil {
				log.Errorf("login item: %v", err)
			}
		}})
	}

	return append(rows, providerRows(r, d)...)
}

// providerRows are the per-provider fields below the fixed block. Which
// fields show depends on the draft's active provider.
func providerRows(r *settings.Reconciler, d settings.Settings) []settingsRow {
	id := d.ActiveProvider
	cfg := d.ProviderConfigs[id]

	textRow := func(label string, field settings.ProviderField, cur *string, masked bool) settingsRow {
		raw := ""
		if cur != nil {
			raw = *cur
		}
		value := raw
		if masked && raw != "" {
			value = strings.Repeat("•", 8)
		}
		return settingsRow{label: label, value: valueOr(value, "(not set)"), kind: rowText, raw: raw, commit: func(text string) {
			r.SetProviderField(id, field, text)
		}}
	}

	switch id {
	case settings.ProviderOpenAIWhisper:
		return []settingsRow{
			textRow("API key", settings.FieldAPIKey, cfg.APIKey, true),
			textRow("API model", settings.FieldModel, cfg.Model, false),
			textRow("Endpoint", settings.FieldEndpoint, cfg.Endpoint, false),
		}
	case settings.ProviderGoogleCloud:
		return []settingsRow{
			textRow("API key", settings.FieldAPIKey, cfg.APIKey, true),
		}
	case settings.ProviderLocalWhisper:
		raw := ""
		if d.LocalWhisperModelPath != nil {
			raw = *d.LocalWhisperModelPath
		}
		return []settingsRow{
			{label: "Model path", value: valueOr(raw, "(not set)"), kind: rowText, raw: raw, commit: r.SetLocalModelPath},
		}
	case settings.ProviderWhisperGPU:
		dll := "(not set)"
		if d.GPUWhisperDLLPath != nil {
			dll = *d.GPUWhisperDLLPath
		}
		model := "(not set)"
		if d.GPUWhisperModelName != nil {
			model = *d.GPUWhisperModelName
		}
		return []settingsRow{
			{label: "GPU dll", value: dll, kind: rowInfo},
			{label: "GPU model", value: model, kind: rowInfo},
		}
	}
	return nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Models rows

type assetRow struct {
	kind  engine.AssetKind
	name  string
	label string
}

// assetRows lists what the models view can download: the GPU dll when it is
// missing, then every model the engine reports.
func (m tuiModel) assetRows() []assetRow {
	var rows []assetRow
	if !m.snap.Assets.DLLAvailable {
		rows = append(rows, assetRow{kind: engine.AssetDLL, name: "Whisper.dll", label: "✗ Whisper.dll  GPU runtime"})
	}
	for _, ms := range m.snap.Assets.Models {
		mark := "✗"
		if ms.Available {
			mark = "✓"
		}
		rows = append(rows, assetRow{kind: engine.AssetModel, name: ms.Name, label: fmt.Sprintf("%s %s  %s", mark, ms.Name, ms.Size)})
	}
	return rows
}

// Rendering

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	switch m.snap.View {
	case store.ViewHistory:
		return m.viewHistory()
	case store.ViewSettings:
		return m.viewSettings()
	case store.ViewModels:
		return m.viewModels()
	default:
		return m.viewMain()
	}
}

func (m tuiModel) viewMain() string {
	const eyeWidth = 45

	eye := renderEye(m.frame, m.snap.Recording, m.snap.Transcribing)

	// Build info section below eye
	var infoLines []string

	switch {
	case m.snap.Recording:
		status := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Render(fmt.Sprintf("● REC %.1fs", time.Since(m.recStart).Seconds()))
		infoLines = append(infoLines, status)
	case m.snap.Transcribing:
		status := lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Render("◌ TRANSCRIBING")
		infoLines = append(infoLines, status)
	default:
		status := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("○ STANDBY")
		infoLines = append(infoLines, status)
	}

	modeLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render(m.modeLine())
	infoLines = append(infoLines, modeLine)

	deviceLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render(m.deviceLine())
	infoLines = append(infoLines, deviceLine)

	if m.snap.LastError != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		infoLines = append(infoLines, "")
		for _, line := range wrapText("✖ "+m.snap.LastError, eyeWidth-2) {
			infoLines = append(infoLines, errStyle.Render(line))
		}
		dismiss := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Render("e to dismiss")
		infoLines = append(infoLines, dismiss)
	}

	if m.updateVer != "" {
		updateLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render("update " + m.updateVer + " available")
		infoLines = append(infoLines, updateLine)
	}

	// Empty line for spacing
	infoLines = append(infoLines, "")

	// Help lines with version
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	hotkeyLabel := accel.Display(m.snap.Canonical.Hotkey, accel.CurrentPlatform())
	infoLines = append(infoLines, boldStyle.Render(hotkeyLabel)+helpStyle.Render(" or space to dictate"))
	infoLines = append(infoLines, helpStyle.Render("h history · s settings · m models · q quit"))
	infoLines = append(infoLines, helpStyle.Render("whisper "+version))

	// Append info to eye
	for _, line := range infoLines {
		eye += line + "\n"
	}

	eyeLines := strings.Split(eye, "\n")

	// Calculate right panel width
	logWidth := m.width - eyeWidth - 1
	if logWidth < 20 {
		logWidth = 20
	}

	// Right panel shows the latest transcription
	var logContent strings.Builder
	wrapWidth := logWidth - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	if m.snap.Current != "" {
		title := lipgloss.NewStyle().
			Foreground(lipgloss.Color("246")).
			Render("Last transcription")
		logContent.WriteString(title + "\n\n")

		textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
		lines := wrapText(m.snap.Current, wrapWidth)
		for i, line := range lines {
			logContent.WriteString(textStyle.Render(line))
			if i == len(lines)-1 && m.copied {
				clipboardStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
				logContent.WriteString(" " + clipboardStyle.Render("[✓ copied]"))
			}
			logContent.WriteString("\n")
		}

		if meta := m.latestMeta(); meta != "" {
			metricsStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
			logContent.WriteString("\n" + metricsStyle.Render(meta) + "\n")
		}
	} else {
		placeholder := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("No transcriptions yet")
		logContent.WriteString(placeholder)
	}

	logPanel := lipgloss.NewStyle().
		Width(logWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(logContent.String())

	// Pad eye panel to full height (eye at top)
	eyePadded := make([]string, m.height)
	for i := range eyePadded {
		if i < len(eyeLines) {
			eyePadded[i] = eyeLines[i]
		} else {
			eyePadded[i] = strings.Repeat(" ", eyeWidth-1)
		}
	}

	eyePanel := lipgloss.NewStyle().
		Width(eyeWidth - 1).
		Height(m.height).
		Render(strings.Join(eyePadded, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, eyePanel, logPanel)
}

// modeLine summarizes the canonical provider, language and interaction mode.
func (m tuiModel) modeLine() string {
	s := m.snap.Canonical
	return fmt.Sprintf("[%s | %s | %s]", s.ActiveProvider.Name(), valueOr(s.Language, "auto"), s.InteractionMode)
}

func (m tuiModel) deviceLine() string {
	name := "system default"
	if d := m.snap.Canonical.InputDevice; d != nil {
		name = *d
	}
	return "mic: " + name
}

// latestMeta renders provider and timing for the newest history entry.
func (m tuiModel) latestMeta() string {
	e, ok := latestEntry(m.snap)
	if !ok {
		return ""
	}
	return entryMeta(e)
}

func entryMeta(e history.Entry) string {
	meta := fmt.Sprintf("%s · %.1fs", settings.ProviderID(e.Provider).Name(), float64(e.DurationMS)/1000)
	if e.Language != "" {
		meta += " · " + e.Language
	}
	return meta
}

func (m tuiModel) viewHistory() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("History (%d)", len(m.snap.History))) + "\n\n")

	if len(m.snap.History) == 0 {
		b.WriteString(dimStyle.Render("No transcriptions yet") + "\n")
		b.WriteString("\n" + helpStyle.Render("esc back") + "\n")
		return b.String()
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}

	// Scroll the list so the cursor stays visible.
	listHeight := m.height - 10
	if listHeight < 3 {
		listHeight = 3
	}
	start := 0
	if m.histCursor >= listHeight {
		start = m.histCursor - listHeight + 1
	}
	end := start + listHeight
	if end > len(m.snap.History) {
		end = len(m.snap.History)
	}

	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	for i := start; i < end; i++ {
		e := m.snap.History[i]
		prefix := "  "
		style := rowStyle
		if i == m.histCursor {
			prefix = "▶ "
			style = selStyle
		}
		line := fmt.Sprintf("%s%s  %s", prefix, e.Timestamp.Local().Format("Jan 02 15:04"), firstLine(e.Text))
		b.WriteString(style.Render(truncate(line, width)) + "\n")
	}

	// Selected entry in full below the list
	e := m.snap.History[m.histCursor]
	b.WriteString("\n")
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	for _, line := range wrapText(e.Text, width) {
		b.WriteString(textStyle.Render(line) + "\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Render(entryMeta(e)) + "\n")

	b.WriteString("\n" + helpStyle.Render("j/k move · y copy · c clear all · esc back") + "\n")
	return b.String()
}

func (m tuiModel) viewSettings() string {
	rows := m.settingsRows()

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	switch {
	case m.snap.Saved:
		b.WriteString("  " + lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓ saved"))
	case m.snap.Dirty:
		b.WriteString("  " + lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("● unsaved changes"))
	}
	b.WriteString("\n\n")

	for i, row := range rows {
		prefix := "  "
		label := labelStyle
		if i == m.setCursor {
			prefix = "▶ "
			label = selStyle
		}
		value := row.value
		switch {
		case i == m.setCursor && m.editing:
			value = m.editBuf + "▏"
		case i == m.setCursor && m.capturing && row.kind == rowHotkey:
			value = "press a chord (esc cancels, backspace resets)"
		}
		b.WriteString(prefix + label.Render(fmt.Sprintf("%-12s", row.label)) + "  " + valueStyle.Render(value) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("j/k move · enter edit · ←/→ cycle · s save · esc back") + "\n")
	return b.String()
}

func (m tuiModel) viewModels() string {
	rows := m.assetRows()

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	rowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("231"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Models") + "\n\n")

	dll := "✗ missing"
	if m.snap.Assets.DLLAvailable {
		dll = "✓ installed"
		if m.snap.Assets.DLLPath != nil {
			dll += "  " + *m.snap.Assets.DLLPath
		}
	}
	b.WriteString(dimStyle.Render("GPU runtime  "+dll) + "\n\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render("No downloadable assets reported") + "\n")
	}
	for i, row := range rows {
		prefix := "  "
		style := rowStyle
		if i == m.modelCursor {
			prefix = "▶ "
			style = selStyle
		}
		label := row.label
		if m.downloading(row.name) {
			label += "  (downloading)"
		}
		b.WriteString(prefix + style.Render(label) + "\n")
	}

	if len(m.snap.Downloads) > 0 {
		b.WriteString("\n" + titleStyle.Render("Downloads") + "\n")
		progStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		for _, line := range m.snap.Downloads {
			b.WriteString("  " + progStyle.Render(line.String()) + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("j/k move · d download · esc back") + "\n")
	return b.String()
}

// eyeRings defines the iris from core to rim. sway scales how far the
// breathing phase moves each radius; the red band reacts the most.
var eyeRings = []struct {
	radius float64
	sway   float64
	color  int
}{
	{0.6, 0.10, 1},
	{1.3, 0.12, 2},
	{2.0, 0.15, 3},
	{2.8, 0.35, 4},
	{3.5, 0.40, 5},
	{4.2, 0.38, 6},
	{5.0, 0.30, 7},
	{5.8, 0.15, 8},
	{6.5, 0.03, 9},
	{7.2, 0, 10},
	{8.0, 0, 11},
	{10.0, 0, 12},
	{12.0, 0, 13},
}

const cos45 = 0.7071

// eyeSpots are the fixed glass reflections, as offsets from center.
// Each spot smears along its tangent, reading as a curved glint.
var eyeSpots = []struct {
	ox, oy, radius float64
	color          int
}{
	{-9.0 * cos45, -9.0 * cos45, 0.7, 14},
	{-7.2 * cos45, -7.2 * cos45, 0.4, 15},
	{0, -10.0, 0.8, 14},
	{0, -8.2, 0.6, 15},
	{9.0 * cos45, -9.0 * cos45, 0.7, 14},
	{7.2 * cos45, -7.2 * cos45, 0.4, 15},
	{0, -2.0, 0.6, 14},
}

// renderEye draws the breathing eye at two pixels per character cell,
// using half blocks for the vertical split.
func renderEye(frame int, recording, transcribing bool) string {
	const w = 44
	const h = 15 * 2

	// The engine owns the audio stream, so the pulse is time-driven:
	// slow when idle, deep while recording, a quick shimmer while
	// transcribing.
	t := float64(frame)
	var breathe float64
	switch {
	case recording:
		breathe = math.Sin(t*0.14)*0.06 - 0.02
	case transcribing:
		breathe = math.Sin(t*0.26)*0.04 - 0.04
	default:
		breathe = math.Sin(t*0.08)*0.02 - 0.05
	}

	styles := eyeStylesIdle
	if recording {
		styles = eyeStylesRec
	}

	// shade resolves one pixel to a palette index. Glints sit on top of
	// the iris, so they are tested first.
	shade := func(x, y int) int {
		dx := float64(x) - w/2
		dy := float64(y) - h/2

		for _, s := range eyeSpots {
			rlen := math.Hypot(s.ox, s.oy)
			if rlen < 0.001 {
				rlen = 1
			}
			tx, ty := -s.oy/rlen, s.ox/rlen
			along := (dx-s.ox)*tx + (dy-s.oy)*ty
			across := (dx-s.ox)*(-ty) + (dy-s.oy)*tx
			if along*along/9+across*across < s.radius*s.radius {
				return s.color
			}
		}

		dist := math.Hypot(dx, dy)
		for _, r := range eyeRings {
			radius := r.radius + breathe*r.sway*20
			if radius > 10 {
				radius = 10
			}
			if dist < radius {
				return r.color
			}
		}
		return 0
	}

	var b strings.Builder
	for cy := 0; cy < h; cy += 2 {
		for cx := 0; cx < w; cx++ {
			top := shade(cx, cy)
			bot := shade(cx, cy+1)
			switch {
			case top == 0 && bot == 0:
				b.WriteByte(' ')
			case top == bot:
				b.WriteString(styles.fg[top].Render("█"))
			case bot == 0:
				b.WriteString(styles.fg[top].Render("▀"))
			case top == 0:
				b.WriteString(styles.fg[bot].Render("▄"))
			default:
				b.WriteString(styles.split[top][bot].Render("▀"))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// wrapText greedily fills lines up to width, hard-splitting any word
// wider than the panel.
func wrapText(text string, width int) []string {
	if width <= 0 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	cur := ""
	flush := func() {
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
	}
	for _, w := range words {
		for len(w) > width {
			flush()
			lines = append(lines, w[:width])
			w = w[width:]
		}
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) <= width:
			cur += " " + w
		default:
			flush()
			cur = w
		}
	}
	flush()
	return lines
}
