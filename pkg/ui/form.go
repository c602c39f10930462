package ui

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppimalaysia/regform/pkg/api"
	"github.com/ppimalaysia/regform/pkg/config"
	"github.com/ppimalaysia/regform/pkg/model"
	"github.com/ppimalaysia/regform/pkg/selection"
	"github.com/ppimalaysia/regform/pkg/store"
	"github.com/ppimalaysia/regform/pkg/watcher"
)

// configReloadDebounce coalesces editor save bursts
const configReloadDebounce = 200 * time.Millisecond

type step int

const (
	stepIdentity step = iota
	stepConfirm
	stepContact
	stepSummary
	stepDone
	stepProfile
)

func (s step) String() string {
	switch s {
	case stepIdentity:
		return "Identity"
	case stepConfirm:
		return "Existing record"
	case stepContact:
		return "Contact"
	case stepSummary:
		return "Review"
	case stepDone:
		return "Done"
	case stepProfile:
		return "Profile"
	}
	return "Unknown"
}

type field int

const (
	fieldName field = iota
	fieldDOB
	fieldPassport
	fieldPrefix
	fieldPhone
	fieldUniversity
	fieldEmail
	fieldPostcode
)

var (
	identityFields = []field{fieldName, fieldDOB, fieldPassport, fieldPrefix, fieldPhone, fieldUniversity}
	contactFields  = []field{fieldEmail, fieldPostcode}
)

// Display names for the required fields reported by MissingStepOne
var fieldLabels = map[string]string{
	"fullname":      "Full Name",
	"dob":           "Date of Birth",
	"passport":      "Passport Number",
	"phone_number":  "Phone Number",
	"university_id": "University",
}

// Element ids of the plain text inputs
const (
	elName     selection.Element = "fullname-input"
	elDOB      selection.Element = "dob-input"
	elPassport selection.Element = "passport-input"
	elPhone    selection.Element = "phone-input"
	elEmail    selection.Element = "email-input"
)

// Messages
type (
	checkResultMsg struct {
		resp *api.Response
		err  error
	}
	submitResultMsg struct {
		resp *api.Response
		err  error
	}
	configChangedMsg struct{}
)

// FormOptions configures a FormModel
type FormOptions struct {
	Config     config.Config
	ConfigPath string // watched for live presentation changes when set
	Sources    Sources
	Client     *api.Client // nil skips backend calls
	Store      *store.DB   // nil disables the submission log
	Renderer   *lipgloss.Renderer

	// StartProfile opens the saved registration instead of a blank form
	StartProfile bool
}

// FormModel is the registration wizard. It is a pointer model: lookup
// callbacks write straight into reg.
type FormModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg        config.Config
	configPath string
	keys       KeyMap
	renderer   *lipgloss.Renderer
	theme      Theme

	client *api.Client
	store  *store.DB

	bus   *selection.PointerBus
	queue *loopQueue
	scr   *screen

	step  step
	focus field
	reg   model.Registration

	name     textinput.Model
	dob      textinput.Model
	passport textinput.Model
	phone    textinput.Model
	email    textinput.Model

	university *Typeahead[model.University]
	postcode   *Typeahead[model.Postcode]
	prefix     *PrefixPicker
	prof       *profile

	confirm    *huh.Form
	confirmYes bool
	existing   *api.Response

	summary     viewport.Model
	md          *glamour.TermRenderer
	summaryText string

	help     HelpOverlayModel
	watcher  *watcher.ConfigWatcher
	configCh chan struct{}

	busy      bool
	status    string
	statusErr bool
	missing   map[string]bool
	width     int
	height    int
}

// NewFormModel builds the wizard and its lookups. Datasets are not fetched
// until a lookup needs them.
func NewFormModel(opts FormOptions) *FormModel {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &FormModel{
		ctx:        ctx,
		cancel:     cancel,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		keys:       DefaultKeyMap(),
		renderer:   r,
		theme:      ThemeFor(opts.Config.UI.Theme, r),
		client:     opts.Client,
		store:      opts.Store,
		bus:        selection.NewPointerBus(),
		queue:      newLoopQueue(),
		scr:        &screen{},
		missing:    make(map[string]bool),
		width:      80,
		height:     24,
	}
	m.reg.PhonePrefix = model.DefaultPhonePrefix

	m.name = newTextField("Your full name as in passport", 100)
	m.dob = newTextField("YYYY-MM-DD", 10)
	m.passport = newTextField("Passport number", 20)
	m.phone = newTextField(model.PhonePlaceholder(model.DefaultPhonePrefix), 15)
	m.email = newTextField("you@example.com", 100)

	src := opts.Sources.withFallbacks()
	lc := opts.Config.UI
	other := model.OtherUniversity
	m.university = NewTypeahead[model.University]("university", "University", DatasetUniversities, src.Universities,
		selection.Options[model.University]{
			MinChars:       lc.University.MinChars,
			MaxItems:       lc.University.MaxItems,
			Label:          model.UniversityLabel,
			Value:          model.UniversityValue,
			Fallback:       &other,
			OnSelect:       m.universitySelected,
			OnClear:        m.universityCleared,
			OptionIDPrefix: "university-option",
			Placeholder:    "Start typing your university",
			BlurGrace:      lc.BlurGrace,
		}, m.queue, m.theme)

	m.postcode = NewTypeahead[model.Postcode]("postcode", "Postcode", DatasetPostcodes, src.Postcodes,
		selection.Options[model.Postcode]{
			MinChars: lc.Postcode.MinChars,
			MaxItems: lc.Postcode.MaxItems,
			Label:    model.PostcodeLabel,
			Value:    model.PostcodeValue,
			Filter:   model.FilterPostcodes,
			Mirrors: []selection.Mirror{selection.MirrorFunc(func(text string) {
				m.reg.PostcodeText = text
			})},
			OnClear: func() error {
				m.reg.Postcode = ""
				m.reg.PostcodeText = ""
				return nil
			},
			OptionIDPrefix: "postcode-option",
			Placeholder:    "Zip, city or state",
			BlurGrace:      lc.BlurGrace,
		}, m.queue, m.theme)

	// The Mirror carries the label; the value is kept separately
	m.postcode.OnCommit(func(c selection.Committed) {
		m.reg.Postcode = c.Value
	})

	m.prefix = NewPrefixPicker("phone-prefix", src.RegionCodes, m.prefixSelected, m.theme)
	m.prof = newProfile(src, lc, m.queue, m.theme)

	m.university.Init(m.bus)
	m.postcode.Init(m.bus)
	m.prof.init(m.bus)

	m.help = NewHelpOverlayModel(m.theme, m.keys.HelpSections())
	m.summary = viewport.New(m.width-4, m.height-8)
	m.md = m.markdownRenderer()

	if m.configPath != "" {
		m.configCh = make(chan struct{}, 1)
		cw, err := watcher.NewConfigWatcher(m.configPath, configReloadDebounce, m.notifyConfigChanged)
		if err != nil {
			log.Printf("Warning: config changes will not be picked up: %v", err)
		} else {
			m.watcher = cw
		}
	}

	if opts.StartProfile {
		m.step = stepProfile
		m.focus = -1
		return m
	}
	m.name.Focus()
	return m
}

func newTextField(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	return ti
}

func (m *FormModel) universitySelected(c selection.Committed) error {
	m.reg.UniversityID = c.Value
	m.reg.University = c.Label
	delete(m.missing, "university_id")
	return nil
}

func (m *FormModel) universityCleared() error {
	m.reg.UniversityID = ""
	m.reg.University = ""
	return nil
}

func (m *FormModel) prefixSelected(c selection.Committed) error {
	m.reg.PhonePrefix = c.Value
	m.phone.Placeholder = model.PhonePlaceholder(c.Value)
	return nil
}

func (m *FormModel) notifyConfigChanged() {
	select {
	case m.configCh <- struct{}{}:
	default:
	}
}

func (m *FormModel) waitConfig() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.configCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// Init starts the loop queue, the prefix picker load and the config watch.
// A model opened on the profile also fetches the saved record.
func (m *FormModel) Init() tea.Cmd {
	var load tea.Cmd
	if m.step == stepProfile {
		load = m.openProfile(nil)
	}
	return tea.Batch(
		textinput.Blink,
		m.queue.wait(),
		m.prefix.Init(m.ctx, m.bus),
		m.waitConfig(),
		load,
	)
}

// Registration returns the data collected so far
func (m *FormModel) Registration() model.Registration {
	return m.reg
}

// Close disposes every lookup and stops the config watcher
func (m *FormModel) Close() {
	m.university.Dispose()
	m.postcode.Dispose()
	m.prefix.Dispose()
	m.prof.dispose()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			log.Printf("Warning: closing config watcher: %v", err)
		}
		m.watcher = nil
	}
	m.cancel()
}

// Update handles every message on the loop goroutine
func (m *FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.confirm != nil {
			f, cmd := m.confirm.Update(msg)
			m.setConfirm(f)
			return m, cmd
		}
		return m, nil

	case queuedMsg:
		if msg.fn != nil {
			msg.fn()
		}
		return m, m.queue.wait()

	case datasetLoadedMsg:
		m.university.HandleLoaded(m.ctx, msg.name)
		m.postcode.HandleLoaded(m.ctx, msg.name)
		m.prefix.HandleLoaded(m.ctx, msg.name)
		m.prof.handleLoaded(m, msg.name)
		return m, nil

	case configChangedMsg:
		m.reloadConfig()
		return m, m.waitConfig()

	case checkResultMsg:
		return m, m.handleCheck(msg)

	case submitResultMsg:
		m.handleSubmit(msg)
		return m, nil

	case profileLoadedMsg:
		m.handleProfileLoaded(msg)
		return m, nil

	case profileSavedMsg:
		m.handleProfileSaved(msg)
		return m, nil

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.step == stepConfirm && m.confirm != nil {
		f, cmd := m.confirm.Update(msg)
		m.setConfirm(f)
		return m, tea.Batch(cmd, m.afterConfirm())
	}
	return m, m.updateFocusedInput(msg)
}

func (m *FormModel) resize(w, h int) {
	m.width, m.height = w, h
	m.help.SetSize(w, h)

	fieldW := m.fieldWidth()
	for _, ti := range []*textinput.Model{&m.name, &m.dob, &m.passport, &m.phone, &m.email} {
		ti.Width = fieldW - 6
	}
	m.university.SetWidth(fieldW)
	m.postcode.SetWidth(fieldW)
	m.prefix.SetWidth(fieldW)
	m.prof.setWidth(fieldW)

	m.summary.Width = w - 4
	m.summary.Height = h - 8
	if m.summary.Height < 3 {
		m.summary.Height = 3
	}
	m.md = m.markdownRenderer()
	m.refreshSummary()
}

func (m *FormModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.help.IsVisible() {
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}
	if key.Matches(msg, m.keys.Help) {
		m.help.Toggle()
		return m, nil
	}
	if m.busy {
		return m, nil
	}

	switch m.step {
	case stepConfirm:
		if m.confirm == nil {
			return m, nil
		}
		f, cmd := m.confirm.Update(msg)
		m.setConfirm(f)
		return m, tea.Batch(cmd, m.afterConfirm())

	case stepSummary:
		return m, m.summaryKey(msg)

	case stepDone:
		switch {
		case key.Matches(msg, m.keys.Copy):
			m.copy(m.summaryText)
		case key.Matches(msg, m.keys.Profile):
			if m.canOpenProfile() {
				return m, m.openProfile(nil)
			}
		case key.Matches(msg, m.keys.Choose):
			return m, tea.Quit
		}
		return m, nil

	case stepProfile:
		return m, m.profileKey(msg)
	}

	return m, m.fieldKey(msg)
}

// fieldKey handles keys on the identity and contact steps
func (m *FormModel) fieldKey(msg tea.KeyMsg) tea.Cmd {
	switch m.focus {
	case fieldUniversity:
		if ok, cmd := m.university.Update(m.ctx, msg, m.keys); ok {
			return cmd
		}
	case fieldPostcode:
		if ok, cmd := m.postcode.Update(m.ctx, msg, m.keys); ok {
			return cmd
		}
	case fieldPrefix:
		if m.prefix.Update(msg, m.keys) {
			return nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1)
	case key.Matches(msg, m.keys.Continue):
		return m.advance()
	case key.Matches(msg, m.keys.Back):
		if m.step == stepContact {
			return m.goTo(stepIdentity)
		}
		return nil
	case key.Matches(msg, m.keys.Copy):
		if c, ok := m.focusedCommitted(); ok {
			m.copy(c.Label)
		}
		return nil
	case key.Matches(msg, m.keys.Choose):
		fields := m.stepFields()
		if m.focus == fields[len(fields)-1] {
			return m.advance()
		}
		return m.moveFocus(1)
	}
	return m.updateFocusedInput(msg)
}

func (m *FormModel) focusedCommitted() (selection.Committed, bool) {
	switch m.focus {
	case fieldUniversity:
		return m.university.Committed()
	case fieldPostcode:
		return m.postcode.Committed()
	case fieldPrefix:
		return m.prefix.Current(), true
	}
	return selection.Committed{}, false
}

// updateFocusedInput forwards msg to the focused plain text input
func (m *FormModel) updateFocusedInput(msg tea.Msg) tea.Cmd {
	ti := m.textInput(m.focus)
	if ti == nil {
		return nil
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	m.syncTextFields()
	return cmd
}

func (m *FormModel) textInput(f field) *textinput.Model {
	switch f {
	case fieldName:
		return &m.name
	case fieldDOB:
		return &m.dob
	case fieldPassport:
		return &m.passport
	case fieldPhone:
		return &m.phone
	case fieldEmail:
		return &m.email
	}
	return nil
}

func (m *FormModel) syncTextFields() {
	m.reg.FullName = strings.TrimSpace(m.name.Value())
	m.reg.DOB = strings.TrimSpace(m.dob.Value())
	m.reg.Passport = strings.TrimSpace(m.passport.Value())
	m.reg.PhoneNumber = strings.Join(strings.Fields(m.phone.Value()), "")
	m.reg.Email = strings.TrimSpace(m.email.Value())
	for name, v := range map[string]string{
		"fullname":     m.reg.FullName,
		"dob":          m.reg.DOB,
		"passport":     m.reg.Passport,
		"phone_number": m.reg.PhoneNumber,
	} {
		if v != "" {
			delete(m.missing, name)
		}
	}
}

func (m *FormModel) stepFields() []field {
	if m.step == stepContact {
		return contactFields
	}
	return identityFields
}

func (m *FormModel) moveFocus(delta int) tea.Cmd {
	fields := m.stepFields()
	idx := 0
	for i, f := range fields {
		if f == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)
	return m.setFocus(fields[idx])
}

// setFocus moves keyboard focus. The lookup losing focus closes its menu
// after its blur grace.
func (m *FormModel) setFocus(f field) tea.Cmd {
	if f == m.focus {
		return m.focusCurrent()
	}
	switch m.focus {
	case fieldUniversity:
		m.university.Blur()
	case fieldPostcode:
		m.postcode.Blur()
	case fieldPrefix:
		m.prefix.Blur()
	default:
		if ti := m.textInput(m.focus); ti != nil {
			ti.Blur()
		}
	}
	m.focus = f
	return m.focusCurrent()
}

func (m *FormModel) focusCurrent() tea.Cmd {
	switch m.focus {
	case fieldUniversity:
		return m.university.Focus(m.ctx)
	case fieldPostcode:
		return m.postcode.Focus(m.ctx)
	case fieldPrefix:
		m.prefix.Focus()
		return nil
	}
	if ti := m.textInput(m.focus); ti != nil {
		return ti.Focus()
	}
	return nil
}

func (m *FormModel) goTo(s step) tea.Cmd {
	m.step = s
	m.status, m.statusErr = "", false
	switch s {
	case stepIdentity:
		return m.setFocus(fieldName)
	case stepContact:
		return m.setFocus(fieldEmail)
	case stepSummary, stepDone:
		m.setFocus(-1)
		m.refreshSummary()
	}
	return nil
}

// advance handles "continue" on the current step
func (m *FormModel) advance() tea.Cmd {
	m.syncTextFields()
	switch m.step {
	case stepIdentity:
		return m.submitIdentity()
	case stepContact:
		if m.reg.Email == "" {
			m.missing["email"] = true
			m.setStatus("Please complete: Email", true)
			return nil
		}
		if !strings.Contains(m.reg.Email, "@") {
			m.missing["email"] = true
			m.setStatus("Email address looks invalid", true)
			return nil
		}
		delete(m.missing, "email")
		return m.goTo(stepSummary)
	}
	return nil
}

func (m *FormModel) submitIdentity() tea.Cmd {
	missing := m.reg.MissingStepOne()
	if len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, name := range missing {
			m.missing[name] = true
			labels[i] = fieldLabels[name]
		}
		m.university.SetMissing(m.missing["university_id"])
		m.setStatus("Please complete: "+strings.Join(labels, ", "), true)
		return nil
	}
	if _, err := time.Parse("2006-01-02", m.reg.DOB); err != nil {
		m.missing["dob"] = true
		m.setStatus("Date of birth must look like 2001-09-30", true)
		return nil
	}
	m.university.SetMissing(false)

	if m.client == nil {
		return m.goTo(stepContact)
	}
	m.busy = true
	m.setStatus("Checking existing registrations…", false)
	ctx, client, reg := m.ctx, m.client, m.reg
	return func() tea.Msg {
		resp, err := client.Check(ctx, reg)
		return checkResultMsg{resp: resp, err: err}
	}
}

func (m *FormModel) handleCheck(msg checkResultMsg) tea.Cmd {
	m.busy = false
	m.record("check", m.reg, msg.err)

	if msg.err != nil {
		if errors.Is(msg.err, api.ErrMissingField) {
			m.setStatus(msg.err.Error(), true)
			return nil
		}
		// A failed check never blocks registration
		log.Printf("Warning: registration check failed: %v", msg.err)
		return m.goTo(stepContact)
	}
	if msg.resp.HasStudent() {
		return m.showConfirm(msg.resp)
	}
	return m.goTo(stepContact)
}

func (m *FormModel) showConfirm(resp *api.Response) tea.Cmd {
	m.existing = resp
	m.confirmYes = false
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Is this you?").
				Description("A registration with these details already exists.").
				Affirmative("Yes, that's me").
				Negative("No").
				Value(&m.confirmYes),
		),
	).WithShowHelp(false).WithWidth(m.width - 4)
	m.step = stepConfirm
	m.status = ""
	m.summaryText = StudentMarkdown(resp.Student)
	m.refreshSummary()
	return m.confirm.Init()
}

func (m *FormModel) setConfirm(f tea.Model) {
	if form, ok := f.(*huh.Form); ok {
		m.confirm = form
	}
}

// afterConfirm moves on once the confirmation form finishes
func (m *FormModel) afterConfirm() tea.Cmd {
	if m.confirm == nil {
		return nil
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		yes := m.confirmYes
		resp := m.existing
		m.confirm, m.existing = nil, nil
		if yes && resp != nil {
			m.persistToken(resp.Token)
			cmd := m.openProfile(resp.Student)
			greeting := "Welcome back"
			if name := resp.StudentName(); name != "" {
				greeting += ", " + name
			}
			m.setStatus(greeting, false)
			return cmd
		}
		return m.goTo(stepContact)
	case huh.StateAborted:
		m.confirm, m.existing = nil, nil
		return m.goTo(stepContact)
	}
	return nil
}

func (m *FormModel) summaryKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.goTo(stepContact)
	case key.Matches(msg, m.keys.Copy):
		m.copy(m.summaryText)
		return nil
	case key.Matches(msg, m.keys.Choose), key.Matches(msg, m.keys.Continue):
		return m.submit()
	}
	var cmd tea.Cmd
	m.summary, cmd = m.summary.Update(msg)
	return cmd
}

// Payload is the body sent with the "add student" call
func (m *FormModel) payload() map[string]any {
	reg := m.reg
	return map[string]any{
		"fullname":      reg.FullName,
		"dob":           reg.DOB,
		"passport":      reg.Passport,
		"phone_number":  reg.FullPhone(),
		"university_id": reg.UniversityID,
		"university":    reg.University,
		"email":         reg.Email,
		"postcode":      reg.Postcode,
	}
}

func (m *FormModel) submit() tea.Cmd {
	if m.client == nil {
		m.record("add", m.payload(), nil)
		cmd := m.goTo(stepDone)
		m.setStatus("Registration saved locally", false)
		return cmd
	}
	m.busy = true
	m.setStatus("Submitting…", false)
	ctx, client, payload := m.ctx, m.client, m.payload()
	return func() tea.Msg {
		resp, err := client.Add(ctx, "student", payload)
		return submitResultMsg{resp: resp, err: err}
	}
}

func (m *FormModel) handleSubmit(msg submitResultMsg) {
	m.busy = false
	m.record("add", m.payload(), msg.err)
	if msg.err != nil {
		var rejected *api.RejectedError
		if errors.As(msg.err, &rejected) {
			m.setStatus("Registration rejected: "+rejected.Message, true)
		} else {
			m.setStatus("Submit failed: "+msg.err.Error(), true)
		}
		return
	}
	if msg.resp != nil {
		m.persistToken(msg.resp.Token)
	}
	m.goTo(stepDone)
	m.setStatus("Registration submitted", false)
}

func (m *FormModel) persistToken(token string) {
	if token == "" {
		return
	}
	if m.client != nil {
		m.client.SetToken(token)
	}
	if m.store == nil {
		return
	}
	if err := m.store.SetToken(token); err != nil {
		log.Printf("Warning: saving token: %v", err)
	}
}

// record appends a backend call to the local submission log
func (m *FormModel) record(action string, payload any, callErr error) {
	if m.store == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Warning: encoding %s payload: %v", action, err)
		return
	}

	s := &model.Submission{Action: action, Payload: string(data), Outcome: model.OutcomeOK}
	if callErr != nil {
		s.Error = callErr.Error()
		s.Outcome = model.OutcomeFailed
		var rejected *api.RejectedError
		if errors.As(callErr, &rejected) {
			s.Outcome = model.OutcomeRejected
		}
	}
	if err := m.store.RecordSubmission(s); err != nil {
		log.Printf("Warning: recording %s: %v", action, err)
	}
}

func (m *FormModel) copy(text string) {
	if text == "" {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus("Copied to clipboard", false)
}

func (m *FormModel) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

// handleMouse hit-tests a left press against the last frame. Every press is
// published on the pointer bus first so open menus elsewhere close, then the
// press is dispatched to the element under it.
func (m *FormModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.step == stepSummary || m.step == stepDone || (m.step == stepProfile && m.prof.mode == profileView) {
		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)
		return cmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if m.help.IsVisible() || m.busy {
		return nil
	}

	h := m.scr.hitTest(msg.X, msg.Y)
	m.bus.Publish(h.el)
	if m.step == stepProfile {
		return m.profileClick(h)
	}
	return m.click(h)
}

func (m *FormModel) click(h hit) tea.Cmd {
	uni, pc, pfx := m.university.Elements(), m.postcode.Elements(), m.prefix.Elements()

	switch h.el {
	case "":
		return nil
	case uni.Input:
		return m.setFocus(fieldUniversity)
	case uni.Menu:
		m.university.ClickOption(h.option)
		return nil
	case uni.Clear:
		m.university.Clear()
		return m.setFocus(fieldUniversity)
	case pc.Input:
		return m.setFocus(fieldPostcode)
	case pc.Menu:
		m.postcode.ClickOption(h.option)
		return nil
	case pc.Clear:
		m.postcode.Clear()
		return m.setFocus(fieldPostcode)
	case pfx.Input:
		cmd := m.setFocus(fieldPrefix)
		m.prefix.Toggle()
		return cmd
	case pfx.Menu:
		m.prefix.Pick(h.option)
		return nil
	case elName:
		return m.setFocus(fieldName)
	case elDOB:
		return m.setFocus(fieldDOB)
	case elPassport:
		return m.setFocus(fieldPassport)
	case elPhone:
		return m.setFocus(fieldPhone)
	case elEmail:
		return m.setFocus(fieldEmail)
	}
	return nil
}

func (m *FormModel) markdownRenderer() *glamour.TermRenderer {
	r, err := newMarkdownRenderer(m.cfg.UI.Markdown, m.summary.Width-2)
	if err != nil {
		log.Printf("Warning: %v", err)
		return nil
	}
	return r
}

func (m *FormModel) refreshSummary() {
	switch m.step {
	case stepSummary:
		m.summaryText = SummaryMarkdown(m.reg)
	case stepProfile:
		if m.prof.mode != profileView {
			return
		}
		m.summaryText = ProfileMarkdown(m.prof.student)
	case stepConfirm, stepDone:
	default:
		return
	}
	m.summary.SetContent(renderMarkdown(m.md, m.summaryText))
	m.summary.GotoTop()
}

// reloadConfig re-reads the config file and applies presentation settings.
// Dataset and API settings need a restart.
func (m *FormModel) reloadConfig() {
	cfg, err := config.Load(m.configPath)
	if err != nil {
		log.Printf("Warning: ignoring config change: %v", err)
		m.setStatus("Config not reloaded: "+err.Error(), true)
		return
	}
	m.cfg.UI.Theme = cfg.UI.Theme
	m.cfg.UI.Markdown = cfg.UI.Markdown
	m.applyTheme()
	m.md = m.markdownRenderer()
	m.refreshSummary()
	m.setStatus("Config reloaded", false)
}

func (m *FormModel) applyTheme() {
	m.theme = ThemeFor(m.cfg.UI.Theme, m.renderer)
	m.university.SetTheme(m.theme)
	m.postcode.SetTheme(m.theme)
	m.prefix.SetTheme(m.theme)
	m.prof.setTheme(m.theme)
	m.help.SetTheme(m.theme)
}
