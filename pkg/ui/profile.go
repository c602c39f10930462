package ui

import (
	"errors"
	"log"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ppimalaysia/regform/pkg/api"
	"github.com/ppimalaysia/regform/pkg/config"
	"github.com/ppimalaysia/regform/pkg/model"
	"github.com/ppimalaysia/regform/pkg/selection"
)

type profileMode int

const (
	profileView profileMode = iota
	profileEditUniversity
	profileEditPersonal
)

type slotKind int

const (
	slotText slotKind = iota
	slotUniversity
	slotPostcode
	slotLevel
)

// profileSlot is one focusable row of a profile editor
type profileSlot struct {
	kind  slotKind
	title string
	el    selection.Element
	input *textinput.Model
}

const elProfileLevel selection.Element = "profile-level"

type (
	profileLoadedMsg struct {
		resp *api.Response
		err  error
	}
	profileSavedMsg struct {
		section  string
		payload  map[string]any
		snapshot map[string]any
		resp     *api.Response
		err      error
	}
)

// profile is the signed-in view of an existing registration and its two
// editors. Its lookups share the wizard's sources.
type profile struct {
	student map[string]any
	mode    profileMode
	focus   int
	slots   []profileSlot

	university *Typeahead[model.University]
	postcode   *Typeahead[model.Postcode]
	uniDraft   selection.Committed
	pcDraft    string
	level      int

	programme  textinput.Model
	graduation textinput.Model
	fullname   textinput.Model
	dob        textinput.Model
	passport   textinput.Model
	email      textinput.Model
	phone      textinput.Model
	address    textinput.Model

	universitySlots []profileSlot
	personalSlots   []profileSlot
}

func newProfile(src Sources, lc config.UIConfig, q selection.Queue, theme Theme) *profile {
	p := &profile{focus: -1}
	other := model.OtherUniversity
	p.university = NewTypeahead[model.University]("profile-university", "University", DatasetUniversities, src.Universities,
		selection.Options[model.University]{
			MinChars: lc.University.MinChars,
			MaxItems: lc.University.MaxItems,
			Label:    model.UniversityLabel,
			Value:    model.UniversityValue,
			Fallback: &other,
			OnSelect: func(c selection.Committed) error {
				p.uniDraft = c
				return nil
			},
			OnClear: func() error {
				p.uniDraft = selection.Committed{}
				return nil
			},
			OptionIDPrefix: "profile-university-option",
			Placeholder:    "Start typing your university",
			BlurGrace:      lc.BlurGrace,
		}, q, theme)

	p.postcode = NewTypeahead[model.Postcode]("profile-postcode", "Postcode", DatasetPostcodes, src.Postcodes,
		selection.Options[model.Postcode]{
			MinChars: lc.Postcode.MinChars,
			MaxItems: lc.Postcode.MaxItems,
			Label:    model.PostcodeLabel,
			Value:    model.PostcodeValue,
			Filter:   model.FilterPostcodes,
			OnClear: func() error {
				p.pcDraft = ""
				return nil
			},
			OptionIDPrefix: "profile-postcode-option",
			Placeholder:    "Zip, city or state",
			BlurGrace:      lc.BlurGrace,
		}, q, theme)
	p.postcode.OnCommit(func(c selection.Committed) {
		p.pcDraft = c.Value
	})

	p.programme = newTextField("Bachelor of Computer Science", 120)
	p.graduation = newTextField("YYYY-MM-DD", 10)
	p.fullname = newTextField("Your full name as in passport", 100)
	p.dob = newTextField("YYYY-MM-DD", 10)
	p.passport = newTextField("A1234567", 20)
	p.email = newTextField("you@example.com", 100)
	p.phone = newTextField("+60123456789", 20)
	p.address = newTextField("Street, city", 200)

	p.universitySlots = []profileSlot{
		{kind: slotUniversity, el: p.university.Elements().Input},
		{kind: slotText, title: "Degree programme", el: "profile-programme-input", input: &p.programme},
		{kind: slotLevel, title: "Current education level", el: elProfileLevel},
		{kind: slotText, title: "Expected graduation", el: "profile-graduation-input", input: &p.graduation},
	}
	p.personalSlots = []profileSlot{
		{kind: slotText, title: "Full name", el: "profile-fullname-input", input: &p.fullname},
		{kind: slotText, title: "Date of birth", el: "profile-dob-input", input: &p.dob},
		{kind: slotText, title: "Passport number", el: "profile-passport-input", input: &p.passport},
		{kind: slotText, title: "Email", el: "profile-email-input", input: &p.email},
		{kind: slotText, title: "Phone number", el: "profile-phone-input", input: &p.phone},
		{kind: slotPostcode, el: p.postcode.Elements().Input},
		{kind: slotText, title: "Address", el: "profile-address-input", input: &p.address},
	}
	return p
}

func (p *profile) init(bus *selection.PointerBus) {
	p.university.Init(bus)
	p.postcode.Init(bus)
}

func (p *profile) dispose() {
	p.university.Dispose()
	p.postcode.Dispose()
}

func (p *profile) setTheme(t Theme) {
	p.university.SetTheme(t)
	p.postcode.SetTheme(t)
}

func (p *profile) setWidth(fieldW int) {
	p.university.SetWidth(fieldW)
	p.postcode.SetWidth(fieldW)
	for _, ti := range []*textinput.Model{&p.programme, &p.graduation, &p.fullname, &p.dob, &p.passport, &p.email, &p.phone, &p.address} {
		ti.Width = fieldW - 6
	}
}

func (p *profile) handleLoaded(m *FormModel, dataset string) {
	p.university.HandleLoaded(m.ctx, dataset)
	p.postcode.HandleLoaded(m.ctx, dataset)
}

// merge folds fields into the local record when the backend did not echo it
func (p *profile) merge(fields map[string]any) {
	next := make(map[string]any, len(p.student)+len(fields))
	for k, v := range p.student {
		next[k] = v
	}
	for k, v := range fields {
		next[k] = v
	}
	p.student = next
}

// nextLevel cycles through the education levels. An unset level starts at
// the first (forward) or last (backward) entry.
func nextLevel(cur, delta int) int {
	levels := model.EducationLevels
	n := len(levels)
	idx := -1
	for i, l := range levels {
		if l.ID == cur {
			idx = i
		}
	}
	if idx < 0 {
		if delta > 0 {
			return levels[0].ID
		}
		return levels[n-1].ID
	}
	return levels[((idx+delta)%n+n)%n].ID
}

// openProfile switches to the profile screen. student, if given, is shown
// while the fresh copy loads.
func (m *FormModel) openProfile(student map[string]any) tea.Cmd {
	m.setFocus(-1)
	m.step = stepProfile
	m.status, m.statusErr = "", false
	m.prof.mode = profileView
	if len(student) > 0 {
		m.prof.student = student
	}
	m.refreshSummary()
	return m.loadProfile()
}

func (m *FormModel) canOpenProfile() bool {
	return m.client != nil && m.client.Token() != ""
}

func (m *FormModel) loadProfile() tea.Cmd {
	if !m.canOpenProfile() {
		if m.prof.student == nil {
			m.setStatus("No registration is saved on this device", true)
		}
		return nil
	}
	m.busy = true
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		resp, err := client.Get(ctx)
		return profileLoadedMsg{resp: resp, err: err}
	}
}

func (m *FormModel) handleProfileLoaded(msg profileLoadedMsg) {
	m.busy = false
	if msg.err != nil {
		log.Printf("Warning: loading profile: %v", msg.err)
		m.setStatus("Could not load profile: "+msg.err.Error(), true)
		return
	}
	if msg.resp != nil {
		m.persistToken(msg.resp.Token)
		if len(msg.resp.Student) > 0 {
			m.prof.student = msg.resp.Student
		}
	}
	m.refreshSummary()
}

func (m *FormModel) editUniversity() tea.Cmd {
	p := m.prof
	d := model.UniversityDetailsFrom(p.student)
	p.university.Clear()
	if d.UniversityID != "" && d.University != "" {
		p.university.Select(d.UniversityID, d.University)
	}
	p.programme.SetValue(d.Programme)
	p.graduation.SetValue(d.Graduation)
	p.level = d.Level
	return m.startEdit(profileEditUniversity, p.universitySlots)
}

func (m *FormModel) editPersonal() tea.Cmd {
	p := m.prof
	d := model.PersonalDetailsFrom(p.student)
	p.fullname.SetValue(d.FullName)
	p.dob.SetValue(d.DOB)
	p.passport.SetValue(d.Passport)
	p.email.SetValue(d.Email)
	p.phone.SetValue(d.Phone)
	p.address.SetValue(d.Address)
	p.postcode.Clear()
	if d.Postcode != "" {
		p.postcode.Select(d.Postcode, d.Postcode)
	}
	return m.startEdit(profileEditPersonal, p.personalSlots)
}

func (m *FormModel) startEdit(mode profileMode, slots []profileSlot) tea.Cmd {
	p := m.prof
	p.mode = mode
	p.slots = slots
	p.focus = -1
	m.status, m.statusErr = "", false
	return m.profileFocus(0)
}

func (m *FormModel) leaveEdit() {
	m.profileFocus(-1)
	m.prof.mode = profileView
	m.prof.slots = nil
	m.refreshSummary()
}

// profileFocus moves focus between editor rows; -1 blurs every row
func (m *FormModel) profileFocus(i int) tea.Cmd {
	p := m.prof
	if p.focus >= 0 && p.focus < len(p.slots) {
		switch s := p.slots[p.focus]; s.kind {
		case slotUniversity:
			p.university.Blur()
		case slotPostcode:
			p.postcode.Blur()
		case slotText:
			s.input.Blur()
		}
	}
	p.focus = i
	if i < 0 || i >= len(p.slots) {
		return nil
	}
	switch s := p.slots[i]; s.kind {
	case slotUniversity:
		return p.university.Focus(m.ctx)
	case slotPostcode:
		return p.postcode.Focus(m.ctx)
	case slotText:
		return s.input.Focus()
	}
	return nil
}

func (m *FormModel) profileKey(msg tea.KeyMsg) tea.Cmd {
	p := m.prof
	if p.mode == profileView {
		switch {
		case key.Matches(msg, m.keys.EditUniversity):
			return m.editUniversity()
		case key.Matches(msg, m.keys.EditPersonal):
			return m.editPersonal()
		case key.Matches(msg, m.keys.Refresh):
			return m.loadProfile()
		case key.Matches(msg, m.keys.Copy):
			m.copy(m.summaryText)
			return nil
		}
		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)
		return cmd
	}

	slot := p.slots[p.focus]
	switch slot.kind {
	case slotUniversity:
		if ok, cmd := p.university.Update(m.ctx, msg, m.keys); ok {
			return cmd
		}
	case slotPostcode:
		if ok, cmd := p.postcode.Update(m.ctx, msg, m.keys); ok {
			return cmd
		}
	case slotLevel:
		switch {
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
			p.level = nextLevel(p.level, 1)
			return nil
		case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
			p.level = nextLevel(p.level, -1)
			return nil
		}
	}

	n := len(p.slots)
	switch {
	case key.Matches(msg, m.keys.Next):
		return m.profileFocus((p.focus + 1) % n)
	case key.Matches(msg, m.keys.Prev):
		return m.profileFocus((p.focus - 1 + n) % n)
	case key.Matches(msg, m.keys.Continue):
		return m.saveProfile()
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Back):
		m.leaveEdit()
		m.setStatus("Changes discarded", false)
		return nil
	case key.Matches(msg, m.keys.Choose):
		if p.focus == n-1 {
			return m.saveProfile()
		}
		return m.profileFocus(p.focus + 1)
	}

	if slot.kind == slotText {
		var cmd tea.Cmd
		*slot.input, cmd = slot.input.Update(msg)
		return cmd
	}
	return nil
}

// saveProfile validates the open editor and sends its section to the backend
func (m *FormModel) saveProfile() tea.Cmd {
	p := m.prof
	var (
		section  string
		payload  map[string]any
		snapshot map[string]any
		err      error
	)
	switch p.mode {
	case profileEditUniversity:
		d := model.UniversityDetails{
			UniversityID: p.uniDraft.Value,
			University:   p.uniDraft.Label,
			Programme:    strings.TrimSpace(p.programme.Value()),
			Level:        p.level,
			Graduation:   strings.TrimSpace(p.graduation.Value()),
		}
		section, err = "university", d.Validate()
		payload, snapshot = d.Payload(), d.Snapshot()
		p.university.SetMissing(d.UniversityID == "")
	case profileEditPersonal:
		d := model.PersonalDetails{
			FullName: p.fullname.Value(),
			DOB:      p.dob.Value(),
			Passport: p.passport.Value(),
			Email:    p.email.Value(),
			Phone:    p.phone.Value(),
			Postcode: p.pcDraft,
			Address:  p.address.Value(),
		}.Normalize()
		p.passport.SetValue(d.Passport)
		section, err = "personal", d.Validate()
		payload, snapshot = d.Payload(), d.Snapshot()
		p.postcode.SetMissing(d.Postcode == "")
	default:
		return nil
	}
	if err != nil {
		m.setStatus(detailsMessage(err), true)
		return nil
	}

	if m.client == nil {
		m.record("edit", payload, nil)
		m.prof.merge(snapshot)
		m.leaveEdit()
		m.setStatus("Changes saved locally", false)
		return nil
	}
	m.busy = true
	m.setStatus("Saving…", false)
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		resp, err := client.Edit(ctx, payload)
		return profileSavedMsg{section: section, payload: payload, snapshot: snapshot, resp: resp, err: err}
	}
}

func (m *FormModel) handleProfileSaved(msg profileSavedMsg) {
	m.busy = false
	m.record("edit", msg.payload, msg.err)
	if msg.err != nil {
		reason := msg.err.Error()
		var rejected *api.RejectedError
		if errors.As(msg.err, &rejected) {
			reason = rejected.Message
		}
		m.setStatus("Unable to update "+msg.section+" details: "+reason, true)
		return
	}
	if msg.resp != nil {
		m.persistToken(msg.resp.Token)
	}
	if msg.resp != nil && len(msg.resp.Student) > 0 {
		m.prof.student = msg.resp.Student
	} else {
		m.prof.merge(msg.snapshot)
	}
	m.leaveEdit()
	m.setStatus(capitalize(msg.section)+" details updated", false)
}

// detailsMessage strips the sentinel prefix from a validation error
func detailsMessage(err error) string {
	return capitalize(strings.TrimPrefix(err.Error(), model.ErrInvalidDetails.Error()+": "))
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func (m *FormModel) profileClick(h hit) tea.Cmd {
	p := m.prof
	if p.mode == profileView {
		return nil
	}
	uni, pc := p.university.Elements(), p.postcode.Elements()
	switch h.el {
	case "":
		return nil
	case uni.Menu:
		p.university.ClickOption(h.option)
		return nil
	case pc.Menu:
		p.postcode.ClickOption(h.option)
		return nil
	case uni.Clear:
		p.university.Clear()
		return m.profileFocusElement(uni.Input)
	case pc.Clear:
		p.postcode.Clear()
		return m.profileFocusElement(pc.Input)
	case elProfileLevel:
		cmd := m.profileFocusElement(elProfileLevel)
		p.level = nextLevel(p.level, 1)
		return cmd
	}
	return m.profileFocusElement(h.el)
}

func (m *FormModel) profileFocusElement(el selection.Element) tea.Cmd {
	for i, s := range m.prof.slots {
		if s.el == el {
			if i == m.prof.focus {
				return nil
			}
			return m.profileFocus(i)
		}
	}
	return nil
}

func (m *FormModel) profileLines() []line {
	p := m.prof
	if p.mode == profileView {
		var out []line
		for _, r := range strings.Split(m.summary.View(), "\n") {
			out = append(out, plain(r))
		}
		return out
	}

	t := m.theme
	title := "Edit university details"
	if p.mode == profileEditPersonal {
		title = "Edit personal details"
	}
	out := []line{plain(t.Renderer.NewStyle().Foreground(t.Secondary).Bold(true).Render(title))}
	for i, s := range p.slots {
		focused := i == p.focus
		switch s.kind {
		case slotUniversity:
			out = append(out, p.university.lines()...)
		case slotPostcode:
			out = append(out, p.postcode.lines()...)
		case slotLevel:
			name := model.EducationLevelName(p.level)
			if name == "" {
				name = "--"
			}
			out = append(out, m.boxLines(s.title, focused, false, "◂ "+name+" ▸", s.el)...)
		case slotText:
			out = append(out, m.boxLines(s.title, focused, false, s.input.View(), s.el)...)
		}
	}
	return out
}
