package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppimalaysia/regform/pkg/api"
	"github.com/ppimalaysia/regform/pkg/config"
	"github.com/ppimalaysia/regform/pkg/devserver"
	"github.com/ppimalaysia/regform/pkg/model"
	"github.com/ppimalaysia/regform/pkg/store"
)

type formHarness struct {
	m       *FormModel
	dev     *devserver.Server
	db      *store.DB
	sources Sources
}

// newTestForm wires a form against a devserver with every dataset warmed
func newTestForm(t *testing.T, opts devserver.Options) *formHarness {
	t.Helper()
	dev := devserver.New(opts)
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Datasets.Universities = srv.URL + "/data/universities.json"
	cfg.Datasets.Postcodes = srv.URL + "/data/postcode.json"
	cfg.Datasets.RegionCodes = srv.URL + "/data/regioncode.json"
	cfg.UI.Markdown = "notty"
	cfg.UI.BlurGrace = 10 * time.Millisecond

	db, err := store.OpenDB(filepath.Join(t.TempDir(), "regform.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sources := NewSources(cfg.Datasets)
	if _, err := WarmAll(context.Background(), sources); err != nil {
		t.Fatalf("WarmAll: %v", err)
	}

	m := NewFormModel(FormOptions{
		Config:   cfg,
		Sources:  sources,
		Client:   api.New(srv.URL+"/api", "device-test", 5*time.Second),
		Store:    db,
		Renderer: lipgloss.NewRenderer(io.Discard),
	})
	t.Cleanup(m.Close)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &formHarness{m: m, dev: dev, db: db, sources: sources}
}

func (h *formHarness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.m.Update(msg)
	return cmd
}

func (h *formHarness) typeText(text string) {
	for _, r := range text {
		h.send(keyMsg(string(r)))
	}
}

func (h *formHarness) press(k tea.KeyType, times int) {
	for i := 0; i < times; i++ {
		h.send(keyType(k))
	}
}

// fillIdentity completes step one: name, dob, passport, (prefix), phone,
// university picked from the menu.
func (h *formHarness) fillIdentity(t *testing.T) {
	t.Helper()
	h.typeText("Siti")
	h.press(tea.KeyTab, 1)
	h.typeText("2001-09-30")
	h.press(tea.KeyTab, 1)
	h.typeText("A1234567")
	h.press(tea.KeyTab, 2)
	h.typeText("0123456789")
	h.press(tea.KeyTab, 1)

	if h.m.focus != fieldUniversity {
		t.Fatalf("focus = %v, want university", h.m.focus)
	}
	h.typeText("malaya")
	if !h.m.university.Control().MenuOpen() {
		t.Fatal("university menu should be open")
	}
	h.press(tea.KeyDown, 1)
	h.press(tea.KeyEnter, 1)
	if h.m.reg.UniversityID != "1" {
		t.Fatalf("university id = %q, want 1", h.m.reg.UniversityID)
	}
}

func TestForm_RegistrationFlow(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	h.fillIdentity(t)

	if got := m.reg.FullPhone(); got != "+60123456789" {
		t.Errorf("phone = %q, want +60123456789", got)
	}

	cmd := h.send(keyType(tea.KeyCtrlS))
	if cmd == nil || !m.busy {
		t.Fatal("continue should start the registration check")
	}
	h.send(cmd())
	if m.step != stepContact {
		t.Fatalf("step = %v, want contact", m.step)
	}
	if m.focus != fieldEmail {
		t.Errorf("focus = %v, want email", m.focus)
	}

	h.typeText("siti@example.com")
	h.press(tea.KeyTab, 1)
	h.typeText("319")
	h.press(tea.KeyDown, 1)
	h.press(tea.KeyEnter, 1)
	if m.reg.Postcode != "31900" {
		t.Errorf("postcode = %q, want 31900", m.reg.Postcode)
	}
	if !strings.Contains(m.reg.PostcodeText, "31900") {
		t.Errorf("postcode label mirror = %q", m.reg.PostcodeText)
	}

	h.send(keyType(tea.KeyCtrlS))
	if m.step != stepSummary {
		t.Fatalf("step = %v, want summary", m.step)
	}
	if !strings.Contains(m.View(), "Siti") {
		t.Error("summary should show the entered name")
	}

	cmd = h.send(keyType(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("enter on the summary should submit")
	}
	h.send(cmd())
	if m.step != stepDone {
		t.Fatalf("step = %v (status %q), want done", m.step, m.status)
	}

	token, err := h.db.Token()
	if err != nil || token == "" {
		t.Errorf("token = %q, %v; want a persisted token", token, err)
	}
	subs, err := h.db.RecentSubmissions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0].Action != "add" || subs[1].Action != "check" {
		t.Fatalf("submissions = %+v, want add then check", subs)
	}
	for _, s := range subs {
		if s.Outcome != model.OutcomeOK {
			t.Errorf("%s outcome = %s, want ok", s.Action, s.Outcome)
		}
	}
}

func TestForm_MissingFieldsBlockContinue(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	h.typeText("Siti")

	if cmd := h.send(keyType(tea.KeyCtrlS)); cmd != nil {
		t.Error("incomplete step one must not reach the backend")
	}
	m := h.m
	if m.step != stepIdentity {
		t.Errorf("step = %v, want identity", m.step)
	}
	for _, name := range []string{"dob", "passport", "phone_number", "university_id"} {
		if !m.missing[name] {
			t.Errorf("%s should be flagged missing", name)
		}
	}
	if m.missing["fullname"] {
		t.Error("fullname was filled")
	}
	if !strings.Contains(m.status, "Date of Birth") {
		t.Errorf("status = %q", m.status)
	}
}

func TestForm_CheckFailureStillAdvances(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	h := newTestForm(t, devserver.Options{})
	h.m.client = api.New(broken.URL, "device-test", time.Second)
	h.fillIdentity(t)

	cmd := h.send(keyType(tea.KeyCtrlS))
	h.send(cmd())
	if h.m.step != stepContact {
		t.Errorf("step = %v, want contact after a failed check", h.m.step)
	}
	subs, _ := h.db.RecentSubmissions(1)
	if len(subs) != 1 || subs[0].Outcome != model.OutcomeFailed {
		t.Errorf("submissions = %+v, want one failed check", subs)
	}
}

func TestForm_ExistingStudentConfirm(t *testing.T) {
	tests := []struct {
		name     string
		yes      bool
		wantStep step
	}{
		{"that's me", true, stepProfile},
		{"not me", false, stepContact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestForm(t, devserver.Options{})
			h.dev.Seed(map[string]any{
				"fullname": "Siti Aminah",
				"dob":      "2001-09-30",
				"passport": "A1234567",
			})
			h.fillIdentity(t)
			h.send(h.send(keyType(tea.KeyCtrlS))())

			m := h.m
			if m.step != stepConfirm || m.confirm == nil {
				t.Fatalf("step = %v, want confirm", m.step)
			}
			if !strings.Contains(m.View(), "Siti Aminah") {
				t.Error("confirm step should show the existing record")
			}

			m.confirmYes = tt.yes
			m.confirm.State = huh.StateCompleted
			m.afterConfirm()

			if m.step != tt.wantStep {
				t.Errorf("step = %v, want %v", m.step, tt.wantStep)
			}
			token, _ := h.db.Token()
			if tt.yes && token == "" {
				t.Error("confirming should persist the token")
			}
			if !tt.yes && token != "" {
				t.Error("declining must not persist the token")
			}
		})
	}
}

func TestForm_ProfileEditsUniversityOnSharedSource(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	seeded := map[string]any{
		"fullname":      "Siti Aminah",
		"dob":           "2001-09-30",
		"passport":      "A1234567",
		"university_id": "1",
		"university":    "Universiti Malaya",
	}
	h.dev.Seed(seeded)
	h.fillIdentity(t)
	h.send(h.send(keyType(tea.KeyCtrlS))())

	m := h.m
	m.confirmYes = true
	m.confirm.State = huh.StateCompleted
	cmd := m.afterConfirm()
	if m.step != stepProfile {
		t.Fatalf("step = %v, want profile", m.step)
	}
	if cmd == nil {
		t.Fatal("opening the profile should fetch the record")
	}
	h.send(cmd())
	if m.busy {
		t.Fatal("profile load should finish")
	}
	if !strings.Contains(m.summaryText, "| University | Universiti Malaya |") {
		t.Errorf("profile should show the current university:\n%s", m.summaryText)
	}
	m.View()

	h.send(keyMsg("u"))
	if m.prof.mode != profileEditUniversity {
		t.Fatalf("mode = %v, want university editor", m.prof.mode)
	}
	uni := m.prof.university
	if c, ok := uni.Committed(); !ok || c.Value != "1" {
		t.Fatalf("editor should start on the saved university, got %+v", c)
	}

	h.send(keyType(tea.KeyCtrlX))
	h.typeText("putra")
	if !uni.Control().MenuOpen() {
		t.Fatal("profile university menu should open from the shared dataset")
	}
	h.press(tea.KeyDown, 1)
	h.press(tea.KeyEnter, 1)
	if m.prof.uniDraft.Value != "3" {
		t.Fatalf("draft = %+v, want Universiti Putra Malaysia", m.prof.uniDraft)
	}
	if m.reg.UniversityID != "1" {
		t.Error("the profile editor must not touch the registration draft")
	}

	h.press(tea.KeyTab, 1)
	h.typeText("Bachelor of Computer Science")
	h.press(tea.KeyTab, 1)
	h.press(tea.KeyRight, 3)
	h.press(tea.KeyTab, 1)
	h.typeText("2027-06-30")

	cmd = h.send(keyType(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatalf("save should call the backend (status %q)", m.status)
	}
	h.send(cmd())

	if m.prof.mode != profileView {
		t.Fatalf("mode = %v (status %q), want view after save", m.prof.mode, m.status)
	}
	if m.status != "University details updated" {
		t.Errorf("status = %q", m.status)
	}
	got := model.UniversityDetailsFrom(m.prof.student)
	want := model.UniversityDetails{
		UniversityID: "3",
		University:   "Universiti Putra Malaysia",
		Programme:    "Bachelor of Computer Science",
		Level:        3,
		Graduation:   "2027-06-30",
	}
	if got != want {
		t.Errorf("profile = %+v, want %+v", got, want)
	}
	fresh, err := m.client.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := model.StudentField(fresh.Student, "university_id"); got != "3" {
		t.Errorf("backend university_id = %q, want 3", got)
	}
	if _, ok := fresh.Student["token"]; ok {
		t.Error("the token must not be stored as a student field")
	}

	if n := h.sources.Universities.Fetches(); n != 1 {
		t.Errorf("university source fetched %d times, want 1", n)
	}
	if n := h.dev.DatasetHits("universities"); n != 1 {
		t.Errorf("universities dataset requested %d times, want 1", n)
	}

	subs, _ := h.db.RecentSubmissions(1)
	if len(subs) != 1 || subs[0].Action != "edit" || subs[0].Outcome != model.OutcomeOK {
		t.Errorf("submissions = %+v, want one ok edit", subs)
	}
}

func TestForm_ProfilePersonalValidation(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	resp, err := m.client.Add(context.Background(), "student", map[string]any{
		"fullname":     "Siti Aminah",
		"dob":          "2001-09-30",
		"passport":     "A1234567",
		"email":        "siti@example.com",
		"phone_number": "+60123456789",
		"postcode":     "31900",
		"address":      "Jalan Ampang",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	m.persistToken(resp.Token)
	h.send(m.openProfile(nil)())

	h.send(keyMsg("e"))
	if m.prof.mode != profileEditPersonal {
		t.Fatalf("mode = %v, want personal editor", m.prof.mode)
	}
	if m.prof.pcDraft != "31900" {
		t.Errorf("postcode draft = %q, want the saved postcode", m.prof.pcDraft)
	}

	m.prof.passport.SetValue("12345")
	if cmd := h.send(keyType(tea.KeyCtrlS)); cmd != nil {
		t.Fatal("an invalid passport must not reach the backend")
	}
	if !m.statusErr || !strings.HasPrefix(m.status, "Passport must be") {
		t.Errorf("status = %q", m.status)
	}

	m.prof.passport.SetValue(" a1234567 ")
	m.prof.email.SetValue("siti.aminah@example.com")
	cmd := h.send(keyType(tea.KeyCtrlS))
	if cmd == nil {
		t.Fatalf("valid details should save (status %q)", m.status)
	}
	if got := m.prof.passport.Value(); got != "A1234567" {
		t.Errorf("passport = %q, want normalized", got)
	}
	h.send(cmd())
	if m.prof.mode != profileView || m.status != "Personal details updated" {
		t.Fatalf("mode = %v, status = %q", m.prof.mode, m.status)
	}
	if got := model.StudentField(m.prof.student, "email"); got != "siti.aminah@example.com" {
		t.Errorf("email = %q", got)
	}
}

func TestForm_ProfileEditCancel(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.client = nil
	m.openProfile(map[string]any{"fullname": "Siti Aminah", "programme": "Law"})

	h.send(keyMsg("u"))
	h.press(tea.KeyTab, 1)
	h.typeText(" and Economics")
	h.press(tea.KeyEsc, 1)

	if m.prof.mode != profileView {
		t.Fatalf("mode = %v, want view after esc", m.prof.mode)
	}
	if got := model.StudentField(m.prof.student, "programme"); got != "Law" {
		t.Errorf("programme = %q, want unchanged", got)
	}
	if m.prof.university.Control().MenuOpen() {
		t.Error("leaving the editor should not leave a menu open")
	}
}

func TestForm_DoneOffersProfile(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.goTo(stepDone)
	if cmd := h.send(keyMsg("p")); cmd != nil || m.step != stepDone {
		t.Fatal("without a saved token the profile is unavailable")
	}

	resp, err := m.client.Add(context.Background(), "student", map[string]any{
		"passport": "A1234567", "dob": "2001-09-30", "fullname": "Siti Aminah",
	})
	if err != nil {
		t.Fatal(err)
	}
	m.persistToken(resp.Token)

	cmd := h.send(keyMsg("p"))
	if m.step != stepProfile || cmd == nil {
		t.Fatalf("step = %v, want profile with a load", m.step)
	}
	h.send(cmd())
	if !strings.Contains(m.summaryText, "Hi, Siti Aminah") {
		t.Errorf("profile text = %q", m.summaryText)
	}
}

func TestForm_PostcodeValueOnEveryCommitPath(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.goTo(stepContact)
	m.setFocus(fieldPostcode)

	h.typeText("319")
	opts := m.postcode.Control().Options()
	if len(opts) == 0 {
		t.Fatal("postcode menu should have options")
	}
	m.View()
	click(h, rowOf(m, "postcode-menu", 0))
	if m.reg.Postcode != opts[0].Value {
		t.Errorf("clicked postcode = %q, want %q", m.reg.Postcode, opts[0].Value)
	}

	h.send(keyType(tea.KeyCtrlX))
	if m.reg.Postcode != "" {
		t.Errorf("postcode = %q after clear", m.reg.Postcode)
	}

	m.postcode.Select("50603", "50603 - Kuala Lumpur")
	if m.reg.Postcode != "50603" || m.reg.PostcodeText != "50603 - Kuala Lumpur" {
		t.Errorf("postcode = %q / %q after Select", m.reg.Postcode, m.reg.PostcodeText)
	}
}

func TestForm_DuplicateSubmitIsRejected(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.reg = model.Registration{
		FullName: "Siti", DOB: "2001-09-30", Passport: "A1234567",
		PhonePrefix: "+60", PhoneNumber: "123", UniversityID: "1", Email: "s@example.com",
	}
	h.dev.Seed(map[string]any{"passport": "A1234567", "dob": "1999-01-01"})

	m.goTo(stepSummary)
	h.send(h.send(keyType(tea.KeyEnter))())

	if m.step != stepSummary {
		t.Errorf("step = %v, want to stay on summary", m.step)
	}
	if !m.statusErr || !strings.Contains(m.status, "already registered") {
		t.Errorf("status = %q", m.status)
	}
	subs, _ := h.db.RecentSubmissions(1)
	if len(subs) != 1 || subs[0].Outcome != model.OutcomeRejected {
		t.Errorf("submissions = %+v, want one rejected add", subs)
	}
}

func TestForm_PrefixPickerUpdatesPhone(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	if m.prefix.Current().Value != "+60" {
		t.Fatalf("default prefix = %v", m.prefix.Current())
	}

	h.press(tea.KeyTab, 3)
	if m.focus != fieldPrefix {
		t.Fatalf("focus = %v, want prefix", m.focus)
	}
	h.press(tea.KeyEnter, 1)
	h.press(tea.KeyDown, 1)
	h.press(tea.KeyEnter, 1)

	if m.reg.PhonePrefix != "+62" {
		t.Errorf("prefix = %q, want +62", m.reg.PhonePrefix)
	}
	if m.phone.Placeholder != "62**********" {
		t.Errorf("placeholder = %q", m.phone.Placeholder)
	}
}

// rowOf finds the first rendered row tagged with el and option
func rowOf(m *FormModel, el string, option int) int {
	for i, ln := range m.scr.lines {
		if string(ln.el) == el && ln.option == option {
			return i
		}
	}
	return -1
}

func click(h *formHarness, y int) {
	h.send(tea.MouseMsg{X: 1, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
}

func TestForm_MouseClickCommitsOption(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.View()
	click(h, rowOf(m, "university-input", -1))
	if m.focus != fieldUniversity {
		t.Fatalf("focus = %v, want university after clicking it", m.focus)
	}

	h.typeText("universiti")
	opts := m.university.Control().Options()
	if len(opts) < 2 {
		t.Fatalf("options = %d, want at least 2", len(opts))
	}
	m.View()
	y := rowOf(m, "university-menu", 1)
	if y < 0 {
		t.Fatal("second option not rendered")
	}
	click(h, y)

	if m.reg.University != opts[1].Label {
		t.Errorf("university = %q, want %q", m.reg.University, opts[1].Label)
	}

	m.View()
	click(h, rowOf(m, "university-clear", -1))
	if m.university.Control().Locked() || m.reg.UniversityID != "" {
		t.Error("clicking clear should release the selection")
	}
}

func TestForm_OutsideClickClosesMenu(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.setFocus(fieldUniversity)
	h.typeText("univ")
	if !m.university.Control().MenuOpen() {
		t.Fatal("menu should be open")
	}

	m.View()
	click(h, rowOf(m, "fullname-input", -1))
	if m.university.Control().MenuOpen() {
		t.Error("pressing another field should close the menu")
	}
	if m.focus != fieldName {
		t.Errorf("focus = %v, want name", m.focus)
	}
}

func TestForm_BlurCloseRunsOnLoop(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	m.setFocus(fieldUniversity)
	h.typeText("univ")
	h.press(tea.KeyTab, 1)

	if !m.university.Control().MenuOpen() {
		t.Fatal("blur must not close the menu synchronously")
	}

	select {
	case fn := <-m.queue.ch:
		h.send(queuedMsg{fn: fn})
	case <-time.After(2 * time.Second):
		t.Fatal("blur check was never posted")
	}
	if m.university.Control().MenuOpen() {
		t.Error("queued blur check should close the menu")
	}
}

func TestForm_HelpOverlay(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	h.send(keyType(tea.KeyF1))
	if !strings.Contains(h.m.View(), "Registration Form Help") {
		t.Fatal("f1 should show help")
	}
	h.send(keyMsg("x"))
	if h.m.help.IsVisible() {
		t.Error("any key should dismiss help")
	}
	if h.m.name.Value() != "" {
		t.Error("the dismissing key must not reach the form")
	}
}

func TestForm_ReloadConfig(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	m := h.m
	path := filepath.Join(t.TempDir(), "config.yaml")
	m.configPath = path

	if err := os.WriteFile(path, []byte("ui:\n  theme: light\n  markdown: notty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m.reloadConfig()
	if m.cfg.UI.Theme != "light" || m.statusErr {
		t.Errorf("theme = %q, status = %q", m.cfg.UI.Theme, m.status)
	}

	if err := os.WriteFile(path, []byte("ui: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	m.reloadConfig()
	if !m.statusErr || m.cfg.UI.Theme != "light" {
		t.Errorf("bad config should be ignored, status = %q", m.status)
	}
}

func TestWarmAll_FetchesEachDatasetOnce(t *testing.T) {
	h := newTestForm(t, devserver.Options{})
	counts, err := WarmAll(context.Background(), h.sources)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Universities == 0 || counts.Postcodes == 0 || counts.RegionCodes == 0 {
		t.Errorf("counts = %+v, want every dataset loaded", counts)
	}
	for _, name := range devserver.Datasets {
		if hits := h.dev.DatasetHits(name); hits != 1 {
			t.Errorf("%s hits = %d, want 1", name, hits)
		}
	}
}

func TestSummaryMarkdown(t *testing.T) {
	reg := model.Registration{
		FullName: "Siti | Aminah", DOB: "2001-09-30", PhonePrefix: "+60", PhoneNumber: "0123",
		University: "Universiti Malaya", Email: "s@example.com", Postcode: "31900",
	}
	md := SummaryMarkdown(reg)
	for _, want := range []string{"Siti \\| Aminah", "+60123", "| Postcode | 31900 |", "| Passport | - |"} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q:\n%s", want, md)
		}
	}

	student := StudentMarkdown(map[string]any{"fullname": "Siti", "phone_number": "+60123"})
	if !strings.Contains(student, "| Phone | +60123 |") || !strings.Contains(student, "| Email | - |") {
		t.Errorf("student markdown:\n%s", student)
	}

	if got := renderMarkdown(nil, "# raw"); got != "# raw" {
		t.Errorf("nil renderer = %q", got)
	}
	r, err := newMarkdownRenderer("notty", 60)
	if err != nil {
		t.Fatal(err)
	}
	if out := renderMarkdown(r, md); !strings.Contains(out, "Universiti Malaya") {
		t.Errorf("rendered summary missing university:\n%s", out)
	}
}

func TestProfileMarkdown(t *testing.T) {
	md := ProfileMarkdown(map[string]any{
		"fullname":                  "Siti Aminah binti Ahmad",
		"university":                "Universiti Malaya",
		"level_of_qualification_id": float64(4),
		"phone_number":              "+60123",
	})
	for _, want := range []string{"# Hi, Siti Aminah\n", "| Education level | Postgraduate (Master) |", "| Phone | +60123 |", "| Address | - |"} {
		if !strings.Contains(md, want) {
			t.Errorf("profile missing %q:\n%s", want, md)
		}
	}
	if md := ProfileMarkdown(nil); !strings.HasPrefix(md, "# Your profile") {
		t.Errorf("empty profile:\n%s", md)
	}
}

func TestNextLevelWraps(t *testing.T) {
	last := model.EducationLevels[len(model.EducationLevels)-1].ID
	tests := []struct {
		cur, delta, want int
	}{
		{0, 1, 1},
		{0, -1, last},
		{1, -1, last},
		{last, 1, 1},
		{3, 1, 4},
	}
	for _, tt := range tests {
		if got := nextLevel(tt.cur, tt.delta); got != tt.want {
			t.Errorf("nextLevel(%d, %d) = %d, want %d", tt.cur, tt.delta, got, tt.want)
		}
	}
}
