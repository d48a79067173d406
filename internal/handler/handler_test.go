package handler

import (
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragam/ragam/internal/catalog"
	appI18n "github.com/ragam/ragam/internal/i18n"
	"github.com/ragam/ragam/internal/model"
	"github.com/ragam/ragam/internal/quiz"
	"github.com/ragam/ragam/internal/store"
)

const (
	testPassphrase = "Raja123"
	scenarioCSV    = `The Song,The Film Name,The Ragam,Video Link
Sundari,Thalapathy,Yamuna Kalyani,http://a
Mannil Intha,Keladi Kanmani,Shanmukhapriya,http://b
X,Y,Kalyani,
`
)

var (
	questionIDRe = regexp.MustCompile(`name="question_id" value="([^"]+)"`)
	choiceRe     = regexp.MustCompile(`name="choice" required value="([^"]+)"`)
)

type testApp struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	data   string
}

func newTestApp(t *testing.T, csv string) *testApp {
	t.Helper()
	return newTestAppWithPassphrase(t, csv, testPassphrase)
}

func newTestAppWithPassphrase(t *testing.T, csv, passphrase string) *testApp {
	t.Helper()
	require.NoError(t, appI18n.Init("en"))

	dir := t.TempDir()
	data := filepath.Join(dir, "songs.csv")
	if csv != "" {
		require.NoError(t, os.WriteFile(data, []byte(csv), 0o644))
	}

	db, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h, err := New(db, catalog.NewLoader(data), quiz.New(rand.NewPCG(1, 2)), passphrase, model.AppConfig{DataPath: data})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(appI18n.Middleware())
	r.Use(h.BasePathMiddleware)
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{t: t, srv: srv, client: client, data: data}
}

func (a *testApp) get(path string) (*http.Response, string) {
	a.t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(body)
}

func (a *testApp) csrf() string {
	u, _ := url.Parse(a.srv.URL + "/")
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == csrfCookieName {
			return c.Value
		}
	}
	return ""
}

func (a *testApp) post(path string, form url.Values) (*http.Response, string) {
	a.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", a.csrf())
	}
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	return resp, string(body)
}

func (a *testApp) login() {
	a.t.Helper()
	a.get("/login")
	resp, _ := a.post("/login", url.Values{"passphrase": {testPassphrase}})
	require.Equal(a.t, http.StatusSeeOther, resp.StatusCode)
}

func TestNewRequiresPassphrase(t *testing.T) {
	_, err := New(nil, nil, nil, "   ", model.AppConfig{})
	assert.Error(t, err)
}

func TestNewRejectsOverlongPassphrase(t *testing.T) {
	_, err := New(nil, nil, nil, strings.Repeat("a", MaxPassphraseLen+1), model.AppConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 72")
}

func TestLoginRequiresExactPassphrase(t *testing.T) {
	pass := strings.Repeat("a", MaxPassphraseLen)
	app := newTestAppWithPassphrase(t, scenarioCSV, pass)
	app.get("/login")

	for _, attempt := range []string{pass + "WRONG-SUFFIX", pass + "a", pass[:MaxPassphraseLen-1]} {
		resp, body := app.post("/login", url.Values{"passphrase": {attempt}})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "len %d", len(attempt))
		assert.Contains(t, body, "Access Denied. Try again.")
	}

	resp, _ := app.post("/login", url.Values{"passphrase": {pass}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestGateBlocksCatalog(t *testing.T) {
	app := newTestApp(t, scenarioCSV)

	for _, p := range []string{"/", "/quiz", "/?raga=kalyani"} {
		resp, _ := app.get(p)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, p)
		assert.Equal(t, "/login", resp.Header.Get("Location"), p)
	}

	resp, body := app.get("/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter the Magic Password:")
}

func TestLogin(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.get("/login")

	tests := []struct {
		name       string
		passphrase string
		wantStatus int
	}{
		{"empty", "", http.StatusUnauthorized},
		{"wrong", "raja123", http.StatusUnauthorized},
		{"prefix", "Raja12", http.StatusUnauthorized},
		{"trimmed", "  Raja123\t", http.StatusSeeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := app.post("/login", url.Values{"passphrase": {tt.passphrase}})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, body, "Access Denied. Try again.")
			}
		})
	}

	resp, body := app.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "3 songs in the catalog.")

	// Already through the gate: the login page sends the visitor home.
	resp, _ = app.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.login()

	app.get("/")
	resp, _ := app.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = app.get("/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCSRFRequired(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.login()
	app.get("/quiz")

	resp, _ := app.post("/quiz/new", url.Values{"csrf_token": {"forged"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRagaSearch(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.login()

	_, body := app.get("/")
	assert.NotContains(t, body, "No ragas found")

	_, body = app.get("/?raga=" + url.QueryEscape("  kalyani "))
	assert.Contains(t, body, "Yamuna Kalyani")
	assert.Contains(t, body, "<h3>Kalyani <small>(1 song)</small></h3>")
	assert.Contains(t, body, "<h3>Yamuna Kalyani <small>(1 song)</small></h3>")
	assert.NotContains(t, body, `<div class="song">`, "no song is shown until one is chosen")

	_, body = app.get("/?raga=kalyani&group=" + url.QueryEscape("Yamuna Kalyani") + "&member=0")
	assert.Contains(t, body, `<div class="song">`)
	assert.Contains(t, body, "<h3>Sundari</h3>")
	assert.Contains(t, body, "Open video")

	_, body = app.get("/?raga=kalyani&group=Kalyani&member=0")
	assert.Contains(t, body, "<h3>X</h3>")
	assert.Contains(t, body, "No Video Available")

	// Out-of-range or unknown group picks nothing.
	_, body = app.get("/?raga=kalyani&group=Kalyani&member=5")
	assert.NotContains(t, body, `<div class="song">`)
	_, body = app.get("/?raga=kalyani&group=Todi&member=0")
	assert.NotContains(t, body, `<div class="song">`)

	_, body = app.get("/?raga=todi")
	assert.Contains(t, body, "No ragas found with that name. Try another spelling!")
}

func TestSongSearch(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.login()

	_, body := app.get("/?song=SUNDARI")
	assert.Contains(t, body, "Sundari (Thalapathy)")
	assert.NotContains(t, body, `<div class="song">`, "a single match still needs an explicit pick")

	_, body = app.get("/?song=sundari&pick=0")
	assert.Contains(t, body, "<h3>Sundari</h3>")

	// A pick outside the current matches is ignored.
	_, body = app.get("/?song=sundari&pick=1")
	assert.NotContains(t, body, `<div class="song">`)

	_, body = app.get("/?song=nothing")
	assert.Contains(t, body, "No songs found with that name.")
}

func TestQuizFlow(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.login()

	_, body := app.get("/quiz")
	assert.Contains(t, body, "Play a Mystery Song")
	assert.Empty(t, questionIDRe.FindStringSubmatch(body), "no question before the first request")

	resp, _ := app.post("/quiz/new", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/quiz", resp.Header.Get("Location"))

	_, body = app.get("/quiz")
	id := questionIDRe.FindStringSubmatch(body)
	require.Len(t, id, 2)
	choices := choiceRe.FindAllStringSubmatch(body, -1)
	require.Len(t, choices, 3)
	assert.NotContains(t, body, "Raga: ", "answer hidden until revealed")

	// Redraws keep the same question and choice order.
	_, again := app.get("/quiz")
	assert.Equal(t, choices, choiceRe.FindAllStringSubmatch(again, -1))
	assert.Equal(t, id, questionIDRe.FindStringSubmatch(again))

	_, revealed := app.get("/quiz?reveal=1")
	m := regexp.MustCompile(`Raga: ([^<]+)</strong>`).FindStringSubmatch(revealed)
	require.Len(t, m, 2)
	raga := m[1]
	assert.NotEqual(t, "Kalyani", raga, "the song without a video is never asked")

	resp, body = app.post("/quiz/answer", url.Values{"question_id": {id[1]}, "choice": {raga}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Correct! Well done.")

	// Answers can be checked again.
	wrong := "Kalyani"
	_, body = app.post("/quiz/answer", url.Values{"question_id": {id[1]}, "choice": {wrong}})
	assert.Contains(t, body, "Not quite. Try again!")

	// A new question replaces the old one; answers to the old one are stale.
	resp, _ = app.post("/quiz/new", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	_, body = app.get("/quiz")
	next := questionIDRe.FindStringSubmatch(body)
	require.Len(t, next, 2)
	assert.NotEqual(t, id[1], next[1])

	resp, body = app.post("/quiz/answer", url.Values{"question_id": {id[1]}, "choice": {raga}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "That question has been replaced.")
}

func TestQuizStatePerVisitor(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	app.login()
	app.get("/quiz")
	app.post("/quiz/new", nil)

	other := &testApp{t: t, srv: app.srv, data: app.data}
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other.client = &http.Client{Jar: jar, CheckRedirect: app.client.CheckRedirect}
	other.login()

	_, body := other.get("/quiz")
	assert.Empty(t, questionIDRe.FindStringSubmatch(body))
}

func TestQuizEmptyPool(t *testing.T) {
	app := newTestApp(t, `The Song,The Film Name,The Ragam,Video Link
X,Y,Kalyani,No Link
Z,W,Mohanam,
`)
	app.login()
	app.get("/quiz")

	resp, body := app.post("/quiz/new", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "No songs with a video are available for the quiz.")
}

func TestDataLoadErrorIsRecoverable(t *testing.T) {
	app := newTestApp(t, "")
	app.login()

	resp, body := app.get("/")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Error loading data")
	assert.Contains(t, body, "Retry")

	app.get("/quiz")
	resp, body = app.post("/quiz/new", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "Error loading data")

	require.NoError(t, os.WriteFile(app.data, []byte(scenarioCSV), 0o644))
	resp, body = app.get("/?raga=kalyani")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body, "Yamuna Kalyani"))
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, scenarioCSV)
	resp, body := app.get("/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
}
