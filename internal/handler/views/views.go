// Package views holds the templ components for the HTML pages.
package views

import (
	"context"
	"net/url"

	"github.com/a-h/templ"

	appI18n "github.com/ragam/ragam/internal/i18n"
	"github.com/ragam/ragam/internal/model"
)

// Nav identifies the active tab.
type Nav string

const (
	NavNone   Nav = ""
	NavSearch Nav = "search"
	NavQuiz   Nav = "quiz"
)

// appURL prefixes an app path with the deployment base path.
func appURL(ctx context.Context, p string) templ.SafeURL {
	return templ.SafeURL(model.BasePathFromContext(ctx) + p)
}

// SearchData is everything the search page shows.
type SearchData struct {
	LoadError string
	Songs     int

	Ragas       model.RagaResults
	OpenGroup   string      // group whose member was chosen
	RagaChoice  *model.Song // chosen member of OpenGroup
	Titles      model.SongResults
	TitleChoice *model.Song
}

// params carries both search boxes' queries across form submits.
func (d SearchData) params() url.Values {
	v := url.Values{}
	if d.Ragas.Query != "" {
		v.Set("raga", d.Ragas.Query)
	}
	if d.Titles.Query != "" {
		v.Set("song", d.Titles.Query)
	}
	return v
}

func (d SearchData) ragaChosen(g model.RagaGroup, s model.Song) bool {
	return d.OpenGroup == g.Name && d.RagaChoice != nil && d.RagaChoice.ID == s.ID
}

// QuizData is everything the quiz page shows.
type QuizData struct {
	LoadError string
	Notice    string
	Question  *model.Question
	Reveal    bool
	Answer    string
	Verdict   model.Verdict
}

func loadErrorText(ctx context.Context, msg string) string {
	return appI18n.Td(ctx, "DataLoadError", map[string]any{"Error": msg})
}
