package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ragam/ragam/internal/catalog"
	"github.com/ragam/ragam/internal/model"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the dataset by raga or song name from the terminal",
		RunE:  runSearch,
	}
	f := cmd.Flags()
	f.String("data", "songs_updated.csv", "Song dataset CSV path")
	f.StringP("raga", "r", "", "Raga name to search for (substring, case-insensitive)")
	f.StringP("song", "s", "", "Song title to search for (substring, case-insensitive)")
	f.StringP("format", "f", "table", "Output format (table, json)")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	raga := strings.TrimSpace(v.GetString("raga"))
	song := strings.TrimSpace(v.GetString("song"))
	if raga == "" && song == "" {
		return fmt.Errorf("nothing to search: pass --raga or --song")
	}

	path := v.GetString("data")
	cat, err := catalog.ParseFile(path)
	if err != nil {
		return err
	}

	export := model.SearchExport{Dataset: path, Songs: cat.Len()}
	if raga != "" {
		res := cat.SearchRagas(raga)
		export.Ragas = &res
	}
	if song != "" {
		res := cat.SearchSongs(song)
		export.Titles = &res
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(v.GetString("format")) {
	case "json":
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "table":
		printTables(out, cat, export)
		return nil
	default:
		return fmt.Errorf("unknown format %q", v.GetString("format"))
	}
}

func printTables(w io.Writer, cat *catalog.Catalog, export model.SearchExport) {
	if export.Ragas != nil {
		if export.Ragas.State() == model.NoResults {
			fmt.Fprintf(w, "No ragas found matching %q.\n", export.Ragas.Query)
		} else {
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Raga", "Song", "Film", "Video"})
			for _, g := range export.Ragas.Groups {
				for _, s := range g.Songs {
					t.AppendRow(table.Row{g.Name, s.Title, s.Film, s.VideoLink})
				}
				t.AppendSeparator()
			}
			t.AppendFooter(table.Row{fmt.Sprintf("%d groups", len(export.Ragas.Groups))})
			t.Render()
		}
	}

	if export.Titles != nil {
		if export.Titles.State() == model.NoResults {
			fmt.Fprintf(w, "No songs found matching %q.\n", export.Titles.Query)
			return
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Song", "Raga", "Video"})
		for _, m := range export.Titles.Matches {
			s, err := cat.Song(m.SongID)
			if err != nil {
				continue
			}
			raga := s.Raga
			if !s.HasRaga() {
				raga = "-"
			}
			t.AppendRow(table.Row{m.Label, raga, s.VideoLink})
		}
		t.Render()
	}
}
