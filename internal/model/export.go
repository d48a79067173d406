package model

// SearchExport is the top-level JSON structure printed by the search command.
type SearchExport struct {
	Dataset string       `json:"dataset"`
	Songs   int          `json:"songs"`
	Ragas   *RagaResults `json:"ragas,omitempty"`
	Titles  *SongResults `json:"titles,omitempty"`
}
