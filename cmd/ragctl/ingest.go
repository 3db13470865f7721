package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest CORPUS FILE...",
	Short: "Ingest markdown documents into a corpus",
	Long: `Ingest reads each markdown file and indexes it as one document. When a
sibling FILE.metadata.json exists (as written by ragctl convert), its
bibliographic fields are sent along.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

// sidecarMetadata mirrors the metadata JSON written next to converted
// markdown files.
type sidecarMetadata struct {
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Abstract        string   `json:"abstract"`
	PublicationDate string   `json:"publication_date"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	corpusID := args[0]
	for _, path := range args[1:] {
		if err := ingestFile(corpusID, path); err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
	}
	return nil
}

func ingestFile(corpusID, path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	documentID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	body := map[string]any{
		"document_id": documentID,
		"text":        string(text),
	}
	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".metadata.json"
	if raw, err := os.ReadFile(sidecar); err == nil {
		var meta sidecarMetadata
		if err := json.Unmarshal(raw, &meta); err == nil {
			body["title"] = meta.Title
			body["authors"] = meta.Authors
			body["abstract"] = meta.Abstract
			body["publication_date"] = meta.PublicationDate
		}
	}

	var resp struct {
		DocumentID    string `json:"document_id"`
		CitationKey   string `json:"citation_key"`
		ChunksCreated int    `json:"chunks_created"`
	}
	endpoint := "/v1/corpora/" + url.PathEscape(corpusID) + "/documents"
	if err := doJSON(http.MethodPost, endpoint, body, &resp); err != nil {
		return err
	}

	fmt.Printf("ingested %s as [%s] (%d chunks)\n", resp.DocumentID, resp.CitationKey, resp.ChunksCreated)
	return nil
}
