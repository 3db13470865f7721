package main

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage corpora",
}

var corpusCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusCreate,
}

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List corpora",
	Args:  cobra.NoArgs,
	RunE:  runCorpusList,
}

var corpusDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a corpus and all its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusDelete,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusCreateCmd, corpusListCmd, corpusDeleteCmd)

	corpusCreateCmd.Flags().String("id", "", "corpus id (defaults to the name)")
	corpusCreateCmd.Flags().String("mode", "dense", "search mode: dense or hybrid")
}

type corpusPayload struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Mode          string    `json:"mode"`
	VectorDim     int       `json:"vector_dim"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func runCorpusCreate(cmd *cobra.Command, args []string) error {
	name := args[0]
	id, _ := cmd.Flags().GetString("id")
	mode, _ := cmd.Flags().GetString("mode")
	if id == "" {
		id = name
	}

	var corpus corpusPayload
	err := doJSON(http.MethodPost, "/v1/corpora", map[string]string{
		"id":   id,
		"name": name,
		"mode": mode,
	}, &corpus)
	if err != nil {
		return err
	}

	fmt.Printf("created corpus %s (mode=%s, dim=%d)\n", corpus.ID, corpus.Mode, corpus.VectorDim)
	return nil
}

func runCorpusList(cmd *cobra.Command, args []string) error {
	var resp struct {
		Corpora []corpusPayload `json:"corpora"`
	}
	if err := doJSON(http.MethodGet, "/v1/corpora", nil, &resp); err != nil {
		return err
	}

	if len(resp.Corpora) == 0 {
		fmt.Println("no corpora")
		return nil
	}
	fmt.Printf("%-24s %-8s %-6s %-10s %s\n", "ID", "MODE", "DIM", "DOCUMENTS", "CREATED")
	for _, c := range resp.Corpora {
		fmt.Printf("%-24s %-8s %-6d %-10d %s\n",
			c.ID, c.Mode, c.VectorDim, c.DocumentCount, c.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func runCorpusDelete(cmd *cobra.Command, args []string) error {
	path := "/v1/corpora/" + url.PathEscape(args[0])
	if err := doJSON(http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	fmt.Printf("deleted corpus %s\n", args[0])
	return nil
}
