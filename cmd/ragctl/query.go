package main

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query CORPUS QUESTION",
	Short: "Ask a question against a corpus",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().Int("limit", 5, "number of chunks to retrieve")
	queryCmd.Flags().Bool("hybrid", false, "use dense+sparse fusion")
	queryCmd.Flags().Int("word-target", 0, "approximate answer length in words")
	queryCmd.Flags().StringSlice("documents", nil, "restrict retrieval to these document ids")
	queryCmd.Flags().Bool("bibtex", false, "print citations as BibTeX instead of APA")
}

func runQuery(cmd *cobra.Command, args []string) error {
	corpusID, question := args[0], args[1]
	limit, _ := cmd.Flags().GetInt("limit")
	hybrid, _ := cmd.Flags().GetBool("hybrid")
	wordTarget, _ := cmd.Flags().GetInt("word-target")
	documents, _ := cmd.Flags().GetStringSlice("documents")
	bibtex, _ := cmd.Flags().GetBool("bibtex")

	var resp struct {
		Answer    string `json:"answer"`
		Citations map[string]struct {
			APA    string `json:"apa"`
			BibTeX string `json:"bibtex"`
		} `json:"citations"`
	}
	endpoint := "/v1/corpora/" + url.PathEscape(corpusID) + "/query"
	err := doJSON(http.MethodPost, endpoint, map[string]any{
		"query":        question,
		"limit":        limit,
		"use_hybrid":   hybrid,
		"word_target":  wordTarget,
		"document_ids": documents,
	}, &resp)
	if err != nil {
		return err
	}

	if resp.Answer == "" {
		fmt.Println("no relevant passages found")
		return nil
	}

	fmt.Println(resp.Answer)
	if len(resp.Citations) == 0 {
		return nil
	}

	fmt.Println("\nReferences:")
	keys := make([]string, 0, len(resp.Citations))
	for key := range resp.Citations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if bibtex {
			fmt.Println(resp.Citations[key].BibTeX)
		} else {
			fmt.Printf("[%s] %s\n", key, resp.Citations[key].APA)
		}
	}
	return nil
}
