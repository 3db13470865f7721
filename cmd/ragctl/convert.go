package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE...",
	Short: "Convert source documents to markdown via the server",
	Long: `Convert submits a batch of source files (PDFs and similar) for
conversion. Results stream back as each file finishes; the order follows
completion, not the argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().String("converter", "docling", "conversion backend")
	convertCmd.Flags().Int("max-workers", 4, "requested concurrency (server applies its own cap)")
	convertCmd.Flags().String("output-dir", "./converted", "directory for markdown and metadata outputs (server-side path)")
}

type convertItem struct {
	SourcePath string `json:"source_path"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	OutputPath string `json:"output_path"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	Error      string `json:"error"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Failed     int    `json:"failed"`
	Succeeded  int    `json:"succeeded"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	converterName, _ := cmd.Flags().GetString("converter")
	maxWorkers, _ := cmd.Flags().GetInt("max-workers")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		paths = append(paths, abs)
	}

	body, err := json.Marshal(map[string]any{
		"source_paths": paths,
		"converter":    converterName,
		"max_workers":  maxWorkers,
		"output_dir":   outputDir,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, apiURL("/v1/preprocess"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	failed := 0
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var item convertItem
		if err := json.Unmarshal(scanner.Bytes(), &item); err != nil {
			continue
		}
		switch {
		case item.Status != "":
			fmt.Printf("done: %d converted, status=%s", item.Total, item.Status)
			if item.Failed > 0 {
				fmt.Printf(" (%d failed)", item.Failed)
			}
			fmt.Println()
		case item.Error != "":
			failed++
			fmt.Printf("FAIL %s: %s\n", item.SourcePath, item.Error)
		default:
			fmt.Printf("ok   %s -> %s (%dms)\n", item.SourcePath, item.OutputPath, item.ElapsedMS)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to convert", failed)
	}
	return nil
}
