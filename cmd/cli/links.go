package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Create and redeem one-time secure links",
	Long:  "Commands for sharing files through single-use links that self-destruct on first retrieval",
}

var linksCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a one-time link for a local file",
	Long: `Upload a file as a one-time secure link. The link works exactly once:
the first person to open it gets the file, and the link is destroyed.

Examples:
  sharespace links create ./contract.pdf
  sharespace links create ./photo.jpg --name vacation.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		return createLink(args[0], name)
	},
}

var linksConsumeCmd = &cobra.Command{
	Use:   "consume <id-or-url>",
	Short: "Redeem a one-time link and download its file",
	Long: `Retrieve the file behind a one-time link. This destroys the link;
a second attempt with the same id gets a not-found error.

Examples:
  sharespace links consume 3q2-8hW1lE6TfqxODPmRYg
  sharespace links consume https://share.example.com/api/v1/secure-links/3q2-8hW1lE6TfqxODPmRYg --out ./contract.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return consumeLink(args[0], out)
	},
}

func init() {
	linksCmd.AddCommand(linksCreateCmd)
	linksCmd.AddCommand(linksConsumeCmd)

	linksCreateCmd.Flags().String("name", "", "File name to present to the recipient (defaults to the local name)")
	linksConsumeCmd.Flags().StringP("out", "o", "", "Write the file here instead of the received name")
}

func createLink(path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if name == "" {
		name = filepath.Base(path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	payload := map[string]interface{}{
		"payload":   fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)),
		"file_name": name,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest("POST", apiURL+"/api/v1/secure-links", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if output == "json" {
		fmt.Println(string(respBody))
		return nil
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("One-time link for %s:\n", name)
	fmt.Println(result.URL)
	fmt.Println("\nThis link works exactly once. Anyone with it can download the file.")
	return nil
}

func consumeLink(idOrURL, out string) error {
	id := idOrURL
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if id == "" {
		return fmt.Errorf("link id cannot be empty")
	}

	resp, err := http.Get(apiURL + "/api/v1/secure-links/" + id)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("link not found: it may already have been used, or it expired")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Payload  string `json:"payload"`
		FileName string `json:"fileName"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	_, encoded, ok := strings.Cut(result.Payload, ",")
	if !ok {
		return fmt.Errorf("server returned a malformed payload")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}

	if out == "" {
		out = result.FileName
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
	fmt.Println("The link has been destroyed and cannot be used again.")
	return nil
}
