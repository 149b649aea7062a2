package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsdesk/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPostsCmd() *cobra.Command {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Inspect published posts",
	}

	var apiURL string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fetchPosts(apiURL)
			if err != nil {
				return err
			}
			renderPosts(cmd.OutOrStdout(), list)
			return nil
		},
	}
	listCmd.Flags().StringVar(&apiURL, "api", envOr("NEWSDESK_API_URL", "http://localhost:8080"), "newsdesk server base URL")

	postsCmd.AddCommand(listCmd)
	return postsCmd
}

func fetchPosts(apiURL string) ([]models.Post, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(strings.TrimRight(apiURL, "/") + "/api/posts")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body struct {
		Success bool          `json:"success"`
		Posts   []models.Post `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return body.Posts, nil
}

func renderPosts(out io.Writer, list []models.Post) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Created", "Status", "Title", "Source", "Image"})
	for _, p := range list {
		image := ""
		if p.ImageURL != nil {
			image = "yes"
		}
		t.AppendRow(table.Row{p.ID.Hex(), p.CreatedAt.Format(time.RFC3339), p.Status, p.Title, p.Source, image})
	}
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d posts", len(list))})
	t.Render()
}
