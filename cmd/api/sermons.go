package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/sermonchat/internal/app"
	"github.com/markdave123-py/sermonchat/internal/models"
	"github.com/markdave123-py/sermonchat/internal/services"
)

func sermonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sermons",
		Short: "Inspect and edit the sermon catalog",
	}
	cmd.AddCommand(sermonsListCmd(), sermonsAddCmd(), sermonsStatusCmd())
	return cmd
}

// withSermons opens the configured store for the duration of fn.
func withSermons(cmd *cobra.Command, fn func(*services.SermonService) error) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, err := app.NewStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(services.NewSermonService(store, nil))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sermonsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every sermon as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSermons(cmd, func(svc *services.SermonService) error {
				sermons, err := svc.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sermons)
			})
		},
	}
}

func sermonsAddCmd() *cobra.Command {
	var (
		draft      models.SermonDraft
		sourceType string
		tags       string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a sermon for transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft.SourceType = models.SourceKind(sourceType)
			draft.Tags = models.ParseTags(tags)
			return withSermons(cmd, func(svc *services.SermonService) error {
				sermon, err := svc.Append(cmd.Context(), draft)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sermon)
			})
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "Sermon title")
	cmd.Flags().StringVar(&draft.URL, "url", "", "YouTube or audio URL")
	cmd.Flags().StringVar(&draft.Speaker, "speaker", "", "Speaker name")
	cmd.Flags().StringVar(&draft.Date, "date", "", "Sermon date")
	cmd.Flags().StringVar(&sourceType, "source-type", string(models.SourceYouTube), "youtube or audio")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags")
	return cmd
}

func sermonsStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a sermon to a new review status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSermons(cmd, func(svc *services.SermonService) error {
				sermon, err := svc.Review(cmd.Context(), args[0], models.SermonStatus(args[1]))
				if err != nil {
					return fmt.Errorf("update %s: %w", args[0], err)
				}
				return printJSON(cmd.OutOrStdout(), sermon)
			})
		},
	}
}
