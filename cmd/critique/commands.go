package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"novel-backend/internal/critique"
	"novel-backend/internal/critiques"
	"novel-backend/internal/extract"
	"novel-backend/internal/llm"
	"novel-backend/internal/llm/registry"
	"novel-backend/internal/shared/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "critique",
		Short:         "Parse, fingerprint and generate chapter critiques",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newParseCmd(), newFingerprintCmd(), newSchemaCmd(), newGenerateCmd())
	return root
}

func newParseCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse critique text into structured JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			data := critique.Parse(text)
			if data == nil {
				return fmt.Errorf("%s: no critique text", args[0])
			}
			if raw {
				return writeJSON(cmd.OutOrStdout(), data)
			}
			return writeJSON(cmd.OutOrStdout(), critiques.PresentCritique(data))
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print parsed data without tiers")
	return cmd
}

func newFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <file|->...",
		Short: "Print the content fingerprint of chapter files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				text, err := readChapter(cmd, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", critique.Fingerprint(text), name)
			}
			return nil
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of parsed critique data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := critique.SchemaJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			return err
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var provider, title string
	cmd := &cobra.Command{
		Use:   "generate <chapter-file>",
		Short: "Request a critique for a chapter file from an LLM provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readChapter(cmd, args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			ctx := commandContext(cmd)
			router, err := routerFromEnv(ctx)
			if err != nil {
				return err
			}
			req, err := llm.CritiqueRequest(llm.ChapterInput{Title: title, Content: text})
			if err != nil {
				return err
			}
			resp, err := router.Complete(ctx, provider, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "provider:", resp.Provider, "model:", resp.Model, "fingerprint:", critique.Fingerprint(text))
			return writeJSON(cmd.OutOrStdout(), critiques.PresentCritique(critique.Parse(resp.Text)))
		},
	}
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "provider name (default from LLM_DEFAULT_PROVIDER)")
	cmd.Flags().StringVar(&title, "title", "", "chapter title (default: file name)")
	return cmd
}

// routerFromEnv is swapped in tests.
var routerFromEnv = func(ctx context.Context) (*llm.Router, error) {
	cfg := config.Load()
	return registry.Build(ctx, registry.Options{
		DefaultProvider: cfg.LLMDefaultProvider,
		ProvidersFile:   cfg.LLMProvidersFile,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		OpenAIModel:     cfg.LLMModel,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		Timeout:         cfg.LLMTimeout,
	})
}

func readInput(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readChapter extracts text from .txt, .pdf and .docx files the same way imports do.
func readChapter(cmd *cobra.Command, name string) (string, error) {
	if name == "-" {
		return readInput(cmd, name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	text, err := extract.TextFromBytes(commandContext(cmd), data, "", filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return text, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
