package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"novel-backend/internal/critique"
	"novel-backend/internal/llm"
)

const sample = `═══ 一、節奏分析 ═══
節奏評分（1-10）：9

═══ 六、整體評價 ═══
總評分（1-10）：9
一句話總結：好看。`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseCommandAddsTiers(t *testing.T) {
	out, err := run(t, sample, "parse", "-")
	require.NoError(t, err)

	var payload struct {
		Scores []struct {
			Category string `json:"category"`
			Value    int    `json:"value"`
			Tier     string `json:"tier"`
		} `json:"scores"`
		OverallTier string `json:"overallTier"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Scores, 1)
	require.Equal(t, "pacing", payload.Scores[0].Category)
	require.Equal(t, string(critique.TierExcellent), payload.Scores[0].Tier)
	require.Equal(t, string(critique.TierExcellent), payload.OverallTier)
}

func TestParseCommandRejectsBlankInput(t *testing.T) {
	_, err := run(t, "   ", "parse", "-")
	require.Error(t, err)
}

func TestFingerprintCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ch1.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	out, err := run(t, "", "fingerprint", path)
	require.NoError(t, err)
	require.Equal(t, "to5x38\t"+path+"\n", out)
}

func TestSchemaCommand(t *testing.T) {
	out, err := run(t, "", "schema")
	require.NoError(t, err)
	require.Contains(t, out, `"CritiqueData"`)
}

func TestGenerateCommandUsesRouter(t *testing.T) {
	prev := routerFromEnv
	t.Cleanup(func() { routerFromEnv = prev })
	routerFromEnv = func(context.Context) (*llm.Router, error) {
		r := llm.NewRouter("mock")
		r.Register("mock", llm.NewMockClient())
		return r, nil
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "第一章.txt")
	require.NoError(t, os.WriteFile(path, []byte("林晚推開門。"), 0o600))

	out, err := run(t, "", "generate", path)
	require.NoError(t, err)
	require.Contains(t, out, `"overallScore": 7`)

	_, err = run(t, "", "generate", "--provider", "nope", path)
	require.ErrorIs(t, err, llm.ErrUnknownProvider)
}
