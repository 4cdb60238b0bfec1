package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"novel-backend/internal/chapters"
	"novel-backend/internal/llm"
)

type recordingClient struct {
	last llm.Request
	err  error
}

func (r *recordingClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	r.last = req
	if r.err != nil {
		return llm.Response{}, r.err
	}
	return llm.NewMockClient().Complete(ctx, req)
}

func setup(t *testing.T) (*Service, *recordingClient, chapters.Chapter) {
	t.Helper()
	ctx := context.Background()
	chs := chapters.NewService(chapters.NewMemoryRepo())
	vol, err := chs.CreateVolume(ctx, "第一卷")
	require.NoError(t, err)
	ch, err := chs.Create(ctx, vol.ID, "雨夜", "林晚推開門，風雪灌進來。")
	require.NoError(t, err)

	client := &recordingClient{}
	router := llm.NewRouter("rec")
	router.Register("rec", client)
	return NewService(chs, router), client, ch
}

func TestContinueBuildsPromptFromChapter(t *testing.T) {
	svc, client, ch := setup(t)

	res, err := svc.Continue(context.Background(), ch.ID, ContinueInput{Instruction: "加入一段回憶", Words: 300})
	require.NoError(t, err)
	require.Equal(t, "rec", res.Provider)
	require.NotEmpty(t, res.Text)
	require.Equal(t, llm.OpContinue, client.last.Operation)
	require.Contains(t, client.last.Prompt, "林晚推開門")
	require.Contains(t, client.last.Prompt, "加入一段回憶")
	require.Equal(t, 600, client.last.MaxTokens)
}

func TestSummarize(t *testing.T) {
	svc, client, ch := setup(t)

	res, err := svc.Summarize(context.Background(), ch.ID, "", 0)
	require.NoError(t, err)
	require.Equal(t, ch.ID, res.ChapterID)
	require.Equal(t, llm.OpSummarize, client.last.Operation)
}

func TestAssistErrors(t *testing.T) {
	ctx := context.Background()

	svc, client, ch := setup(t)
	_, err := svc.Summarize(ctx, "missing", "", 0)
	require.ErrorIs(t, err, ErrChapterMissing)

	_, err = svc.Continue(ctx, ch.ID, ContinueInput{Words: maxWords + 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Continue(ctx, ch.ID, ContinueInput{Provider: "nope"})
	require.ErrorIs(t, err, llm.ErrUnknownProvider)

	client.err = errors.New("upstream down")
	_, err = svc.Summarize(ctx, ch.ID, "", 0)
	require.ErrorIs(t, err, ErrGeneration)
}
