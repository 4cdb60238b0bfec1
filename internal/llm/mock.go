package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MockClient returns deterministic answers without network access. Critique requests
// get a complete answer in the fenced template.
type MockClient struct {
	Name string
}

func NewMockClient() *MockClient {
	return &MockClient{Name: "mock"}
}

const mockCritique = `═══ 一、節奏分析 ═══
開場鋪陳清楚，中段轉折稍慢，結尾收得俐落。
節奏評分（1-10）：7

═══ 二、爽點設計 ═══
主角反擊的橋段有明確的情緒釋放。
爽點評分（1-10）：8

═══ 三、鉤子強度 ═══
章末留下的疑問足以帶動下一章。
鉤子評分（1-10）：6

═══ 四、對話品質與水文檢測 ═══
人物口吻區分明顯，環境描寫略有重複。
對話評分（1-10）：7
水文評分（1-10）：6

═══ 五、修改建議 ═══
1. 刪減中段重複的環境描寫，讓衝突提早出現
2. 在章末加入一個具體的懸念畫面
3. 讓配角的台詞多一點個人特色

═══ 六、整體評價 ═══
亮點：反擊橋段節奏明快
問題：中段略顯拖沓
總評分（1-10）：7
一句話總結：穩定的一章，刪掉冗餘後會更好看。`

func (m *MockClient) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	name := m.Name
	if name == "" {
		name = "mock"
	}
	var text string
	switch req.Operation {
	case OpCritique:
		text = mockCritique
	case OpContinue:
		text = "夜色更深了。她把信收進袖中，轉身走向燈火未熄的長廊。"
	case OpSummarize:
		text = fmt.Sprintf("本章摘要（%d 字提示）。", utf8.RuneCountInString(req.Prompt))
	default:
		text = "Mock response."
	}
	return Response{
		Text:             text,
		Provider:         name,
		Model:            "mock-llm-v1",
		PromptTokens:     len(strings.Fields(req.Prompt)),
		CompletionTokens: utf8.RuneCountInString(text),
	}, nil
}

var _ Client = (*MockClient)(nil)
