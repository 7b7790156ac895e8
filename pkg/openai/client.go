package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const systemPrompt = "Você é um analista de apostas esportivas experiente e imparcial."

const promptTemplate = `Analise os seguintes dados de futebol para gerar um palpite esportivo. Considere as estatísticas dos times, forma recente, confrontos diretos e o fator mandante/visitante. O palpite deve incluir um nível de confiança (%%), o melhor mercado (ex: resultado final, ambas marcam, over/under) e odds sugeridas.

Dados da Partida:
Campeonato: %s
Time da Casa: %s
Time Visitante: %s
Horário: %s

Estatísticas do Time da Casa: %s
Estatísticas do Time Visitante: %s
Confrontos Diretos: %s

Formato da Resposta:
Análise: [resumo da análise]
Palpite: [palpite]
Confiança: [X%%]
Mercado: [melhor mercado]
Odd Sugerida: [odd]`

// MatchContext is the structured match data handed to the model.
type MatchContext struct {
	Championship string
	HomeTeam     string
	AwayTeam     string
	MatchTime    string
	HomeStats    json.RawMessage
	AwayStats    json.RawMessage
	HeadToHead   json.RawMessage
}

type Client struct {
	token      string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(token, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &Client{
		token:      token,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, endpoint string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("openai: unexpected status " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// AnalyzeMatch asks the model for an analysis of one fixture. The answer is
// free text that should follow the labeled-line format of the prompt; parsing
// and tolerance for malformed answers are the caller's concern.
func (c *Client) AnalyzeMatch(ctx context.Context, m MatchContext) (string, error) {
	prompt := fmt.Sprintf(promptTemplate,
		m.Championship, m.HomeTeam, m.AwayTeam, m.MatchTime,
		rawOrEmpty(m.HomeStats), rawOrEmpty(m.AwayStats), rawOrEmpty(m.HeadToHead))

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
		"max_tokens":  500,
	}
	var respBody struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.do(ctx, "/chat/completions", reqBody, &respBody); err != nil {
		return "", err
	}
	if len(respBody.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return respBody.Choices[0].Message.Content, nil
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
