package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// structuredAction is the JSON envelope the primary strategy asks the model
// to emit: exactly one of tool or final.
type structuredAction struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
	Final string         `json:"final"`
}

const structuredFormat = `

Respond with a single JSON object and nothing else.
To call a tool: {"tool": "<name>", "input": {<arguments>}}
To answer the user: {"final": "<your answer>"}
Available tools:
%s`

// runStructured is the primary strategy: the model replies with one JSON
// action object per turn. Malformed replies are retried inside the loop
// with a corrective message instead of being surfaced to the caller.
func (o *Orchestrator) runStructured(ctx context.Context, message string, history []Turn) (string, error) {
	var catalog strings.Builder
	for _, tool := range o.toolset.Tools() {
		schema, _ := json.Marshal(tool.Parameters)
		fmt.Fprintf(&catalog, "- %s: %s Input schema: %s\n", tool.Name, tool.Description, schema)
	}

	messages := o.baseMessages(message, history, fmt.Sprintf(structuredFormat, catalog.String()))

	parseRetries := 0
	for round := 0; round < maxToolRounds; round++ {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Temperature: temperature,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no completion choices")
		}
		content := resp.Choices[0].Message.Content
		if o.verbose {
			o.logger.Debug("structured turn", "content", truncate(content, 2000), "request_id", o.requestID)
		}

		action, err := parseAction(content)
		if err != nil {
			if parseRetries >= maxParseRetries {
				return "", fmt.Errorf("unparseable model output after %d retries: %w", maxParseRetries, err)
			}
			parseRetries++
			messages = append(messages,
				openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "Your last reply was not a single valid JSON action object. Reply again with exactly one JSON object."},
			)
			continue
		}

		if action.Tool == "" {
			return action.Final, nil
		}

		output, err := o.toolset.Execute(ctx, action.Tool, action.Input)
		if err != nil {
			output = fmt.Sprintf("tool %s failed: %v", action.Tool, err)
		}
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: "Tool result:\n" + output},
		)
	}
	return "", fmt.Errorf("no final answer after %d tool rounds", maxToolRounds)
}

// parseAction pulls the JSON action object out of the model's reply,
// tolerating code fences and surrounding prose.
func parseAction(content string) (*structuredAction, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in model output")
	}

	var action structuredAction
	if err := json.Unmarshal([]byte(content[start:end+1]), &action); err != nil {
		return nil, err
	}
	if action.Tool == "" && action.Final == "" {
		return nil, errors.New("action names neither a tool nor a final answer")
	}
	return &action, nil
}
