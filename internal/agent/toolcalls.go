package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// runToolCalls is the compatibility fallback: the same tool set driven
// through the native OpenAI tool-calls convention.
func (o *Orchestrator) runToolCalls(ctx context.Context, message string, history []Turn) (string, error) {
	declared := o.toolset.Tools()
	tools := make([]openai.Tool, 0, len(declared))
	for _, tool := range declared {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	messages := o.baseMessages(message, history, "")

	for round := 0; round < maxToolRounds; round++ {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Tools:       tools,
			Temperature: temperature,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("no completion choices")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			if o.verbose {
				o.logger.Debug("tool-calls final", "content", truncate(msg.Content, 2000), "request_id", o.requestID)
			}
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			var input map[string]any
			if call.Function.Arguments != "" {
				// Malformed arguments are reported back through the tool
				// result instead of aborting the loop.
				if err := json.Unmarshal([]byte(call.Function.Arguments), &input); err != nil {
					messages = append(messages, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						Content:    fmt.Sprintf("invalid arguments for %s: %v", call.Function.Name, err),
						ToolCallID: call.ID,
						Name:       call.Function.Name,
					})
					continue
				}
			}

			output, err := o.toolset.Execute(ctx, call.Function.Name, input)
			if err != nil {
				output = fmt.Sprintf("tool %s failed: %v", call.Function.Name, err)
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
			})
		}
	}
	return "", fmt.Errorf("no final answer after %d tool rounds", maxToolRounds)
}
