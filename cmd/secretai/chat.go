package main

import (
	"context"
	"errors"
	"fmt"

	"secretai/internal/cli"
	"secretai/pkg/llm"
	llmopenai "secretai/pkg/llm/openai"
	"secretai/pkg/secretai"

	"github.com/spf13/cobra"
)

var (
	chatModel       string
	chatHost        string
	chatSystem      string
	chatTemperature float32
	chatWidth       int
	chatRaw         bool
)

func newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Stream a chat completion from a confidential endpoint",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runChat,
	}

	cmd.Flags().StringVar(&chatModel, "model", "", "Model to use (default "+defaultChatModel+")")
	cmd.Flags().StringVar(&chatHost, "host", "", "Inference endpoint (default: discovered from the contract)")
	cmd.Flags().StringVar(&chatSystem, "system", "", "System prompt")
	cmd.Flags().Float32Var(&chatTemperature, "temperature", 0, "Temperature")
	cmd.Flags().IntVar(&chatWidth, "width", 0, fmt.Sprintf("Output width in cells (default %d)", cli.DefaultWidth))
	cmd.Flags().BoolVar(&chatRaw, "raw", false, "Print the response unformatted once it is complete")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	chat := a.settings.Chat

	model := firstNonEmpty(chatModel, chat.Model)
	host := firstNonEmpty(chatHost, chat.Host)
	if host == "" {
		host, err = a.discoverHost(ctx, model)
		if err != nil {
			return err
		}
	}

	temperature := chat.Temperature
	if cmd.Flags().Changed("temperature") {
		temperature = chatTemperature
	}
	width := chat.Width
	if chatWidth > 0 {
		width = chatWidth
	}

	client, err := secretai.NewClient(secretai.ClientOptions{
		Host:        host,
		APIKey:      a.settings.SDK.APIKey,
		Model:       model,
		Temperature: temperature,
		Headers:     a.settings.Headers,
	})
	if err != nil {
		return err
	}
	a.log.Debug("Chatting with %s on %s", client.Model(), client.Host())

	messages := []llm.Message{}
	if chatSystem != "" {
		messages = append(messages, llm.SystemMessage(chatSystem))
	}
	messages = append(messages, llm.UserMessage(joinArgs(args)))

	stream, err := client.ChatStream(ctx, &llm.ChatRequest{Messages: messages})
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}

	if chatRaw {
		text, err := llmopenai.StreamToString(ctx, stream)
		if err != nil {
			return fmt.Errorf("stream failed: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	writer := cli.NewStreamingWriter(cmd.OutOrStdout())
	writer.SetColorMode(!noColor)
	renderer := cli.NewStreamRenderer(cli.NewThinkFormatter(writer, width))

	if _, err := renderer.StreamContent(ctx, stream); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stream failed: %w", err)
	}
	return nil
}

// discoverHost picks the first endpoint the contract lists for model
func (a *app) discoverHost(ctx context.Context, model string) (string, error) {
	secret, err := a.secret()
	if err != nil {
		return "", err
	}

	urls, err := secret.ListURLs(ctx, model)
	if err != nil {
		return "", err
	}
	a.logResult("urls", urls)
	if len(urls) == 0 {
		return "", fmt.Errorf("no endpoint serves model %q", model)
	}

	a.log.Info("Using endpoint %s", urls[0])
	return urls[0], nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinArgs(args []string) string {
	prompt := args[0]
	for _, arg := range args[1:] {
		prompt += " " + arg
	}
	return prompt
}
