package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// SlackNotifier sends messages to a Slack webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *retryablehttp.Client
}

// NewSlackNotifier creates a Slack webhook notifier.
func NewSlackNotifier(webhookURL, channel string, client *retryablehttp.Client) *SlackNotifier {
	if client == nil {
		client = NewHTTPClient(ClientOptions{})
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     client,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, msg Message) error {
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	attachment := slackAttachment{
		Color:     fmt.Sprintf("#%06x", msg.Color),
		Title:     msg.Title,
		TitleLink: msg.URL,
		Text:      msg.Description,
		Footer:    "Quartermaster",
		Ts:        ts.Unix(),
	}
	for _, f := range msg.Fields {
		attachment.Fields = append(attachment.Fields, slackField{Title: f.Name, Value: f.Value, Short: f.Inline})
	}

	payload := slackPayload{
		Channel:     s.channel,
		Text:        msg.Preamble,
		Attachments: []slackAttachment{attachment},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	if err := postJSON(ctx, s.client, s.webhookURL, body, nil); err != nil {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	TitleLink string       `json:"title_link,omitempty"`
	Text      string       `json:"text,omitempty"`
	Fields    []slackField `json:"fields"`
	Footer    string       `json:"footer"`
	Ts        int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
