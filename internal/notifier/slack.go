package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lacedup/footwork/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// Slack caps blocks per message; chunking keeps big batches deliverable and
// the channel readable.
const maxPostingsPerMessage = 10

// SlackNotifier sends new-posting batches to a Slack channel via an Incoming
// Webhook, using Block Kit.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts batches to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify delivers the batch, chunked under the block limit. Individual chunk
// failures are logged; an error is returned only when every chunk failed.
func (s *SlackNotifier) Notify(postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	chunks := 0
	failures := 0
	for start := 0; start < len(postings); start += maxPostingsPerMessage {
		end := start + maxPostingsPerMessage
		if end > len(postings) {
			end = len(postings)
		}
		chunks++

		if err := s.send(buildBatchPayload(postings[start:end])); err != nil {
			s.logger.Error("slack batch delivery failed", "batch", chunks, "error", err)
			failures++
		}
	}

	if failures == chunks {
		return fmt.Errorf("all %d slack batches failed", failures)
	}
	s.logger.Info("slack notifications complete", "postings", len(postings), "batches", chunks, "failed", failures)
	return nil
}

// Heartbeat posts a one-line run summary so a quiet run is still visibly a
// healthy run. A run where no source succeeded says so.
func (s *SlackNotifier) Heartbeat(stats model.RunStats) error {
	var status string
	switch {
	case stats.SourcesOK == 0 && stats.SourcesFailed > 0:
		status = fmt.Sprintf("⚠️ all %d sources failed", stats.SourcesFailed)
	case stats.New == 0:
		status = "✅ nothing new"
	default:
		status = fmt.Sprintf("🆕 %d new posting(s) sent above", stats.New)
	}

	payload := slackPayload{
		Blocks: []slackBlock{
			{
				Type: "context",
				Elements: []slackText{{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*footwork* run complete  |  checked *%d* listings  |  %s", stats.Checked, status),
				}},
			},
		},
	}
	return s.send(payload)
}

// send posts one payload, waiting out a single 429 before retrying once.
func (s *SlackNotifier) send(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

func buildBatchPayload(postings []model.Posting) slackPayload {
	plural := ""
	if len(postings) != 1 {
		plural = "s"
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{
				Type:  "plain_text",
				Text:  fmt.Sprintf("👟 %d New Footwear Job%s Found!", len(postings), plural),
				Emoji: true,
			},
		},
		{
			Type: "context",
			Elements: []slackText{{
				Type: "mrkdwn",
				Text: "Sources: employer career pages + job-search API + sports boards",
			}},
		},
		{Type: "divider"},
	}

	for _, p := range postings {
		location := p.Location
		if location == "" {
			location = "Location not specified"
		}
		sourceLabel := "🏢 Career Page"
		switch p.Source {
		case model.SourceSearchAPI:
			sourceLabel = "🌐 Job Board"
		case model.SourceSportsBoard:
			sourceLabel = "🏟 Sports Board"
		}

		blocks = append(blocks,
			slackBlock{
				Type: "section",
				Text: &slackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*<%s|%s>*\n*%s*  ·  📍 %s  ·  %s", p.URL, p.Title, p.Company, location, sourceLabel),
				},
			},
			slackBlock{Type: "divider"},
		)
	}

	return slackPayload{Blocks: blocks}
}

// SendTestMessage sends a dummy posting to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	return n.Notify([]model.Posting{{
		ID:       "test-001",
		Title:    "Test Notification: Integration Verified",
		Company:  "footwork",
		Location: "Everywhere",
		URL:      "https://example.com/jobs",
		Source:   model.SourceCareerSite,
		PostedAt: &now,
	}})
}
