package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

const (
	communicationScope     = "https://communication.azure.com//.default"
	defaultEmailAPIVersion = "2023-03-31"
	// maxErrorBody bounds how much of a rejected send is kept in the error.
	maxErrorBody = 4 << 10
)

var errNoRecipients = errors.New("no e-mail recipients")

// SendError is a send the Communication Services API did not accept.
type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("email request failed with status %d: %s", e.StatusCode, e.Body)
}

// EmailService mails the admin digest through the Azure Communication
// Services e-mail REST API.
type EmailService struct {
	sendURL    string
	sender     string
	cred       azcore.TokenCredential
	httpClient *http.Client
}

// NewEmailService reads COMMUNICATION_SERVICES_ENDPOINT, SENDER_EMAIL and
// EMAIL_API_VERSION. A nil cred uses DefaultAzureCredential.
func NewEmailService(cred azcore.TokenCredential) (*EmailService, error) {
	endpoint, err := requireEnv("COMMUNICATION_SERVICES_ENDPOINT")
	if err != nil {
		return nil, err
	}
	sender, err := requireEnv("SENDER_EMAIL")
	if err != nil {
		return nil, err
	}
	if cred == nil {
		if cred, err = newDefaultAzureCredential(); err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
	}

	apiVersion := envOrDefault("EMAIL_API_VERSION", defaultEmailAPIVersion)
	return &EmailService{
		sendURL:    fmt.Sprintf("%s/emails:send?api-version=%s", strings.TrimSuffix(endpoint, "/"), apiVersion),
		sender:     sender,
		cred:       cred,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type emailAddress struct {
	Address string `json:"address"`
}

type emailRecipients struct {
	To []emailAddress `json:"to"`
}

type emailContent struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plainText,omitempty"`
	HTML      string `json:"html"`
}

type emailRequest struct {
	SenderAddress string          `json:"senderAddress"`
	Content       emailContent    `json:"content"`
	Recipients    emailRecipients `json:"recipients"`
}

// recipientList trims, drops blanks and removes case-insensitive duplicates,
// keeping the first spelling.
func recipientList(to []string) []emailAddress {
	seen := make(map[string]bool, len(to))
	out := make([]emailAddress, 0, len(to))
	for _, addr := range to {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, emailAddress{Address: addr})
	}
	return out
}

// send posts one message. Anything but 202 Accepted is a *SendError.
func (s *EmailService) send(ctx context.Context, msg emailRequest) error {
	if len(msg.Recipients.To) == 0 {
		return errNoRecipients
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	token, err := s.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{communicationScope}})
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &SendError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// SendEmail sends an HTML message to the given recipients.
func (s *EmailService) SendEmail(ctx context.Context, to []string, subject, html string) error {
	msg := emailRequest{
		SenderAddress: s.sender,
		Content:       emailContent{Subject: subject, HTML: html},
		Recipients:    emailRecipients{To: recipientList(to)},
	}
	if err := s.send(ctx, msg); err != nil {
		return err
	}
	slog.Info("email sent", "recipients", len(msg.Recipients.To), "subject", subject)
	return nil
}

// SendAdminDigest mails the nightly digest with a plain-text summary beside
// the HTML body.
func (s *EmailService) SendAdminDigest(ctx context.Context, recipients []string, digest AdminDigest) error {
	msg := emailRequest{
		SenderAddress: s.sender,
		Content: emailContent{
			Subject:   fmt.Sprintf("Coin Tracker - Nightly Digest %s", digest.Date),
			PlainText: digestSummary(digest),
			HTML:      RenderAdminDigest(digest),
		},
		Recipients: emailRecipients{To: recipientList(recipients)},
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send digest for %s: %w", digest.Date, err)
	}
	slog.Info("admin digest sent",
		"date", digest.Date,
		"recipients", len(msg.Recipients.To),
		"backups_written", digest.BackupsWritten,
		"failures", len(digest.Failures),
	)
	return nil
}

// digestSummary is the plain-text part of the digest.
func digestSummary(d AdminDigest) string {
	lines := []string{
		fmt.Sprintf("Coin Tracker digest for %s", d.Date),
		fmt.Sprintf("Users: %d (%d new today)", d.Stats.TotalUsers, d.NewSignups()),
		fmt.Sprintf("Total coins: %d", d.Stats.TotalCoins),
		fmt.Sprintf("Average coins per user: %s", d.AverageCoins().StringFixed(2)),
		fmt.Sprintf("Backups written: %d", d.BackupsWritten),
	}
	if len(d.Failures) > 0 {
		lines = append(lines, fmt.Sprintf("Backup failures: %d", len(d.Failures)))
		lines = append(lines, slices.Sorted(slices.Values(d.Failures))...)
	}
	return strings.Join(lines, "\n")
}
