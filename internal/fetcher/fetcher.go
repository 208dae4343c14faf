package fetcher

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"

	"gmail-sender-stats-go/internal/config"
	"gmail-sender-stats-go/internal/models"
)

// ProviderError wraps a failure from the remote mail provider: auth, quota,
// network or a malformed response. Nothing is retried here; the ingestion
// loop owns retries.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// MessageFetcher lists and retrieves messages from a mail account
type MessageFetcher interface {
	// ListPage returns one page of message stubs plus the continuation
	// token for the next page; an empty token means the listing is
	// exhausted.
	ListPage(ctx context.Context, pageToken string) ([]models.MessageStub, string, error)

	// GetMessage retrieves the full message, including its header list.
	GetMessage(ctx context.Context, id string) (models.Message, error)

	Close() error
}

// GmailFetcher implements MessageFetcher using the Gmail API. The service
// handle is shared and safe for reuse across calls; read-only scope is fixed
// at authentication time.
type GmailFetcher struct {
	service  *gmail.Service
	user     string
	pageSize int64
}

// NewGmailFetcher creates a new Gmail API fetcher on an authenticated service
func NewGmailFetcher(service *gmail.Service, cfg *config.Config) *GmailFetcher {
	return &GmailFetcher{
		service:  service,
		user:     cfg.Gmail.User,
		pageSize: cfg.Fetch.PageSize,
	}
}

// ListPage fetches one page of message stubs, excluding spam and trash
func (f *GmailFetcher) ListPage(ctx context.Context, pageToken string) ([]models.MessageStub, string, error) {
	call := f.service.Users.Messages.List(f.user).
		MaxResults(f.pageSize).
		IncludeSpamTrash(false).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, "", &ProviderError{Op: "list messages", Err: err}
	}

	stubs := make([]models.MessageStub, 0, len(response.Messages))
	for _, msg := range response.Messages {
		if msg.Id == "" {
			return nil, "", &models.DataError{Reason: "listing returned a message without an identifier"}
		}
		stubs = append(stubs, models.MessageStub{ID: msg.Id, ThreadID: msg.ThreadId})
	}

	return stubs, response.NextPageToken, nil
}

// GetMessage fetches the full message for an identifier
func (f *GmailFetcher) GetMessage(ctx context.Context, id string) (models.Message, error) {
	response, err := f.service.Users.Messages.Get(f.user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return models.Message{}, &ProviderError{Op: "get message", Err: err}
	}
	return messageFromGmail(response)
}

// Close closes the Gmail API fetcher
func (f *GmailFetcher) Close() error {
	// Gmail API service doesn't need explicit closing
	return nil
}

// messageFromGmail converts a Gmail API message into the domain message,
// preserving header order and the original header-name casing. A missing
// payload yields an empty header list, not an error.
func messageFromGmail(msg *gmail.Message) (models.Message, error) {
	if msg.Id == "" {
		return models.Message{}, &models.DataError{Reason: "message missing identifier"}
	}

	message := models.Message{ID: msg.Id}
	if msg.Payload == nil {
		return message, nil
	}

	message.Headers = make([]models.Header, 0, len(msg.Payload.Headers))
	for _, header := range msg.Payload.Headers {
		if header == nil {
			continue
		}
		message.Headers = append(message.Headers, models.Header{Name: header.Name, Value: header.Value})
	}

	return message, nil
}
