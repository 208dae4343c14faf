package fetcher

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"

	"gmail-sender-stats-go/internal/config"
	"gmail-sender-stats-go/internal/models"
)

// IMAPFetcher implements MessageFetcher over IMAP for accounts without API
// access. IMAP has no opaque listing cursor, so pages are emulated with
// sequence-number windows and the page token is the first sequence number of
// the next window. Message identifiers are mailbox UIDs.
type IMAPFetcher struct {
	client   *client.Client
	mailbox  string
	pageSize uint32
}

// NewIMAPFetcher connects and logs in to the configured IMAP server
func NewIMAPFetcher(cfg *config.Config) (*IMAPFetcher, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAP.Host, cfg.IMAP.Port), nil)
	if err != nil {
		return nil, &ProviderError{Op: "connect to IMAP server", Err: err}
	}

	if err := c.Login(cfg.IMAP.User, cfg.IMAP.Password); err != nil {
		c.Logout()
		return nil, &ProviderError{Op: "login to IMAP server", Err: err}
	}

	return &IMAPFetcher{
		client:   c,
		mailbox:  cfg.IMAP.Mailbox,
		pageSize: uint32(cfg.Fetch.PageSize),
	}, nil
}

// ListPage returns one window of message UIDs from the mailbox
func (f *IMAPFetcher) ListPage(ctx context.Context, pageToken string) ([]models.MessageStub, string, error) {
	mbox, err := f.client.Select(f.mailbox, true)
	if err != nil {
		return nil, "", &ProviderError{Op: "select mailbox", Err: err}
	}

	start := uint32(1)
	if pageToken != "" {
		n, err := strconv.ParseUint(pageToken, 10, 32)
		if err != nil || n == 0 {
			return nil, "", &ProviderError{Op: "parse page token", Err: fmt.Errorf("invalid page token %q", pageToken)}
		}
		start = uint32(n)
	}

	if mbox.Messages == 0 || start > mbox.Messages {
		return nil, "", nil
	}

	end := mbox.Messages
	if window := start + f.pageSize - 1; window < end {
		end = window
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(start, end)

	messages := make(chan *imap.Message, f.pageSize)
	done := make(chan error, 1)
	go func() {
		done <- f.client.Fetch(seqset, []imap.FetchItem{imap.FetchUid}, messages)
	}()

	var stubs []models.MessageStub
	for msg := range messages {
		if msg.Uid == 0 {
			return nil, "", &models.DataError{Reason: "listing returned a message without an identifier"}
		}
		stubs = append(stubs, models.MessageStub{ID: strconv.FormatUint(uint64(msg.Uid), 10)})
	}

	if err := <-done; err != nil {
		return nil, "", &ProviderError{Op: "list message uids", Err: err}
	}

	next := ""
	if end < mbox.Messages {
		next = strconv.FormatUint(uint64(end)+1, 10)
	}
	return stubs, next, nil
}

// GetMessage fetches the header section of a message by UID
func (f *IMAPFetcher) GetMessage(ctx context.Context, id string) (models.Message, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return models.Message{}, &models.DataError{MessageID: id, Reason: "identifier is not an IMAP uid"}
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(uid))

	section := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- f.client.UidFetch(seqset, []imap.FetchItem{section.FetchItem(), imap.FetchUid}, messages)
	}()

	var fetched *imap.Message
	for msg := range messages {
		fetched = msg
	}

	if err := <-done; err != nil {
		return models.Message{}, &ProviderError{Op: "get message", Err: err}
	}
	if fetched == nil {
		return models.Message{}, &ProviderError{Op: "get message", Err: fmt.Errorf("uid %s not found in %s", id, f.mailbox)}
	}

	body := fetched.GetBody(section)
	if body == nil {
		return models.Message{}, &ProviderError{Op: "get message", Err: fmt.Errorf("no header section for uid %s", id)}
	}

	entity, err := message.Read(body)
	if err != nil && !message.IsUnknownCharset(err) {
		return models.Message{}, &ProviderError{Op: "parse message headers", Err: err}
	}

	result := models.Message{ID: id}
	fields := entity.Header.Fields()
	for fields.Next() {
		result.Headers = append(result.Headers, models.Header{Name: fields.Key(), Value: fields.Value()})
	}

	// Fields iterates newest-first; restore wire order so the first From
	// header in the message wins.
	for i, j := 0, len(result.Headers)-1; i < j; i, j = i+1, j-1 {
		result.Headers[i], result.Headers[j] = result.Headers[j], result.Headers[i]
	}

	return result, nil
}

// Close logs out from the IMAP server
func (f *IMAPFetcher) Close() error {
	return f.client.Logout()
}
