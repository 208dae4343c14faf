package parser

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"gmail-sender-stats-go/internal/models"
)

// Address grammar shared by both patterns: local part of word characters,
// hyphens and dots, then one or more dotted labels and a 2-4 letter TLD-like
// token.
var (
	// "Display Name <jane@example.com>" and similar; anything after the
	// address is ignored.
	bracketAddrRe = regexp.MustCompile(`^[^<]*<?([\w\-.]+@([\w-]+\.)+[\w-]{2,4}).*$`)

	// A bare address standing alone.
	bareAddrRe = regexp.MustCompile(`^([\w\-.]+@([\w-]+\.)+[\w-]{2,4})$`)
)

// fromHeaderNames is the lookup chain for the sender header. Names are
// matched exactly; providers emit all three variants.
var fromHeaderNames = []string{"From", "FROM", "Return-Path"}

// CleanSender extracts a canonical address from a raw From-header value.
// Values that match neither pattern are returned unchanged; an unparseable
// sender still gets its own aggregate count.
func CleanSender(raw string) string {
	if strings.Contains(raw, "<") {
		if m := bracketAddrRe.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
		return raw
	}
	if m := bareAddrRe.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
		return m[1]
	}
	return raw
}

// SenderAddress returns the raw value of the message's sender header,
// trying From, then FROM, then Return-Path. A message with none of the
// three is anomalous but still processed, keyed by the empty string.
func SenderAddress(msg models.Message) string {
	for _, name := range fromHeaderNames {
		if value, ok := msg.HeaderValue(name); ok {
			return value
		}
	}
	logrus.Warnf("Message %s has no From, FROM or Return-Path header", msg.ID)
	return ""
}
