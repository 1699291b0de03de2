package gmail

import (
	"fmt"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// OperationObserver is invoked after every remote call with the API operation
// name, its outcome and duration.
type OperationObserver func(operation string, err error, duration time.Duration)

// Client wraps the Gmail Users service for a single authenticated account.
// All calls address the account as "me"; message, draft and label ids are
// opaque values owned by the remote service.
type Client struct {
	svc     *gmail.UsersService
	observe OperationObserver
}

// NewClient creates a Client over an authenticated Gmail service handle.
func NewClient(svc *gmail.Service) *Client {
	return &Client{svc: svc.Users}
}

// SetObserver registers an observer for remote call outcomes. Must be set
// before the client is shared.
func (c *Client) SetObserver(obs OperationObserver) {
	c.observe = obs
}

// done records the outcome of a remote call and wraps its error.
func (c *Client) done(op string, start time.Time, err error) error {
	if c.observe != nil {
		c.observe(op, err, time.Since(start))
	}
	return wrapRemote(op, err)
}

// GetProfile returns the account's Gmail profile.
func (c *Client) GetProfile() (*Profile, error) {
	start := time.Now()
	p, err := c.svc.GetProfile("me").Do()
	if err := c.done("users.getProfile", start, err); err != nil {
		return nil, err
	}
	return &Profile{
		EmailAddress:  p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
		HistoryID:     p.HistoryId,
	}, nil
}

// SearchMessages returns up to maxResults message ids matching the Gmail
// search query, following pagination. The query string is forwarded to the
// API verbatim.
func (c *Client) SearchMessages(query string, maxResults int64) ([]string, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	var ids []string
	pageToken := ""
	for {
		remaining := maxResults - int64(len(ids))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}
		start := time.Now()
		res, err := req.Do()
		if err := c.done("messages.list", start, err); err != nil {
			return nil, err
		}

		for _, m := range res.Messages {
			ids = append(ids, m.Id)
		}
		if res.NextPageToken == "" || int64(len(ids)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	return ids, nil
}

// GetMessage retrieves a message with full payload.
func (c *Client) GetMessage(id string) (*gmail.Message, error) {
	start := time.Now()
	msg, err := c.svc.Messages.Get("me", id).Format("full").Do()
	if err := c.done("messages.get", start, err); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetMessageMetadata retrieves a message with headers only.
func (c *Client) GetMessageMetadata(id string) (*gmail.Message, error) {
	start := time.Now()
	msg, err := c.svc.Messages.Get("me", id).Format("metadata").Do()
	if err := c.done("messages.get", start, err); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendRaw sends a prebuilt base64url RFC 2822 message and returns the new
// message id.
func (c *Client) SendRaw(raw string) (string, error) {
	start := time.Now()
	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Do()
	if err := c.done("messages.send", start, err); err != nil {
		return "", err
	}
	return sent.Id, nil
}

// ModifyMessage adds and removes labels on a message.
func (c *Client) ModifyMessage(id string, addLabelIDs, removeLabelIDs []string) error {
	start := time.Now()
	_, err := c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Do()
	return c.done("messages.modify", start, err)
}

// TrashMessage moves a message to trash.
func (c *Client) TrashMessage(id string) error {
	start := time.Now()
	_, err := c.svc.Messages.Trash("me", id).Do()
	return c.done("messages.trash", start, err)
}

// CreateDraft creates a draft from a prebuilt raw message and returns the
// draft id.
func (c *Client) CreateDraft(raw string) (string, error) {
	start := time.Now()
	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Do()
	if err := c.done("drafts.create", start, err); err != nil {
		return "", err
	}
	return draft.Id, nil
}

// GetDraft retrieves a draft with its full message payload.
func (c *Client) GetDraft(id string) (*gmail.Draft, error) {
	start := time.Now()
	draft, err := c.svc.Drafts.Get("me", id).Format("full").Do()
	if err := c.done("drafts.get", start, err); err != nil {
		return nil, err
	}
	return draft, nil
}

// UpdateDraft replaces a draft's message and returns the draft id.
func (c *Client) UpdateDraft(id, raw string) (string, error) {
	start := time.Now()
	draft, err := c.svc.Drafts.Update("me", id, &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Do()
	if err := c.done("drafts.update", start, err); err != nil {
		return "", err
	}
	return draft.Id, nil
}

// SendDraft sends an existing draft and returns the resulting message id.
func (c *Client) SendDraft(id string) (string, error) {
	start := time.Now()
	sent, err := c.svc.Drafts.Send("me", &gmail.Draft{Id: id}).Do()
	if err := c.done("drafts.send", start, err); err != nil {
		return "", err
	}
	return sent.Id, nil
}

// ListDrafts returns up to maxResults draft summaries, fetching header
// metadata for each draft's message.
func (c *Client) ListDrafts(maxResults int64) ([]DraftSummary, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	start := time.Now()
	res, err := c.svc.Drafts.List("me").MaxResults(maxResults).Do()
	if err := c.done("drafts.list", start, err); err != nil {
		return nil, err
	}

	summaries := make([]DraftSummary, 0, len(res.Drafts))
	for _, d := range res.Drafts {
		summary := DraftSummary{ID: d.Id, Subject: "No Subject", To: "No Recipient", Date: "Unknown Date"}
		if d.Message != nil {
			msg, err := c.GetMessageMetadata(d.Message.Id)
			if err != nil {
				return nil, err
			}
			if s := decodeRFC2047(HeaderValue(msg, "Subject")); s != "" {
				summary.Subject = s
			}
			if to := HeaderValue(msg, "To"); to != "" {
				summary.To = to
			}
			if date := HeaderValue(msg, "Date"); date != "" {
				summary.Date = date
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListLabels returns all labels on the account.
func (c *Client) ListLabels() ([]LabelInfo, error) {
	start := time.Now()
	res, err := c.svc.Labels.List("me").Do()
	if err := c.done("labels.list", start, err); err != nil {
		return nil, err
	}

	labels := make([]LabelInfo, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, LabelInfo{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return labels, nil
}

// FindLabel resolves a label by name, case-insensitively. Returns nil when
// no label matches.
func (c *Client) FindLabel(name string) (*LabelInfo, error) {
	labels, err := c.ListLabels()
	if err != nil {
		return nil, err
	}
	for i := range labels {
		if strings.EqualFold(labels[i].Name, name) {
			return &labels[i], nil
		}
	}
	return nil, nil
}

// CreateLabel creates a user label visible in both the label list and the
// message view.
func (c *Client) CreateLabel(name string) (*LabelInfo, error) {
	start := time.Now()
	label, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Do()
	if err := c.done("labels.create", start, err); err != nil {
		return nil, err
	}
	return &LabelInfo{ID: label.Id, Name: label.Name, Type: label.Type}, nil
}

// DeleteLabel removes a label by id.
func (c *Client) DeleteLabel(id string) error {
	start := time.Now()
	err := c.svc.Labels.Delete("me", id).Do()
	return c.done("labels.delete", start, err)
}

// EnsureLabel resolves a label by name, creating it when missing.
func (c *Client) EnsureLabel(name string) (*LabelInfo, error) {
	label, err := c.FindLabel(name)
	if err != nil {
		return nil, err
	}
	if label != nil {
		return label, nil
	}
	return c.CreateLabel(name)
}

// HasLabel reports whether a message carries the given label id.
func HasLabel(msg *gmail.Message, labelID string) bool {
	for _, id := range msg.LabelIds {
		if id == labelID {
			return true
		}
	}
	return false
}

// FormatSummaries renders message summaries in the numbered list shape used
// by the search and listing tools.
func FormatSummaries(summaries []MessageSummary) string {
	var b strings.Builder
	for i, s := range summaries {
		labelStr := "None"
		if len(s.Labels) > 0 {
			labelStr = strings.Join(s.Labels, ", ")
		}
		hasAtt := "No"
		if s.HasAttachments {
			hasAtt = "Yes"
		}
		fmt.Fprintf(&b, "%d. Message ID: %s\n", i+1, s.ID)
		fmt.Fprintf(&b, "   Subject: %s\n", s.Subject)
		fmt.Fprintf(&b, "   From: %s\n", s.From)
		fmt.Fprintf(&b, "   Date: %s\n", s.Date)
		fmt.Fprintf(&b, "   Labels: %s\n", labelStr)
		fmt.Fprintf(&b, "   Has Attachments: %s\n", hasAtt)
		b.WriteString("   --------------------------------------------------\n")
	}
	return b.String()
}
