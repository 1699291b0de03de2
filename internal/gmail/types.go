package gmail

// EmailMessage describes an outgoing email before MIME encoding. Recipient
// fields hold comma-separated addresses exactly as they appear in the
// corresponding headers.
type EmailMessage struct {
	From       string
	To         string
	Cc         string
	Bcc        string
	Subject    string
	Body       string
	HTMLBody   string
	Importance string // "high", "normal" or "low"; empty means unset

	Attachments []Attachment
}

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// MessageSummary is the shaped view of a message used in list-style tool
// output.
type MessageSummary struct {
	ID             string
	Subject        string
	From           string
	To             string
	Cc             string
	Date           string
	Labels         []string
	HasAttachments bool
	Snippet        string
}

// AttachmentInfo describes an attachment found while reading a message.
type AttachmentInfo struct {
	Filename string
	MimeType string
	Size     string
}

// LabelInfo is the shaped view of a Gmail label.
type LabelInfo struct {
	ID   string
	Name string
	Type string // "system" or "user"
}

// Profile is the shaped view of the account's Gmail profile.
type Profile struct {
	EmailAddress  string
	MessagesTotal int64
	ThreadsTotal  int64
	HistoryID     uint64
}

// DraftSummary is the shaped view of a draft used in listings.
type DraftSummary struct {
	ID      string
	Subject string
	To      string
	Date    string
}
