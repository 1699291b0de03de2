package google

import gmail "google.golang.org/api/gmail/v1"

// Scopes returns the Gmail OAuth scopes the server requests. Changing this
// set invalidates previously issued tokens; the token file must be deleted
// and consent repeated.
func Scopes() []string {
	return []string{
		gmail.GmailReadonlyScope,
		gmail.GmailSendScope,
		gmail.GmailComposeScope,
		gmail.GmailModifyScope,
		gmail.GmailLabelsScope,
	}
}
